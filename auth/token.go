// Package auth issues and verifies the signed session tokens that gate every
// mutating route. Tokens are HS256 JWTs carrying only the principal's opaque
// ID and kind, never the email or password hash.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TokenTTL is the fixed lifetime of a session token from issuance
const TokenTTL = 30 * time.Minute

// Principal kinds carried in the token's kind claim
const (
	KindAdmin      = "admin"
	KindUser       = "user"
	KindDealership = "dealership"
)

var (
	// ErrExpired means the token was well-formed but its expiry window has elapsed
	ErrExpired = errors.New("token expired")
	// ErrInvalid means the token was malformed, tampered with or signed with the wrong key
	ErrInvalid = errors.New("invalid token")
	// ErrRevoked means the token was explicitly revoked before its expiry
	ErrRevoked = errors.New("token revoked")
)

// Claims is the payload bound into every session token
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens. Revoked token IDs are held in an
// in-process TTL cache; entries expire together with the tokens they block, so
// the list never grows past the set of tokens still within their window.
type Service struct {
	secret  []byte
	revoked *cache.Cache
}

// NewService creates a token service signing with the given secret
func NewService(secret string) *Service {
	return &Service{
		secret:  []byte(secret),
		revoked: cache.New(TokenTTL, 10*time.Minute),
	}
}

// Issue produces a signed token binding one principal ID, valid for TokenTTL
func (s *Service) Issue(principalID, kind string) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry and the revocation list, returning the
// token's claims on success
func (s *Service) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenNotValidYet),
			errors.Is(err, jwt.ErrTokenInvalidClaims):
			return nil, ErrInvalid
		default:
			// not a token fault; surfaces as an internal error upstream
			return nil, err
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalid
	}
	if _, found := s.revoked.Get(claims.ID); found {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke blocks a still-valid token for the remainder of its lifetime
func (s *Service) Revoke(token string) error {
	claims, err := s.Verify(token)
	if err != nil {
		return err
	}
	s.revoked.Set(claims.ID, struct{}{}, time.Until(claims.ExpiresAt.Time))
	return nil
}
