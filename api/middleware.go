package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/openauto/car-market-api/auth"
)

type principalKey struct{}

// ErrNoBearerToken is returned when the Authorization header carries no bearer token
var ErrNoBearerToken = errors.New("missing bearer token")

// Middleware gates routes behind the token service
type Middleware struct {
	Auth *auth.Service
}

// Authenticate requires a valid bearer token; when kinds are given the token
// must additionally belong to one of those principal kinds
func (m Middleware) Authenticate(kinds ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			token, err := BearerToken(r)
			if err != nil {
				zap.S().Errorw("unauthorized",
					"url", r.URL)
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "unauthorized"}`))
				return
			}

			claims, err := m.Auth.Verify(token)
			if err != nil {
				TokenErrorStatus(w, err)
				return
			}

			if len(kinds) > 0 && !kindAllowed(claims.Kind, kinds) {
				zap.S().Warnw("token presented against wrong principal kind",
					"url", r.URL,
					"kind", claims.Kind)
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "token not valid for this route"}`))
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RevokeToken revokes the presented bearer token for the rest of its lifetime
func (m Middleware) RevokeToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	token, err := BearerToken(r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	if err := m.Auth.Revoke(token); err != nil {
		TokenErrorStatus(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "token revoked"}`))
}

// BearerToken extracts the bearer token from the Authorization header
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoBearerToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if token == "" {
		return "", ErrNoBearerToken
	}
	return token, nil
}

// TokenErrorStatus writes the HTTP mapping for a token verification failure:
// expired or revoked tokens are 401, malformed tokens are 403, anything else
// is a 500.
func TokenErrorStatus(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrExpired):
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg": "Token expired, please login again."}`))
	case errors.Is(err, auth.ErrRevoked):
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg": "Token revoked, please login again."}`))
	case errors.Is(err, auth.ErrInvalid):
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"msg": "Invalid token."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"msg": "Internal server error."}`))
	}
}

// PrincipalFromContext returns the claims stashed by Authenticate
func PrincipalFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(principalKey{}).(*auth.Claims)
	return claims, ok
}

func kindAllowed(kind string, kinds []string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
