package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/openauto/car-market-api/api"
	"github.com/openauto/car-market-api/api/scheduler"
	"github.com/openauto/car-market-api/auth"
	"github.com/openauto/car-market-api/config"
	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/models"
)

type adminRegisterRequest struct {
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

type adminLoginRequest struct {
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// Admin exported for testing purposes
type Admin struct {
	DB   databases.AdminDatabase
	Auth *auth.Service
	Rec  *scheduler.Reconciler
}

// AdminRegisterHandler registers a new admin
func (a Admin) AdminRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req adminRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !validateEmail(req.AdminEmail) || !validatePassword(req.AdminPassword) {
		config.ErrorStatus("invalid admin input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := a.DB.FindOne(ctx, bson.M{"admin_email": req.AdminEmail})
	if err == nil {
		config.ErrorStatus("admin already exists", http.StatusConflict, w, ErrEmailTaken)
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to check existing admin", http.StatusInternalServerError, w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	admin := models.Admin{
		AdminID:      uuid.New().String(),
		AdminEmail:   req.AdminEmail,
		PasswordHash: string(hash),
	}
	if _, err := a.DB.InsertOne(ctx, admin); err != nil {
		config.ErrorStatus("failed to register admin", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "admin registered successfully",
		"admin_id": admin.AdminID,
	})
}

// AdminLoginHandler authenticates an admin and returns a session token
func (a Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !validateEmail(req.AdminEmail) || !validatePassword(req.AdminPassword) {
		config.ErrorStatus("invalid admin input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	admin, err := a.DB.FindOne(ctx, bson.M{"admin_email": req.AdminEmail})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// unknown email and bad password answer identically
			config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, ErrInvalidCredentials)
			return
		}
		config.ErrorStatus("failed to get admin", http.StatusInternalServerError, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.AdminPassword)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, ErrInvalidCredentials)
		return
	}

	token, err := a.Auth.Issue(admin.AdminID, auth.KindAdmin)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// AdminValidateTokenHandler confirms a bearer token belongs to an admin
func (a Admin) AdminValidateTokenHandler(w http.ResponseWriter, r *http.Request) {
	writeTokenValidation(w, r, a.Auth, auth.KindAdmin, "admin_id")
}

// SalesReportHandler runs a reconciliation scan over sale references and
// returns any dangling ones found
func (a Admin) SalesReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := a.Rec.Scan(ctx)
	if err != nil {
		config.ErrorStatus("failed to scan sale references", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// writeTokenValidation is shared by the per-principal validate-token routes.
// The response echoes the principal ID under the kind-specific key the
// clients already expect (admin_id, user_id, dealership_id).
func writeTokenValidation(w http.ResponseWriter, r *http.Request, svc *auth.Service, kind, idKey string) {
	w.Header().Set("Content-Type", "application/json")

	token, err := api.BearerToken(r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	claims, err := svc.Verify(token)
	if err != nil {
		api.TokenErrorStatus(w, err)
		return
	}
	if claims.Kind != kind {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"msg": "Invalid token."}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		idKey:     claims.Subject,
		"message": "Valid Token",
	})
}
