package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/openauto/car-market-api/api"
	"github.com/openauto/car-market-api/auth"
	"github.com/openauto/car-market-api/config"
	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/models"
)

type userRegisterRequest struct {
	UserEmail    string          `json:"user_email"`
	UserLocation string          `json:"user_location"`
	UserPassword string          `json:"user_password"`
	UserInfo     models.UserInfo `json:"user_info"`
}

type userLoginRequest struct {
	UserEmail    string `json:"user_email"`
	UserPassword string `json:"user_password"`
}

// User exported for testing purposes
type User struct {
	DB   databases.UserDatabase
	SVDB databases.SoldVehicleDatabase
	CDB  databases.CarDatabase
	Auth *auth.Service
}

// UserRegisterHandler registers a new user with an empty owned-vehicle list
func (u User) UserRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req userRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !validateEmail(req.UserEmail) || !validatePassword(req.UserPassword) {
		config.ErrorStatus("invalid user input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := u.DB.FindOne(ctx, bson.M{"user_email": req.UserEmail})
	if err == nil {
		config.ErrorStatus("user already exists", http.StatusConflict, w, ErrEmailTaken)
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to check existing user", http.StatusInternalServerError, w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.UserPassword), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	user := models.User{
		UserID:       uuid.New().String(),
		UserEmail:    req.UserEmail,
		UserLocation: req.UserLocation,
		UserInfo:     req.UserInfo,
		PasswordHash: string(hash),
		VehicleInfo:  []string{},
	}
	if _, err := u.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to register user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "user registered successfully",
		"user_id": user.UserID,
	})
}

// UserLoginHandler authenticates a user and returns a session token
func (u User) UserLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req userLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !validateEmail(req.UserEmail) || !validatePassword(req.UserPassword) {
		config.ErrorStatus("invalid user input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"user_email": req.UserEmail})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, ErrInvalidCredentials)
			return
		}
		config.ErrorStatus("failed to get user", http.StatusInternalServerError, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.UserPassword)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, ErrInvalidCredentials)
		return
	}

	token, err := u.Auth.Issue(user.UserID, auth.KindUser)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"token":   token,
		"user_id": user.UserID,
	})
}

// UserValidateTokenHandler confirms a bearer token belongs to a user
func (u User) UserValidateTokenHandler(w http.ResponseWriter, r *http.Request) {
	writeTokenValidation(w, r, u.Auth, auth.KindUser, "user_id")
}

// MyVehiclesHandler returns the catalog entries behind every vehicle the user
// owns. Ownership IDs resolve through sold_vehicles to car IDs; references
// that fail to resolve are dropped rather than failing the read.
func (u User) MyVehiclesHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("user_id")

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("user not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get user", http.StatusInternalServerError, w, err)
		return
	}

	cars, err := u.resolveOwnedCars(r, user)
	if err != nil {
		config.ErrorStatus("failed to get owned vehicles", http.StatusInternalServerError, w, err)
		return
	}
	if len(cars) == 0 {
		cars = []models.Car{}
	}

	b, err := json.Marshal(cars)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MyVehicleHandler returns one owned vehicle's catalog entry, or 404 when the
// user does not own a unit of that car
func (u User) MyVehicleHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("user_id")
	carID := mux.Vars(r)["car_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("user not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get user", http.StatusInternalServerError, w, err)
		return
	}

	owned := user.VehicleInfo
	if owned == nil {
		owned = []string{}
	}
	vehicles, err := u.SVDB.Find(ctx, bson.M{
		"vehicle_id": bson.M{"$in": owned},
		"car_id":     carID,
	})
	if err != nil {
		config.ErrorStatus("failed to get owned vehicles", http.StatusInternalServerError, w, err)
		return
	}
	if len(vehicles) == 0 {
		config.ErrorStatus("car not found for the user", http.StatusNotFound, w, ErrNotOwned)
		return
	}

	car, err := u.CDB.FindOne(ctx, bson.M{"car_id": carID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("car not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get car", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(car)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (u User) resolveOwnedCars(r *http.Request, user *models.User) ([]models.Car, error) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	owned := user.VehicleInfo
	if owned == nil {
		owned = []string{}
	}
	vehicles, err := u.SVDB.Find(ctx, bson.M{"vehicle_id": bson.M{"$in": owned}})
	if err != nil {
		return nil, err
	}

	carIDs := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		carIDs = append(carIDs, v.CarID)
	}
	return u.CDB.Find(ctx, bson.M{"car_id": bson.M{"$in": carIDs}})
}
