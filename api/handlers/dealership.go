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

type dealershipRegisterRequest struct {
	DealershipEmail    string                `json:"dealership_email"`
	DealershipName     string                `json:"dealership_name"`
	DealershipLocation string                `json:"dealership_location"`
	DealershipPassword string                `json:"dealership_password"`
	DealershipInfo     models.DealershipInfo `json:"dealership_info"`
}

type dealershipLoginRequest struct {
	DealershipEmail    string `json:"dealership_email"`
	DealershipPassword string `json:"dealership_password"`
}

type addCarRequest struct {
	CarID   string `json:"car_id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Model   string `json:"model"`
	CarInfo struct {
		LaunchDate string `json:"launch_date"`
		Price      int    `json:"price"`
	} `json:"car_info"`
}

type postDealRequest struct {
	CarID    string          `json:"car_id"`
	DealInfo models.DealInfo `json:"deal_info"`
}

// Dealership exported for testing purposes
type Dealership struct {
	DB     databases.DealershipDatabase
	CDB    databases.CarDatabase
	DealDB databases.DealDatabase
	Auth   *auth.Service
}

// DealershipRegisterHandler registers a new dealership with empty inventory,
// deal and sales lists
func (d Dealership) DealershipRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dealershipRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !validateEmail(req.DealershipEmail) || !validatePassword(req.DealershipPassword) || req.DealershipName == "" {
		config.ErrorStatus("invalid dealership input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := d.DB.FindOne(ctx, bson.M{"dealership_email": req.DealershipEmail})
	if err == nil {
		config.ErrorStatus("dealership already exists", http.StatusConflict, w, ErrEmailTaken)
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to check existing dealership", http.StatusInternalServerError, w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.DealershipPassword), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	dealership := models.Dealership{
		DealershipID:       uuid.New().String(),
		DealershipEmail:    req.DealershipEmail,
		DealershipName:     req.DealershipName,
		DealershipLocation: req.DealershipLocation,
		DealershipInfo:     req.DealershipInfo,
		PasswordHash:       string(hash),
		Cars:               []string{},
		Deals:              []string{},
		SoldVehicles:       []string{},
	}
	if _, err := d.DB.InsertOne(ctx, dealership); err != nil {
		config.ErrorStatus("failed to register dealership", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "dealership registered successfully",
		"dealership_id": dealership.DealershipID,
	})
}

// DealershipLoginHandler authenticates a dealership and returns a session token
func (d Dealership) DealershipLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dealershipLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !validateEmail(req.DealershipEmail) || !validatePassword(req.DealershipPassword) {
		config.ErrorStatus("invalid dealership input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dealership, err := d.DB.FindOne(ctx, bson.M{"dealership_email": req.DealershipEmail})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, ErrInvalidCredentials)
			return
		}
		config.ErrorStatus("failed to get dealership", http.StatusInternalServerError, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dealership.PasswordHash), []byte(req.DealershipPassword)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, ErrInvalidCredentials)
		return
	}

	token, err := d.Auth.Issue(dealership.DealershipID, auth.KindDealership)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"token": token,
	})
}

// DealershipValidateTokenHandler confirms a bearer token belongs to a dealership
func (d Dealership) DealershipValidateTokenHandler(w http.ResponseWriter, r *http.Request) {
	writeTokenValidation(w, r, d.Auth, auth.KindDealership, "dealership_id")
}

// VehiclesForSaleHandler lists the catalog entries currently in a dealership's
// inventory
func (d Dealership) VehiclesForSaleHandler(w http.ResponseWriter, r *http.Request) {
	dealershipID := mux.Vars(r)["dealership_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dealership, err := d.DB.FindOne(ctx, bson.M{"dealership_id": dealershipID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("dealership not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get dealership", http.StatusInternalServerError, w, err)
		return
	}

	inventory := dealership.Cars
	if inventory == nil {
		inventory = []string{}
	}
	cars, err := d.CDB.Find(ctx, bson.M{"car_id": bson.M{"$in": inventory}})
	if err != nil {
		config.ErrorStatus("failed to get cars", http.StatusInternalServerError, w, err)
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

// VehicleForSaleHandler returns one car from a dealership's inventory, or 404
// when the dealership does not stock it
func (d Dealership) VehicleForSaleHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	dealershipID := vars["dealership_id"]
	carID := vars["car_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dealership, err := d.DB.FindOne(ctx, bson.M{"dealership_id": dealershipID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("dealership not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get dealership", http.StatusInternalServerError, w, err)
		return
	}

	if !containsID(dealership.Cars, carID) {
		config.ErrorStatus("car not found for sale at this dealership", http.StatusNotFound, w, ErrNotInInventory)
		return
	}

	car, err := d.CDB.FindOne(ctx, bson.M{"car_id": carID})
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

// AddCarHandler creates a catalog entry and links it into the calling
// dealership's inventory. Car IDs are caller-chosen and globally unique.
func (d Dealership) AddCarHandler(w http.ResponseWriter, r *http.Request) {
	dealershipID := r.Header.Get("dealership_id")

	var req addCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.CarID == "" || req.Name == "" {
		config.ErrorStatus("invalid car input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}
	launchDate, err := parseLaunchDate(req.CarInfo.LaunchDate)
	if err != nil {
		config.ErrorStatus("invalid launch date", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := d.DB.FindOne(ctx, bson.M{"dealership_id": dealershipID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("dealership not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get dealership", http.StatusInternalServerError, w, err)
		return
	}

	_, err = d.CDB.FindOne(ctx, bson.M{"car_id": req.CarID})
	if err == nil {
		config.ErrorStatus("car ID already exists", http.StatusConflict, w, ErrCarIDTaken)
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to check existing car", http.StatusInternalServerError, w, err)
		return
	}

	car := models.Car{
		CarID: req.CarID,
		Type:  req.Type,
		Name:  req.Name,
		Model: req.Model,
		CarInfo: models.CarInfo{
			LaunchDate: launchDate,
			Price:      req.CarInfo.Price,
		},
	}
	if _, err := d.CDB.InsertOne(ctx, car); err != nil {
		config.ErrorStatus("failed to add car", http.StatusInternalServerError, w, err)
		return
	}

	// $addToSet keeps the inventory a set even if a retry replays this write
	_, err = d.DB.UpdateOne(ctx,
		bson.M{"dealership_id": dealershipID},
		bson.M{"$addToSet": bson.M{"cars": car.CarID}},
	)
	if err != nil {
		config.ErrorStatus("failed to link car to dealership", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "car added successfully",
		"car_id":  car.CarID,
	})
}

// PostDealHandler creates a deal for a car and links it to the dealership
// named in the path
func (d Dealership) PostDealHandler(w http.ResponseWriter, r *http.Request) {
	dealershipName := mux.Vars(r)["dealership_name"]

	var req postDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.CarID == "" {
		config.ErrorStatus("invalid deal input", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dealership, err := d.DB.FindOne(ctx, bson.M{"dealership_name": dealershipName})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("dealership not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get dealership", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := d.CDB.FindOne(ctx, bson.M{"car_id": req.CarID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("car not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get car", http.StatusInternalServerError, w, err)
		return
	}

	deal := models.Deal{
		DealID:   uuid.New().String(),
		CarID:    req.CarID,
		DealInfo: req.DealInfo,
	}
	if _, err := d.DealDB.InsertOne(ctx, deal); err != nil {
		config.ErrorStatus("failed to create deal", http.StatusInternalServerError, w, err)
		return
	}

	_, err = d.DB.UpdateOne(ctx,
		bson.M{"dealership_id": dealership.DealershipID},
		bson.M{"$addToSet": bson.M{"deals": deal.DealID}},
	)
	if err != nil {
		config.ErrorStatus("failed to link deal to dealership", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "deal created successfully",
		"deal_id": deal.DealID,
	})
}
