package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/openauto/car-market-api/api"
	"github.com/openauto/car-market-api/config"
	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/models"
)

// Sale exported for testing purposes
type Sale struct {
	UDB  databases.UserDatabase
	DDB  databases.DealershipDatabase
	CDB  databases.CarDatabase
	SVDB databases.SoldVehicleDatabase
}

// SellCarHandler records a sale across three collections: the buyer's owned
// vehicles, the dealership's sales history, and the sold_vehicles snapshot.
// The writes are ordered and idempotent; a failure part-way through reports
// which writes landed so the reconciler (or a retry) can finish the job.
func (s Sale) SellCarHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("user_id")
	carID := r.Header.Get("car_id")
	dealershipID := r.Header.Get("dealership_id")
	if userID == "" || carID == "" || dealershipID == "" {
		config.ErrorStatus("missing user_id, car_id or dealership_id header", http.StatusBadRequest, w, ErrInvalidInput)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// inventory gate: the membership check runs server-side so a concurrent
	// inventory edit cannot slip between read and verdict
	_, err := s.DDB.FindOne(ctx, bson.M{"dealership_id": dealershipID, "cars": carID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("car not found in dealership", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get dealership", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := s.UDB.FindOne(ctx, bson.M{"user_id": userID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("user not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get user", http.StatusInternalServerError, w, err)
		return
	}

	car, err := s.CDB.FindOne(ctx, bson.M{"car_id": carID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Warnw("dealership inventory references a missing car",
				"dealership_id", dealershipID,
				"car_id", carID,
			)
			config.ErrorStatus("car not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get car", http.StatusInternalServerError, w, err)
		return
	}

	vehicleID := fmt.Sprintf("%s-%s", carID, uuid.New().String())
	var completed []string

	_, err = s.UDB.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$addToSet": bson.M{"vehicle_info": vehicleID}},
	)
	if err != nil {
		s.saleFault(w, err, vehicleID, completed)
		return
	}
	completed = append(completed, "user_vehicle_info")

	_, err = s.DDB.UpdateOne(ctx,
		bson.M{"dealership_id": dealershipID},
		bson.M{"$addToSet": bson.M{"sold_vehicles": vehicleID}},
	)
	if err != nil {
		s.saleFault(w, err, vehicleID, completed)
		return
	}
	completed = append(completed, "dealership_sold_vehicles")

	vehicle := models.SoldVehicle{
		VehicleID: vehicleID,
		CarID:     carID,
		VehicleInfo: models.VehicleInfo{
			Type:  car.Type,
			Name:  car.Name,
			Model: car.Model,
		},
	}
	if _, err := s.SVDB.InsertOne(ctx, vehicle); err != nil {
		s.saleFault(w, err, vehicleID, completed)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message":    "sold vehicle added successfully",
		"vehicle_id": vehicleID,
	})
}

func (s Sale) saleFault(w http.ResponseWriter, err error, vehicleID string, completed []string) {
	zap.S().Errorw("sale write failed part-way",
		"vehicle_id", vehicleID,
		"completed_writes", completed,
		"error", err,
	)
	msg := fmt.Sprintf("failed to record sale, completed writes: %v", completed)
	config.ErrorStatus(msg, http.StatusInternalServerError, w, err)
}
