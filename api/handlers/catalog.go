package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openauto/car-market-api/api"
	"github.com/openauto/car-market-api/config"
	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/models"
)

// Catalog exported for testing purposes
type Catalog struct {
	CDB    databases.CarDatabase
	DDB    databases.DealershipDatabase
	DealDB databases.DealDatabase
}

// CarsHandler lists every car in the catalog
func (c Catalog) CarsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cars, err := c.CDB.Find(ctx, bson.M{})
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

// CarByIDHandler returns a single catalog entry
func (c Catalog) CarByIDHandler(w http.ResponseWriter, r *http.Request) {
	carID := mux.Vars(r)["car_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	car, err := c.CDB.FindOne(ctx, bson.M{"car_id": carID})
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

// CarsByDealershipHandler lists the catalog entries stocked by the named
// dealership
func (c Catalog) CarsByDealershipHandler(w http.ResponseWriter, r *http.Request) {
	dealershipName := mux.Vars(r)["dealership_name"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dealership, err := c.DDB.FindOne(ctx, bson.M{"dealership_name": dealershipName})
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
	cars, err := c.CDB.Find(ctx, bson.M{"car_id": bson.M{"$in": inventory}})
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

// DealsHandler lists every active deal
func (c Catalog) DealsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deals, err := c.DealDB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get deals", http.StatusInternalServerError, w, err)
		return
	}
	if len(deals) == 0 {
		deals = []models.Deal{}
	}

	b, err := json.Marshal(deals)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DealsByDealershipHandler lists the deals offered by the named dealership.
// The name match is case-insensitive.
func (c Catalog) DealsByDealershipHandler(w http.ResponseWriter, r *http.Request) {
	dealershipName := mux.Vars(r)["dealership_name"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// quote the name so metacharacters in it match literally
	dealership, err := c.DDB.FindOne(ctx, bson.M{
		"dealership_name": primitive.Regex{Pattern: regexp.QuoteMeta(dealershipName), Options: "i"},
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("dealer not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get dealership", http.StatusInternalServerError, w, err)
		return
	}

	dealIDs := dealership.Deals
	if dealIDs == nil {
		dealIDs = []string{}
	}
	deals, err := c.DealDB.Find(ctx, bson.M{"deal_id": bson.M{"$in": dealIDs}})
	if err != nil {
		config.ErrorStatus("failed to get deals", http.StatusInternalServerError, w, err)
		return
	}
	if len(deals) == 0 {
		deals = []models.Deal{}
	}

	b, err := json.Marshal(deals)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DealsForCarHandler lists every deal that applies to a car. An unknown car
// simply has no deals.
func (c Catalog) DealsForCarHandler(w http.ResponseWriter, r *http.Request) {
	carID := mux.Vars(r)["car_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deals, err := c.DealDB.Find(ctx, bson.M{"car_id": carID})
	if err != nil {
		config.ErrorStatus("failed to get deals", http.StatusInternalServerError, w, err)
		return
	}
	if len(deals) == 0 {
		deals = []models.Deal{}
	}

	b, err := json.Marshal(deals)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
