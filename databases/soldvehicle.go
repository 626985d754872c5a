package databases

// go generate: mockery --name SoldVehicleDatabase

import (
	"context"

	"github.com/openauto/car-market-api/models"
)

const soldVehicleName = "sold_vehicles"

// SoldVehicleDatabase contains the methods to use with the sold vehicle database
type SoldVehicleDatabase interface {
	Find(ctx context.Context, filter interface{}) ([]models.SoldVehicle, error)
	InsertOne(ctx context.Context, vehicle models.SoldVehicle) (interface{}, error)
}

type soldVehicleDatabase struct {
	db DatabaseHelper
}

// NewSoldVehicleDatabase initializes a new instance of sold vehicle database with the provided db connection
func NewSoldVehicleDatabase(db DatabaseHelper) SoldVehicleDatabase {
	return &soldVehicleDatabase{
		db: db,
	}
}

func (s *soldVehicleDatabase) Find(ctx context.Context, filter interface{}) ([]models.SoldVehicle, error) {
	cursor, err := s.db.Collection(soldVehicleName).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var vehicles []models.SoldVehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *soldVehicleDatabase) InsertOne(ctx context.Context, vehicle models.SoldVehicle) (interface{}, error) {
	return s.db.Collection(soldVehicleName).InsertOne(ctx, vehicle)
}
