package databases

// go generate: mockery --name CarDatabase

import (
	"context"

	"github.com/openauto/car-market-api/models"
)

const carName = "cars"

// CarDatabase contains the methods to use with the car database
type CarDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Car, error)
	Find(ctx context.Context, filter interface{}) ([]models.Car, error)
	InsertOne(ctx context.Context, car models.Car) (interface{}, error)
}

type carDatabase struct {
	db DatabaseHelper
}

// NewCarDatabase initializes a new instance of car database with the provided db connection
func NewCarDatabase(db DatabaseHelper) CarDatabase {
	return &carDatabase{
		db: db,
	}
}

func (c *carDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Car, error) {
	car := &models.Car{}
	err := c.db.Collection(carName).FindOne(ctx, filter).Decode(car)
	if err != nil {
		return nil, err
	}
	return car, nil
}

func (c *carDatabase) Find(ctx context.Context, filter interface{}) ([]models.Car, error) {
	cursor, err := c.db.Collection(carName).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var cars []models.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

func (c *carDatabase) InsertOne(ctx context.Context, car models.Car) (interface{}, error) {
	return c.db.Collection(carName).InsertOne(ctx, car)
}
