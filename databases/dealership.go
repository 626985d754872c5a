package databases

// go generate: mockery --name DealershipDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openauto/car-market-api/models"
)

const dealershipName = "dealerships"

// DealershipDatabase contains the methods to use with the dealership database
type DealershipDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Dealership, error)
	Find(ctx context.Context, filter interface{}) ([]models.Dealership, error)
	InsertOne(ctx context.Context, dealership models.Dealership) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
}

type dealershipDatabase struct {
	db DatabaseHelper
}

// NewDealershipDatabase initializes a new instance of dealership database with the provided db connection
func NewDealershipDatabase(db DatabaseHelper) DealershipDatabase {
	return &dealershipDatabase{
		db: db,
	}
}

func (d *dealershipDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Dealership, error) {
	dealership := &models.Dealership{}
	err := d.db.Collection(dealershipName).FindOne(ctx, filter).Decode(dealership)
	if err != nil {
		return nil, err
	}
	return dealership, nil
}

func (d *dealershipDatabase) Find(ctx context.Context, filter interface{}) ([]models.Dealership, error) {
	cursor, err := d.db.Collection(dealershipName).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var dealerships []models.Dealership
	if err := cursor.All(ctx, &dealerships); err != nil {
		return nil, err
	}
	return dealerships, nil
}

func (d *dealershipDatabase) InsertOne(ctx context.Context, dealership models.Dealership) (interface{}, error) {
	return d.db.Collection(dealershipName).InsertOne(ctx, dealership)
}

func (d *dealershipDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return d.db.Collection(dealershipName).UpdateOne(ctx, filter, update)
}
