package databases

// go generate: mockery --name DealDatabase

import (
	"context"

	"github.com/openauto/car-market-api/models"
)

const dealName = "deals"

// DealDatabase contains the methods to use with the deal database
type DealDatabase interface {
	Find(ctx context.Context, filter interface{}) ([]models.Deal, error)
	InsertOne(ctx context.Context, deal models.Deal) (interface{}, error)
}

type dealDatabase struct {
	db DatabaseHelper
}

// NewDealDatabase initializes a new instance of deal database with the provided db connection
func NewDealDatabase(db DatabaseHelper) DealDatabase {
	return &dealDatabase{
		db: db,
	}
}

func (d *dealDatabase) Find(ctx context.Context, filter interface{}) ([]models.Deal, error) {
	cursor, err := d.db.Collection(dealName).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var deals []models.Deal
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

func (d *dealDatabase) InsertOne(ctx context.Context, deal models.Deal) (interface{}, error) {
	return d.db.Collection(dealName).InsertOne(ctx, deal)
}
