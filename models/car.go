package models

import "time"

// Car holds the structure for the cars collection in mongo. A car is a catalog
// listing, immutable once created; sold units are tracked as SoldVehicle.
type Car struct {
	CarID   string  `json:"car_id" bson:"car_id"`
	Type    string  `json:"type" bson:"type"`
	Name    string  `json:"name" bson:"name"`
	Model   string  `json:"model" bson:"model"`
	CarInfo CarInfo `json:"car_info" bson:"car_info"`
}

// CarInfo holds the listing details for a car
type CarInfo struct {
	LaunchDate time.Time `json:"launch_date" bson:"launch_date"`
	Price      int       `json:"price" bson:"price"`
}
