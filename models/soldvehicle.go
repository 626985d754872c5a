package models

// SoldVehicle holds the structure for the sold_vehicles collection in mongo.
// One document represents one physical unit sold; a car may back many of them.
// VehicleInfo is a snapshot of the car at sale time, so later catalog edits
// never rewrite sale history.
type SoldVehicle struct {
	VehicleID   string      `json:"vehicle_id" bson:"vehicle_id"`
	CarID       string      `json:"car_id" bson:"car_id"`
	VehicleInfo VehicleInfo `json:"vehicle_info" bson:"vehicle_info"`
}

// VehicleInfo holds the car snapshot taken when the sale was recorded
type VehicleInfo struct {
	Type  string `json:"type" bson:"type"`
	Name  string `json:"name" bson:"name"`
	Model string `json:"model" bson:"model"`
}
