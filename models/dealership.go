package models

// Dealership holds the structure for the dealerships collection in mongo. Cars,
// Deals and SoldVehicles are ID lists resolving into the cars, deals and
// sold_vehicles collections respectively.
type Dealership struct {
	DealershipID       string         `json:"dealership_id" bson:"dealership_id"`
	DealershipEmail    string         `json:"dealership_email" bson:"dealership_email"`
	DealershipName     string         `json:"dealership_name" bson:"dealership_name"`
	DealershipLocation string         `json:"dealership_location" bson:"dealership_location"`
	PasswordHash       string         `json:"-" bson:"dealership_password_hash"`
	DealershipInfo     DealershipInfo `json:"dealership_info" bson:"dealership_info"`
	Cars               []string       `json:"cars" bson:"cars"`
	Deals              []string       `json:"deals" bson:"deals"`
	SoldVehicles       []string       `json:"sold_vehicles" bson:"sold_vehicles"`
}

// DealershipInfo holds the private profile data supplied at registration
type DealershipInfo struct {
	ContactNum string  `json:"contact_num,omitempty" bson:"contact_num,omitempty"`
	Rating     float64 `json:"rating,omitempty" bson:"rating,omitempty"`
}
