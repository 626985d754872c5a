package models

// Deal holds the structure for the deals collection in mongo. A deal is a
// promotional attachment to a car, owned by one dealership via its deals list.
type Deal struct {
	DealID   string   `json:"deal_id" bson:"deal_id"`
	CarID    string   `json:"car_id" bson:"car_id"`
	DealInfo DealInfo `json:"deal_info" bson:"deal_info"`
}

// DealInfo holds the promotional details of a deal
type DealInfo struct {
	Discount      string `json:"discount,omitempty" bson:"discount,omitempty"`
	SpecialOffers string `json:"special_offers,omitempty" bson:"special_offers,omitempty"`
}
