package models

// User holds the structure for the users collection in mongo. VehicleInfo is the
// list of sold-vehicle IDs the user owns, not vehicle documents.
type User struct {
	UserID       string   `json:"user_id" bson:"user_id"`
	UserEmail    string   `json:"user_email" bson:"user_email"`
	UserLocation string   `json:"user_location" bson:"user_location"`
	UserInfo     UserInfo `json:"user_info" bson:"user_info"`
	PasswordHash string   `json:"-" bson:"user_password_hash"`
	VehicleInfo  []string `json:"vehicle_info" bson:"vehicle_info"`
}

// UserInfo holds the private profile data supplied at registration
type UserInfo struct {
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
	MobNum string `json:"mob_num,omitempty" bson:"mob_num,omitempty"`
	Age    int    `json:"age,omitempty" bson:"age,omitempty"`
}
