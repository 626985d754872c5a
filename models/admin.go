package models

// Admin holds the structure for the admins collection in mongo
type Admin struct {
	AdminID      string `json:"admin_id" bson:"admin_id"`
	AdminEmail   string `json:"admin_email" bson:"admin_email"`
	PasswordHash string `json:"-" bson:"admin_password_hash"`
}
