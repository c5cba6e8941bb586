package models

import "time"

const (
	UserTypePlayer = "player"
	UserTypeAdmin  = "admin"
)

// User represents a registered account. DisplayName is unique across
// all users and is what shows up on claimed squares.
type User struct {
	ID           string    `json:"id" bson:"id"`
	Username     string    `json:"username" bson:"username"`
	DisplayName  string    `json:"displayName" bson:"display_name"`
	Email        string    `json:"email" bson:"email"`
	UserType     string    `json:"userType" bson:"user_type"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}
