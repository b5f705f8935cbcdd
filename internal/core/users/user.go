package users

import (
	"time"
)

// User is the profile record an author id points to.
// Posts and comments copy Name and Avatar at write time and keep only a
// weak reference (the id) afterwards.
type User struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	ID        string    `json:"id" db:"id" bson:"_id"`
	Name      string    `json:"name" db:"name" bson:"name"`
	Email     string    `json:"email" db:"email" bson:"email"`
	Avatar    string    `json:"avatar,omitempty" db:"avatar" bson:"avatar,omitempty"`
}

// CreateUserRequest represents the input for creating a new user
type CreateUserRequest struct {
	ID     string `json:"id,omitempty"` // Optional; generated when empty
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}
