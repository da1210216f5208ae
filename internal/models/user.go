package models

import "time"

// User represents a citizen account record in DB (internal use only).
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	PasswordHash   string    `json:"-"`
	Address        string    `json:"address"`
	Zone           string    `json:"zone"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	IsBlocked      bool      `json:"isBlocked"`
	BlockedBy      *int64    `json:"blockedBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserSignupRequest holds the data for creating a new user account.
type UserSignupRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	Address         string   `json:"address"`
	Zone            string   `json:"zone"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
}
