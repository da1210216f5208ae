package models

import "time"

// Municipality represents a municipality account record in DB (internal use only).
type Municipality struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	RegNumber      string    `json:"regNumber"`
	Location       string    `json:"location"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MunicipalitySignupRequest holds the data for registering a municipality.
type MunicipalitySignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	RegNumber       string `json:"regNumber"`
	Location        string `json:"location"`
}
