package models

import "time"

// ComplaintStatus representa el estado de un reclamo en su ciclo de vida
type ComplaintStatus string

const (
	StatusNotStarted ComplaintStatus = "Not Started"
	StatusProcessing ComplaintStatus = "Processing"
	StatusCompleted  ComplaintStatus = "Completed"
)

// ValidStatus reports whether s is one of the three recognized statuses.
func ValidStatus(s string) bool {
	switch ComplaintStatus(s) {
	case StatusNotStarted, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// Complaint representa un reclamo geolocalizado con foto reportado por un usuario
type Complaint struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Zone        string          `json:"zone"`
	Status      ComplaintStatus `json:"status"`
	AssignedTo  *int64          `json:"assignedTo,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Populated joins for listings (nil when not requested)
	Reporter     *ComplaintReporter     `json:"reporter,omitempty"`
	Municipality *ComplaintMunicipality `json:"municipality,omitempty"`
}

// ComplaintReporter is the reporter subset embedded in complaint listings.
type ComplaintReporter struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// ComplaintMunicipality is the assignee subset embedded in complaint listings.
type ComplaintMunicipality struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// ComplaintStatusUpdateRequest updates a complaint's status.
type ComplaintStatusUpdateRequest struct {
	Status string `json:"status"`
}
