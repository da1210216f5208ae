package models

// LoginRequest represents credentials provided by the client.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendOtpRequest asks for a one-time password on one channel.
// Type must be "email" or "phone"; phone is only consulted for the phone channel.
type SendOtpRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Type  string `json:"type"`
}

// VerifyOtpRequest submits a code previously sent to the client.
type VerifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
	Type  string `json:"type"`
}

// MessageResponse is the generic success shape for API responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a simple error shape for API errors.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ExistsResponse answers the real-time email/phone availability checks.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}
