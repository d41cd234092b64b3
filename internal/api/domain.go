package api

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`                           // Indicates if the operation was successful.
	Message string `json:"message,omitempty" example:"Operation successful"` // Optional success message.
	Error   string `json:"error,omitempty" example:"Resource not found"`     // Optional error message.
}

// SaveItineraryResponse confirms a stored itinerary payload.
type SaveItineraryResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}
