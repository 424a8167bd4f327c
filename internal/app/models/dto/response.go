package dto

import "time"

// APIResponse is the success envelope of every endpoint
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// CountResponse reports how many rows a bulk operation touched
type CountResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CancelResponse reports whether a proxy was cancelled
type CancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message"`
}
