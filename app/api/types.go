package api

import (
	"net/http"

	"github.com/aivex/ai-visibility/app/content"
)

// APIError is the structured error payload: a stable code string, a
// human-readable message and the HTTP status it maps to.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func errNotFound(message string) APIError {
	return APIError{Code: "not_found", Message: message, Status: http.StatusNotFound}
}

func errForbidden(message string) APIError {
	return APIError{Code: "forbidden", Message: message, Status: http.StatusForbidden}
}

func errRateLimited(message string) APIError {
	return APIError{Code: "rate_limited", Message: message, Status: http.StatusTooManyRequests}
}

func errInvalidInput(message string) APIError {
	return APIError{Code: "invalid_input", Message: message, Status: http.StatusBadRequest}
}

// CollectionResponse is the paginated collection payload.
type CollectionResponse struct {
	IDs        []int64                `json:"ids"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	Total      int                    `json:"total"`
	TotalPages int                    `json:"total_pages"`
	Items      []content.EnrichedItem `json:"items"`
}

// BatchRequest is the batch lookup body.
type BatchRequest struct {
	IDs []int64 `json:"ids"`
}

// BatchResponse carries the resolved subset of a batch lookup; partial
// results are not an error.
type BatchResponse struct {
	IDs   []int64                `json:"ids"`
	Items []content.EnrichedItem `json:"items"`
}
