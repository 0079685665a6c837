package dto

import "net/http"

// Transport-level error codes. Workflow codes come from the domain and
// application packages and are mapped below.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidSig      = "INVALID_SIGNATURE"
	ErrCodeRateLimited     = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	"EMPTY_CART":            http.StatusBadRequest,
	"UNKNOWN_PRODUCT":       http.StatusBadRequest,
	"SERVICE_NOT_ALLOWED":   http.StatusBadRequest,
	"INVALID_ADDRESS":       http.StatusBadRequest,
	"INVALID_QUANTITY":      http.StatusBadRequest,
	"INVALID_CUSTOMER":      http.StatusBadRequest,
	"INTENT_MISMATCH":       http.StatusBadRequest,
	"INVALID_REPORT_PERIOD": http.StatusBadRequest,
	"UNRECOGNIZED_PAYLOAD":  http.StatusBadRequest,
	ErrCodeInvalidSig:       http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,

	// Workflow state conflicts -> 409 Conflict
	"INSUFFICIENT_STOCK":          http.StatusConflict,
	"INVALID_STATE":               http.StatusConflict,
	"CANCELLATION_WINDOW_EXPIRED": http.StatusConflict,
	"SHIPMENT_ALREADY_CREATED":    http.StatusConflict,
	"ORDER_NOT_PAID":              http.StatusConflict,
	"INVENTORY_ALREADY_ADJUSTED":  http.StatusConflict,
	"CONCURRENCY_CONFLICT":        http.StatusConflict,

	// Upstream failures -> 502 Bad Gateway
	"PAYMENT_GATEWAY_ERROR": http.StatusBadGateway,
	"CARRIER_ERROR":         http.StatusBadGateway,
	"REPORT_STORAGE_ERROR":  http.StatusBadGateway,
	"INVALID_WAYBILL":       http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Not configured -> 503
	"REPORTING_UNAVAILABLE": http.StatusServiceUnavailable,
	ErrCodeUnavailable:      http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message}
}

// NewValidationErrorResponse creates an INVALID_INPUT response with field details
func NewValidationErrorResponse(message string, details []ValidationDetail) ErrorResponse {
	return ErrorResponse{
		Error:   ErrCodeInvalidInput,
		Message: message,
		Details: details,
	}
}
