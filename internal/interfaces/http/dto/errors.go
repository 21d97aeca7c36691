package dto

import (
	"net/http"

	"github.com/repairdesk/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes come from the shared package unchanged.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeIdempotencyInFlight = "IDEMPOTENCY_IN_FLIGHT"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeRequestTooLarge     = "REQUEST_TOO_LARGE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeInvalidInput:        http.StatusBadRequest,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeInternal:            http.StatusInternalServerError,

	// business rules
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeQuantityExceeded:  http.StatusUnprocessableEntity,
	shared.CodeInsufficientPaid:  http.StatusUnprocessableEntity,
	shared.CodePaymentExceeded:   http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeAlreadyProcessed:  http.StatusUnprocessableEntity,
	shared.CodeSupplierInactive:  http.StatusUnprocessableEntity,

	CodeBadRequest:          http.StatusBadRequest,
	CodeValidation:          http.StatusBadRequest,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeIdempotencyInFlight: http.StatusConflict,
	CodeServiceUnavailable:  http.StatusServiceUnavailable,
	CodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
