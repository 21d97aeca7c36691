package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context. The HTTP layer maps them to status codes.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidState        = "INVALID_STATE"
	CodeQuantityExceeded    = "QUANTITY_EXCEEDED"
	CodeInsufficientPaid    = "INSUFFICIENT_PAID"
	CodePaymentExceeded     = "PAYMENT_EXCEEDED"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeAlreadyProcessed    = "ALREADY_PROCESSED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeSupplierInactive    = "SUPPLIER_INACTIVE"
	CodeInternal            = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on error code so that errors.Is(err, ErrNotFound) works for any NOT_FOUND error
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewInternalError wraps an unexpected infrastructure failure
func NewInternalError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeInternal,
		Message: message,
		Cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrQuantityExceeded    = NewDomainError(CodeQuantityExceeded, "Quantity exceeds the allowed maximum")
	ErrInsufficientPaid    = NewDomainError(CodeInsufficientPaid, "Amount exceeds what has been paid")
	ErrPaymentExceeded     = NewDomainError(CodePaymentExceeded, "Payment exceeds the outstanding amount")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrAlreadyProcessed    = NewDomainError(CodeAlreadyProcessed, "Operation has already been processed")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrSupplierInactive    = NewDomainError(CodeSupplierInactive, "Supplier is inactive")
)

// AsDomainError returns the DomainError in err's chain, or wraps err as INTERNAL
func AsDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return NewInternalError("Unexpected internal error", err)
}
