package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by the storefront modules. Every error here is
// recoverable: the client is expected to re-prompt, redirect or retry.
var (
	ErrNotFound                 = errors.New("not found")
	ErrEmptySelection           = errors.New("no tickets selected")
	ErrPayment                  = errors.New("payment failed")
	ErrCheckoutCompleted        = errors.New("checkout already completed")
	ErrCheckoutProcessing       = errors.New("checkout is processing a payment")
	ErrPaymentMethodUnavailable = errors.New("payment method is not available")
	ErrInvalidInput             = errors.New("invalid input")
)

type ValidationCode string

const (
	CodeMissingField ValidationCode = "MISSING_FIELD"
	CodeInvalidPhone ValidationCode = "INVALID_PHONE"
	CodeInvalidEmail ValidationCode = "INVALID_EMAIL"
	CodeOutOfRange   ValidationCode = "OUT_OF_RANGE"
)

// ValidationError reports a billing field that failed validation.
type ValidationError struct {
	Field string         `json:"field"`
	Code  ValidationCode `json:"code"`
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeMissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case CodeInvalidPhone:
		return "phone must be a valid Kenyan mobile number for M-Pesa payments"
	case CodeInvalidEmail:
		return "email address is not valid"
	case CodeOutOfRange:
		return fmt.Sprintf("%s is out of range", e.Field)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Code: CodeMissingField}
}

func InvalidPhone() *ValidationError {
	return &ValidationError{Field: "phone", Code: CodeInvalidPhone}
}

func OutOfRange(field string) *ValidationError {
	return &ValidationError{Field: field, Code: CodeOutOfRange}
}

func InvalidEmail() *ValidationError {
	return &ValidationError{Field: "email", Code: CodeInvalidEmail}
}

// NotFound wraps ErrNotFound with the kind and id of the missing resource.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// IsValidation reports whether err carries a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// HTTPStatus maps an error from the taxonomy to the status code the API
// responds with.
func HTTPStatus(err error) int {
	if _, ok := IsValidation(err); ok {
		return http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptySelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrCheckoutCompleted), errors.Is(err, ErrCheckoutProcessing):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentMethodUnavailable), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrPayment):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
