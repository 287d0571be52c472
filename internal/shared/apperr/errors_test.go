package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing field", MissingField("name"), http.StatusUnprocessableEntity},
		{"out of range", OutOfRange("quantity"), http.StatusUnprocessableEntity},
		{"wrapped invalid phone", fmt.Errorf("checkout: %w", InvalidPhone()), http.StatusUnprocessableEntity},
		{"not found", NotFound("event", "42"), http.StatusNotFound},
		{"empty selection", ErrEmptySelection, http.StatusUnprocessableEntity},
		{"completed", ErrCheckoutCompleted, http.StatusConflict},
		{"processing", ErrCheckoutProcessing, http.StatusConflict},
		{"method unavailable", ErrPaymentMethodUnavailable, http.StatusBadRequest},
		{"payment", fmt.Errorf("settle: %w", ErrPayment), http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	assert.Equal(t, "email is required", MissingField("email").Error())
	assert.Contains(t, InvalidPhone().Error(), "M-Pesa")

	ve, ok := IsValidation(fmt.Errorf("wrap: %w", MissingField("phone")))
	assert.True(t, ok)
	assert.Equal(t, CodeMissingField, ve.Code)
	assert.Equal(t, "phone", ve.Field)
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("event", "7")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `event "7": not found`, err.Error())
}
