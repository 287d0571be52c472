package checkout

import (
	"testing"

	"tikiti/internal/shared/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func billing() BillingDetails {
	return BillingDetails{
		Name:          "Wanjiku",
		Email:         "wanjiku@example.com",
		Phone:         "0712345678",
		PaymentMethod: PaymentMethodMpesa,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *BillingDetails)
		opts   ValidateOptions
		field  string
		code   apperr.ValidationCode
	}{
		{name: "valid", mutate: func(b *BillingDetails) {}},
		{name: "international format", mutate: func(b *BillingDetails) { b.Phone = "254712345678" }},
		{name: "missing name", mutate: func(b *BillingDetails) { b.Name = "" }, field: "name", code: apperr.CodeMissingField},
		{name: "whitespace name is present", mutate: func(b *BillingDetails) { b.Name = "   " }},
		{name: "whitespace email is present", mutate: func(b *BillingDetails) { b.Email = " " }},
		{name: "padded phone", mutate: func(b *BillingDetails) { b.Phone = " 0712345678" }, field: "phone", code: apperr.CodeInvalidPhone},
		{name: "name reported before email", mutate: func(b *BillingDetails) { b.Name = ""; b.Email = "" }, field: "name", code: apperr.CodeMissingField},
		{name: "missing email", mutate: func(b *BillingDetails) { b.Email = "" }, field: "email", code: apperr.CodeMissingField},
		{name: "missing phone", mutate: func(b *BillingDetails) { b.Phone = "" }, field: "phone", code: apperr.CodeMissingField},
		{name: "short phone", mutate: func(b *BillingDetails) { b.Phone = "12345" }, field: "phone", code: apperr.CodeInvalidPhone},
		{name: "phone with plus", mutate: func(b *BillingDetails) { b.Phone = "+254712345678" }, field: "phone", code: apperr.CodeInvalidPhone},
		{name: "card skips phone format", mutate: func(b *BillingDetails) { b.Phone = "12345"; b.PaymentMethod = PaymentMethodCard }},
		{name: "loose email by default", mutate: func(b *BillingDetails) { b.Email = "not-an-email" }},
		{
			name:   "strict email",
			mutate: func(b *BillingDetails) { b.Email = "not-an-email" },
			opts:   ValidateOptions{StrictEmail: true},
			field:  "email",
			code:   apperr.CodeInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := billing()
			tt.mutate(&b)
			err := Validate(b, tt.opts)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := apperr.IsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.code, ve.Code)
		})
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]PaymentMethod{
		"mpesa":  PaymentMethodMpesa,
		"M-Pesa": PaymentMethodMpesa,
		"card":   PaymentMethodCard,
		"Card":   PaymentMethodCard,
	} {
		got, err := ParsePaymentMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParsePaymentMethod("paypal")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, "M-Pesa", PaymentMethodMpesa.DisplayName())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusIdle.CanTransitionTo(StatusProcessing))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusFailed))
	assert.True(t, StatusFailed.CanTransitionTo(StatusProcessing))

	assert.False(t, StatusIdle.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusProcessing.CanTransitionTo(StatusProcessing))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusProcessing))
	assert.False(t, Status("shipped").IsValid())
}
