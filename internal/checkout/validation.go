package checkout

import (
	"regexp"

	"tikiti/internal/shared/apperr"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Kenyan mobile numbers: 254XXXXXXXXX or 0XXXXXXXXX
var mpesaPhonePattern = regexp.MustCompile(`^(254|0)\d{9}$`)

var fieldValidator = validator.New()

// BillingDetails is filled in field by field and consumed once on submit
type BillingDetails struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// ValidateOptions switches on checks beyond the required ones
type ValidateOptions struct {
	StrictEmail bool
}

// Validate reports the first problem with billing. Required fields are
// checked in the order name, email, phone, and only the empty string counts
// as missing.
func Validate(billing BillingDetails, opts ValidateOptions) error {
	if billing.Name == "" {
		return apperr.MissingField("name")
	}
	if billing.Email == "" {
		return apperr.MissingField("email")
	}
	if billing.Phone == "" {
		return apperr.MissingField("phone")
	}
	if billing.PaymentMethod.IsMobileMoney() && !ValidPhone(billing.Phone) {
		return apperr.InvalidPhone()
	}
	if opts.StrictEmail && fieldValidator.Var(billing.Email, "email") != nil {
		return apperr.InvalidEmail()
	}
	return nil
}

// ValidPhone checks a number against the M-Pesa format
func ValidPhone(phone string) bool {
	return mpesaPhonePattern.MatchString(phone)
}

// RegisterValidators adds the payment_method tag to gin's binding validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		_, err := ParsePaymentMethod(fl.Field().String())
		return err == nil
	})
}
