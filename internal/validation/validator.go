package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/pannastore/checkout-capture/internal/phone"
)

// New returns a configured validator with the phonedigits rule registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// phonedigits: the normalized phone must have at least phone.MinDigits
	// digits. Validates the raw field; normalization happens downstream.
	_ = v.RegisterValidation("phonedigits", func(fl validatorv10.FieldLevel) bool {
		return phone.Valid(fl.Field().String())
	})

	return v
}
