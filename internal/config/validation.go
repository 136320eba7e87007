package config

import (
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the custom tags the config
// schema uses.
type Validator struct {
	validator *validator.Validate
}

func newValidator() *Validator {
	validate := validator.New()

	_ = validate.RegisterValidation("duration", validateDurationCustom)

	return &Validator{
		validator: validate,
	}
}

// Validate validates a struct against its validate tags.
func (v *Validator) Validate(s any) error {
	return v.validator.Struct(s)
}

// Duration custom validator: Go duration strings or bare integer seconds.
func validateDurationCustom(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Empty values handled by 'required' tag
	}

	_, err := parseDuration(value)
	return err == nil
}
