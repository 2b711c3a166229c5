package validation

import (
	"github.com/go-playground/validator/v10"

	"fleet-system/pkg/labor"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("quarter_minutes", isQuarterMinutes); err != nil {
		return err
	}
	return nil
}

// isQuarterMinutes - минуты неотрицательны и кратны 15
func isQuarterMinutes(fl validator.FieldLevel) bool {
	return labor.IsValidBreak(int(fl.Field().Int()))
}
