// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("decimal_positive", validateDecimalPositive)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// decimal_positive accepts strings such as "19.99" that parse to a value > 0.
func validateDecimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   lowerFirst(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func getValidationMessage(e validator.FieldError) string {
	field := lowerFirst(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "decimal_positive":
		return field + " must be a positive number"
	default:
		return field + " is invalid"
	}
}
