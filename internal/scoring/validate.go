package scoring

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/odds-apex/internal/models"
)

// InputValidator checks a CompetitorInput against its range rules.
type InputValidator struct {
	validator *validator.Validate
}

// NewInputValidator creates a validator that reports fields by their form names.
func NewInputValidator() *InputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &InputValidator{validator: v}
}

// Validate returns a *models.ValidationError for the first rule the input breaks.
func (iv *InputValidator) Validate(input models.CompetitorInput) error {
	err := iv.validator.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}

	fieldError := validationErrors[0]
	return models.NewValidationError(fieldName(fieldError), fieldError.Value(), describe(fieldError))
}

func fieldName(fe validator.FieldError) string {
	// Namespace is "CompetitorInput.last_finishes[2]"; drop the struct name.
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s values", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
