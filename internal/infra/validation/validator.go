// Package validation checks command and query struct tags before dispatch.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"rento/internal/domain/shared/fault"
)

type StructValidator struct {
	validate *validator.Validate
}

func New() (*StructValidator, error) {
	v := validator.New()
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return nil, err
	}
	return &StructValidator{validate: v}, nil
}

// Validate reports the first failing field as a Validation fault. Messages that are not
// structs pass through.
func (s *StructValidator) Validate(ctx context.Context, message any) error {
	err := s.validate.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return fault.Wrap(fault.Validation, err, describe(fields[0]))
	}
	return fault.Wrap(fault.Validation, err, "Invalid request")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
