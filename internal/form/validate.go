package form

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/frahmantamala/campus-resources/internal"
)

// Validator checks records against their validate tags and reports fields
// by JSON name.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		return jsonName(sf)
	})
	return &Validator{v: v}
}

// Missing lists required fields that are still empty.
func (val *Validator) Missing(record any) []string {
	var missing []string
	for _, fe := range val.fieldErrors(record) {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	return missing
}

// Check runs every rule and returns a validation AppError, or nil.
func (val *Validator) Check(record any) error {
	fes := val.fieldErrors(record)
	if len(fes) == 0 {
		return nil
	}
	errs := make([]internal.ValidationError, len(fes))
	for i, fe := range fes {
		errs[i] = internal.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    string(code(fe)),
		}
	}
	return internal.NewValidationFieldErrors(errs...)
}

func (val *Validator) fieldErrors(record any) validator.ValidationErrors {
	err := val.v.Struct(record)
	var fes validator.ValidationErrors
	if errors.As(err, &fes) {
		return fes
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func code(fe validator.FieldError) internal.ErrorCode {
	if fe.Tag() == "required" {
		return internal.ErrCodeRequiredField
	}
	return internal.ErrCodeInvalidValue
}
