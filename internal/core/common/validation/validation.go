package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	errs "github.com/frahmantamala/chat-users/internal"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// report json names so messages match the request body
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v against its `validate` tags and returns a field-level
// AppError, or nil when v is valid.
func Struct(v interface{}) *errs.AppError {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs.NewValidationError(err.Error(), errs.ErrCodeValidationFailed)
	}

	fields := make([]errs.ValidationError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, errs.ValidationError{
			Field:   fe.Field(),
			Message: fieldError(fe),
			Code:    string(errs.ErrCodeValidationFailed),
		})
	}
	return errs.NewValidationFieldErrors(fields)
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
