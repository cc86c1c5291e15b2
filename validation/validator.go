// Package validation wraps go-playground/validator with the console's custom rules
// and turns field errors into messages that can be shown to a user verbatim.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HeaderNamePattern is the accepted shape of an HTTP header name in interface definitions.
var HeaderNamePattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// Validator wraps go-playground/validator with the console's custom rules.
type Validator struct {
	validate *validator.Validate
}

// enumRules maps custom tags to the closed value sets of the schema model.
var enumRules = map[string][]string{
	"type_kind":      {"string", "number", "boolean", "custom"},
	"param_group":    {"input", "output", "fixed"},
	"param_location": {"query", "header", "body", "path"},
	"http_method":    {"GET", "POST", "PUT", "PATCH", "DELETE"},
}

// New creates a Validator with the custom rules registered:
//   - header_name: matches HeaderNamePattern
//   - notblank: non-empty after trimming whitespace
//   - type_kind, param_group, param_location, http_method: closed value sets
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match what users typed in forms and draft files.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "header_name", func(fl validator.FieldLevel) bool {
		return HeaderNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	for tag, values := range enumRules {
		mustRegister(v, tag, oneOf(values))
	}

	return &Validator{validate: v}
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates s against its validate tags.
// Field failures are returned as *ValidationError; other failures are returned unchanged.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// Var validates a single value against tag, e.g. v.Var(u, "url").
func (v *Validator) Var(value any, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// IsURL reports whether s is a well-formed absolute URL.
func (v *Validator) IsURL(s string) bool {
	return v.validate.Var(s, "required,url") == nil
}

// IsHeaderName reports whether s is an acceptable header name.
func (v *Validator) IsHeaderName(s string) bool {
	return HeaderNamePattern.MatchString(s)
}

// ValidationError carries one entry per failed field.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// NewValidationError converts go-playground/validator errors into a ValidationError.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fieldErrors := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Message: getErrorMessage(err),
		})
	}
	return &ValidationError{Errors: fieldErrors}
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return ve.Errors[0].Message
	default:
		return fmt.Sprintf("%s (and %d more)", ve.Errors[0].Message, len(ve.Errors)-1)
	}
}

// First returns the first field error, if any.
func (ve *ValidationError) First() (FieldError, bool) {
	if len(ve.Errors) == 0 {
		return FieldError{}, false
	}
	return ve.Errors[0], true
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		field = "value"
	}
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "type_kind", "param_group", "param_location", "http_method":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(enumRules[fe.Tag()], ", "))
	case "header_name":
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_'", field)
	default:
		return fmt.Sprintf("%s failed validation", field)
	}
}
