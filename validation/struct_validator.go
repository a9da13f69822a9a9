package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/pipegen/errors"
)

var (
	validate *validator.Validate
	once     sync.Once

	identifierRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	varNameRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// IsIdentifier reports whether s consists only of letters, digits and underscores.
func IsIdentifier(s string) bool { return identifierRe.MatchString(s) }

// IsVariableName reports whether s can be referenced as a $variable.
func IsVariableName(s string) bool { return varNameRe.MatchString(s) }

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return IsIdentifier(fl.Field().String())
		})
		_ = validate.RegisterValidation("varname", func(fl validator.FieldLevel) bool {
			return IsVariableName(fl.Field().String())
		})

		// Use json tag names for field names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate validates a struct using struct tags.
// Uses tags like `validate:"required,min=2,identifier"`.
func Validate(s any) error {
	fieldErrors, err := Check(s)
	if err != nil {
		return err
	}
	if len(fieldErrors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fe.Field+": "+fe.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": fieldErrors,
	}
	return appErr
}

// Check validates a struct and returns the individual field errors.
// The error return is non-nil only when s cannot be validated at all.
func Check(s any) ([]FieldError, error) {
	err := getValidator().Struct(s)
	if err == nil {
		return nil, nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, errors.Validation("validation failed")
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   e.Field(),
			Message: formatValidationError(e),
		})
	}
	return fieldErrors, nil
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "identifier":
		return "may only contain letters, digits and underscores"
	case "varname":
		return "must start with a letter or underscore and contain only letters, digits and underscores"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32) // lowercase
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
