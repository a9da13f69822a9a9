// Package validation provides input validation for configuration sections,
// API requests and generator inputs.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection.
//
// # Struct Tag Validation
//
//	type Options struct {
//	    Prefix string `validate:"required,min=2,identifier"`
//	}
//	err := validation.Validate(opts)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("pipeline", req.Pipeline)
//	err := v.Validate()
package validation
