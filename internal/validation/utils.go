package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/deppfellow/swiftsave-helpdesk/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Validate may normalize the payload in place (trim strings, canonicalize enums),
// so implementations use pointer receivers. It returns validator.ValidationErrors
// for tag-based checks or CustomValidationErrors for explicit ones.
type Validatable interface {
	Validate() error
}

// Defaulter is implemented by payloads whose optional fields have non-zero defaults.
// SetDefaults runs before binding, so bound values win.
type Defaulter interface {
	SetDefaults()
}

// CustomValidationError represents a single validation issue for a specific field.
// It is used for rules that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
	Value   string
}

// CustomValidationErrors is an ordered list of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// Add appends one entry per message for field and returns the extended list.
func (c CustomValidationErrors) Add(field string, messages ...string) CustomValidationErrors {
	for _, msg := range messages {
		c = append(c, CustomValidationError{Field: field, Message: msg})
	}
	return c
}

// AddValue is Add with the offending value echoed back on every entry.
func (c CustomValidationErrors) AddValue(field, value string, messages ...string) CustomValidationErrors {
	for _, msg := range messages {
		c = append(c, CustomValidationError{Field: field, Message: msg, Value: value})
	}
	return c
}

// Err returns nil for an empty list, so callers can `return v.Err()`.
func (c CustomValidationErrors) Err() error {
	if len(c) == 0 {
		return nil
	}
	return c
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance.
//
// Field names in validator.ValidationErrors follow the query/json tag of the
// field, so errors report "por_pagina" instead of "PorPagina".
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"query", "json", "param"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
	})
	return validate
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. payload.SetDefaults() when payload is a Defaulter.
//  2. c.Bind(payload) populates path params, query params (GET/DELETE) and the JSON body.
//  3. payload.Validate() applies validation rules.
//
// Binding and validation failures both return a 422 *errs.HTTPError with field errors.
// payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if d, ok := payload.(Defaulter); ok {
		d.SetDefaults()
	}

	if err := c.Bind(payload); err != nil {
		return errs.ValidationError([]errs.FieldError{bindFieldError(c, err)})
	}

	if _, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.ValidationError(fieldErrors)
	}

	return nil
}

// bindFieldError turns a binding failure into a field error.
//
// echo's DefaultBinder reports failures as *echo.HTTPError with the decoder
// error as Internal, so the json/strconv error is recovered with errors.As.
func bindFieldError(c echo.Context, err error) errs.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return errs.FieldError{
			Field: field,
			Error: fmt.Sprintf("must be of type %s", typeErr.Type),
			Value: typeErr.Value,
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return errs.FieldError{Field: "body", Error: "is not valid JSON"}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return errs.FieldError{Field: "query", Error: "must be a number", Value: numErr.Num}
	}

	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		value := ""
		if len(bindErr.Values) > 0 {
			value = bindErr.Values[0]
		}
		return errs.FieldError{Field: bindErr.Field, Error: "has an invalid type", Value: value}
	}

	field := "query"
	if c.Request().ContentLength != 0 {
		field = "body"
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return errs.FieldError{Field: field, Error: msg}
		}
	}

	return errs.FieldError{Field: field, Error: "could not be parsed"}
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, e := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
				Value: e.Value,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "body", Error: err.Error()}}
	}

	// Convert validator.ValidationErrors into user-friendly messages.
	for _, err := range validationErrors {
		field := err.Field()
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// strings: minimum length; numbers: minimum value
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "gt":
			msg = fmt.Sprintf("must be greater than %s", err.Param())

		case "lte":
			msg = fmt.Sprintf("must be at most %s", err.Param())

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "email":
			msg = "must be a valid email address"

		case "numeric":
			msg = "must contain only digits"

		case "uuid":
			msg = "must be a valid UUID"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
			Value: fmt.Sprintf("%v", err.Value()),
		})
	}

	return "Validation failed", fieldErrors
}

// uuidRegex matches the canonical UUID format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidUUID checks whether a string matches the UUID format.
// It validates the format only, not the version/variant bits.
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(uuid)
}
