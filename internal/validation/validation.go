// Package validation binds and validates request payloads.
//
// Query parameters are checked with validator struct tags; record fields
// go through the explicit validators in fields.go. Both produce the same
// field-error list, which BindAndValidate returns as a 422.
package validation
