// Package errs defines custom error types and utilities.
//
// Its purpose is to create specific error structures
// (e.g. FieldError for validation or HTTPError for API responses)
// so clients receive meaningful, actionable and consistent
// error messages.
//
//   - Return consistent error shapes to API clients (JSON).
//   - Support field-level validation errors.
//   - Support "action hints" (like redirect) that frontends can interpret.
//   - Play nicely with Go's standard errors package (Is / As / Unwrap).
package errs
