// Package apperror defines the application's error taxonomy.
//
// Every failure mode a request can hit maps to exactly one sentinel:
// undecodable input, constraint violations on a DTO, a missing entity,
// a store-enforced conflict (duplicate email, user still owning tasks),
// or any other persistence failure. Handlers translate sentinels to
// HTTP status codes with errors.Is; the service and repository layers
// never see a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed means the request body could not be parsed into the
	// expected shape at all. Distinct from ErrValidation: a malformed
	// body never reaches constraint checking.
	ErrMalformed = errors.New("malformed input")

	// ErrValidation means the input parsed but violated one or more
	// declarative constraints. The AppError carries the field map.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both a path-addressed entity that does not
	// exist and a referenced id (a task's user_id) that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict is a store-enforced integrity rule: unique email,
	// or deleting a user that still owns tasks.
	ErrConflict = errors.New("conflict")
)

// AppError is the error type returned across layer boundaries.
//
// Message is safe to show to a client. Fields is populated only for
// validation failures and maps field path to a human-readable message,
// e.g. {"email": "Invalid email format"}.
type AppError struct {
	Err     error
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel so errors.Is works through wrapping.
func (e *AppError) Unwrap() error {
	return e.Err
}

// MalformedInput reports a body that could not be decoded.
func MalformedInput() *AppError {
	return &AppError{
		Err:     ErrMalformed,
		Message: "Invalid JSON",
	}
}

// ValidationFailed reports constraint violations keyed by field path.
// The map must be non-empty; an empty map means validation passed and
// no error should be constructed.
func ValidationFailed(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NotFound reports a missing entity by resource name and id.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// UserNotFound reports an unresolved user reference. The message matches
// what API clients see when a task's user_id points nowhere.
func UserNotFound() *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: "User not found",
	}
}

// DuplicateEmail reports a violation of the unique email constraint.
// Constructed by the sqlite layer from the UNIQUE result code, never
// from matching substrings of the driver's error message.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "Email already exists",
	}
}

// UserHasTasks reports a blocked user deletion: the foreign key from
// tasks restricts deleting a user that still owns at least one task.
func UserHasTasks() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "Cannot delete user with existing tasks",
	}
}
