// Package dto declares the input shapes for every mutating operation
// and the constraints that make them valid.
//
// Each request type carries an explicit Validate method returning a
// field-to-message map; a nil map signals success. Constraints run
// before any entity is touched, so a failed request never leaves a
// partially mutated entity behind. Existence of referenced ids (a
// task's user_id) is deliberately NOT checked here: the service
// resolves references against the store as a separate pipeline step.
package dto

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sakif/task-tracker/internal/model"
)

// maxFieldLength bounds name, email and title, counted in characters
// rather than bytes so multibyte input is not penalized.
const maxFieldLength = 255

// CreateUserRequest is the body of POST /api/users and PUT /api/users/{id}.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate checks name and email. Email syntax is validated with
// net/mail; the address must stand alone (no display-name form).
func (r CreateUserRequest) Validate() map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "Name is required"
	} else if utf8.RuneCountInString(r.Name) > maxFieldLength {
		errs["name"] = fmt.Sprintf("Name must be %d characters or less", maxFieldLength)
	}

	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "Email is required"
	} else if utf8.RuneCountInString(r.Email) > maxFieldLength {
		errs["email"] = fmt.Sprintf("Email must be %d characters or less", maxFieldLength)
	} else if !isValidEmail(r.Email) {
		errs["email"] = "Invalid email format"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CreateTaskRequest is the body of POST /api/tasks and PUT /api/tasks/{id}.
//
// UserID is a pointer so "absent" and "zero" stay distinguishable in
// JSON; a body with a non-integer user_id fails decoding before
// validation ever runs, which is the malformed-input path.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      *int64 `json:"user_id"`
}

// Validate checks title and the presence of user_id. Description is
// unconstrained. Whether user_id resolves to an existing user is the
// service's job.
func (r CreateTaskRequest) Validate() map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = "Title is required"
	} else if utf8.RuneCountInString(r.Title) > maxFieldLength {
		errs["title"] = fmt.Sprintf("Title must be %d characters or less", maxFieldLength)
	}

	if r.UserID == nil || *r.UserID <= 0 {
		errs["user_id"] = "User ID is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateTaskStatusRequest is the body of PUT /api/tasks/{id}/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// Validate requires a status from the enumerated set.
func (r UpdateTaskStatusRequest) Validate() map[string]string {
	if r.Status == "" {
		return map[string]string{"status": "Status is required"}
	}
	if !model.Status(r.Status).IsValid() {
		return map[string]string{
			"status": "Status must be one of: todo, in_progress, done",
		}
	}
	return nil
}

// isValidEmail accepts addr-spec only. mail.ParseAddress also accepts
// "Name <user@host>"; comparing the parsed address back against the
// input rejects that form.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
