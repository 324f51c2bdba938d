package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned for input rejected before any mutation. Its
// message is safe to show to the user.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

var (
	ErrEmptyTitle       = &ValidationError{"title cannot be empty"}
	ErrInvalidDate      = &ValidationError{"date must use YYYY-MM-DD"}
	ErrInvalidTime      = &ValidationError{"time must use HH:MM"}
	ErrInvalidPriority  = &ValidationError{"priority must be low, medium or high"}
	ErrInvalidEventType = &ValidationError{"type must be event, task or reminder"}
	ErrMissingFields    = &ValidationError{"please fill all fields"}
	ErrInvalidEmail     = &ValidationError{"invalid email address"}
	ErrPasswordMismatch = &ValidationError{"passwords do not match"}
	ErrTermsNotAccepted = &ValidationError{"you must agree to the terms and conditions"}
	ErrShortPassword    = &ValidationError{"password must be at least 6 characters"}
	ErrInvalidMode      = &ValidationError{"mode must be light or dark"}
	ErrInvalidColor     = &ValidationError{"accent color must be a hex color like #5A8DEE"}
)

// ErrUnsupportedVersion is returned when a stored list was written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported schema version")

// IsValidation reports whether err is a user input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = validator.New()

// check runs the struct tags of v and maps the first failure onto one of the
// sentinel errors above.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		return ErrEmptyTitle
	case "AgreeTerms":
		return ErrTermsNotAccepted
	}
	if fe.Tag() == "required" {
		return ErrMissingFields
	}
	switch fe.Field() {
	case "DueDate", "Date", "Birthday":
		return ErrInvalidDate
	case "DueTime", "Time":
		return ErrInvalidTime
	case "Priority":
		return ErrInvalidPriority
	case "Type":
		return ErrInvalidEventType
	case "Email":
		return ErrInvalidEmail
	case "ConfirmPassword":
		return ErrPasswordMismatch
	case "Password":
		return ErrShortPassword
	}
	return &ValidationError{fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))}
}
