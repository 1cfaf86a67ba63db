// internal/app/system/inputval/inputval.go

// Package inputval holds the field constraints for user input. The
// constraints mirror what the submission form promises: 10–500
// character descriptions and 1–5 images of at most 5 MB each.
package inputval

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Submission constraints.
const (
	DescriptionMin = 10
	DescriptionMax = 500
	MinImages      = 1
	MaxImages      = 5
	MaxImageSize   = 5 * 1024 * 1024 // bytes
)

// Registration constraints.
const (
	NameMin     = 2
	PasswordMin = 6
)

// AcceptedImageTypes are the content types a submission image may have.
var AcceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ValidationError reports a field constraint violation. It is surfaced
// inline to the submitting form, never as a fatal error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Fail builds a ValidationError for a field.
func Fail(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Description validates a sanitized submission description.
func Description(s string) *ValidationError {
	n := utf8.RuneCountInString(s)
	if n < DescriptionMin {
		return Fail("description", fmt.Sprintf("description must be at least %d characters", DescriptionMin))
	}
	if n > DescriptionMax {
		return Fail("description", fmt.Sprintf("description must be at most %d characters", DescriptionMax))
	}
	return nil
}

// ImageCount validates the number of images on a submission.
func ImageCount(n int) *ValidationError {
	if n < MinImages {
		return Fail("images", "at least one image is required")
	}
	if n > MaxImages {
		return Fail("images", fmt.Sprintf("at most %d images are allowed", MaxImages))
	}
	return nil
}

// Image validates a single image's size and content type.
func Image(contentType string, size int64) *ValidationError {
	if size > MaxImageSize {
		return Fail("images", "each image must be 5 MB or smaller")
	}
	if !AcceptedImageTypes[strings.ToLower(contentType)] {
		return Fail("images", "only jpeg, jpg, png and webp images are accepted")
	}
	return nil
}

// Email checks the minimal shape of an email address. Deliverability
// is the mail system's problem, not ours.
func Email(s string) *ValidationError {
	if !strings.Contains(s, "@") {
		return Fail("email", "a valid email address is required")
	}
	return nil
}

// Password enforces the minimum credential length.
func Password(s string) *ValidationError {
	if utf8.RuneCountInString(s) < PasswordMin {
		return Fail("password", fmt.Sprintf("password must be at least %d characters", PasswordMin))
	}
	return nil
}

// Registration validates the fields of a new account.
func Registration(name, division, email, password string) *ValidationError {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < NameMin {
		return Fail("name", fmt.Sprintf("name must be at least %d characters", NameMin))
	}
	if strings.TrimSpace(division) == "" {
		return Fail("division", "division is required")
	}
	if verr := Email(email); verr != nil {
		return verr
	}
	return Password(password)
}
