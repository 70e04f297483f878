package views

import (
	"regexp"
	"strings"

	"github.com/tgienger/taskdeck/internal/models"
)

// invalid is a form validation failure. Its text is shown as is.
type invalid string

func (e invalid) Error() string { return string(e) }

const (
	errFillAllFields    invalid = "Please fill in all fields"
	errPasswordTooShort invalid = "Password must be at least 6 characters long"
	errPasswordMismatch invalid = "Passwords do not match"
	errInvalidEmail     invalid = "Please enter a valid email address"
	errNamesRequired    invalid = "First name and last name are required"
	errTitleRequired    invalid = "Title is required"
	errNameRequired     invalid = "Project name is required"
	errInvalidDueDate   invalid = "Invalid date format (YYYY-MM-DD)"
	errInvalidColor     invalid = "Color must look like #rrggbb"
)

const minPasswordLen = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func validateLogin(email, password string) error {
	if blank(email, password) {
		return errFillAllFields
	}
	return nil
}

func validateRegistration(r models.Registration, confirm string) error {
	if blank(r.Email, r.Password, r.FirstName, r.LastName, confirm) {
		return errFillAllFields
	}
	if !emailPattern.MatchString(r.Email) {
		return errInvalidEmail
	}
	if len(r.Password) < minPasswordLen {
		return errPasswordTooShort
	}
	if r.Password != confirm {
		return errPasswordMismatch
	}
	return nil
}

func validateNames(first, last string) error {
	if blank(first, last) {
		return errNamesRequired
	}
	return nil
}

func validateTask(in models.TaskInput) error {
	if blank(in.Title) {
		return errTitleRequired
	}
	if in.DueDate != nil {
		if _, err := models.ParseDate(*in.DueDate); err != nil {
			return errInvalidDueDate
		}
	}
	return nil
}

func validateProject(in models.ProjectInput) error {
	if blank(in.Name) {
		return errNameRequired
	}
	if in.Color != "" && !colorPattern.MatchString(in.Color) {
		return errInvalidColor
	}
	return nil
}
