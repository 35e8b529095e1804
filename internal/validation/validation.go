package validation

import (
	"fmt"
	"regexp"
	"strings"

	"pigmemento/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// NormalizeAnswer lowercases and trims a submitted answer label
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// ValidateAnswer checks that a normalized answer is an allowed label
func ValidateAnswer(answer string) error {
	if !models.ValidLabel(answer) {
		return ValidationError{Field: "answer", Message: "answer must be 'benign' or 'malignant'"}
	}
	return nil
}

// ValidateDifficulty checks an optional difficulty filter. The empty
// string means no filter and is valid.
func ValidateDifficulty(difficulty string) error {
	if difficulty == "" {
		return nil
	}
	if !models.ValidDifficulty(difficulty) {
		return ValidationError{Field: "difficulty", Message: "difficulty must be 'easy', 'med' or 'hard'"}
	}
	return nil
}
