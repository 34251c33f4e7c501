package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/forgo/jobtrack/internal/model"
)

// jobKeyPattern matches the key part of a job record id
var jobKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// normalizeJobID accepts "job:<key>" or a bare key and returns the full
// record id. Anything else can never name a stored job.
func normalizeJobID(id string) (string, bool) {
	key := strings.TrimPrefix(strings.TrimSpace(id), "job:")
	if !jobKeyPattern.MatchString(key) {
		return "", false
	}
	return "job:" + key, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

func validateName(name string) []model.FieldError {
	n := len([]rune(name))
	if n == 0 {
		return []model.FieldError{{Field: "name", Message: "please provide name"}}
	}
	if n < model.MinNameLength || n > model.MaxNameLength {
		return []model.FieldError{{Field: "name", Message: fmt.Sprintf("name must be between %d and %d characters", model.MinNameLength, model.MaxNameLength)}}
	}
	return nil
}

func validateEmail(email string) []model.FieldError {
	if email == "" {
		return []model.FieldError{{Field: "email", Message: "please provide email"}}
	}
	if !isValidEmail(email) {
		return []model.FieldError{{Field: "email", Message: "please provide a valid email"}}
	}
	return nil
}

func validatePassword(password string) []model.FieldError {
	if password == "" {
		return []model.FieldError{{Field: "password", Message: "please provide password"}}
	}
	if len(password) < model.MinPasswordLength {
		return []model.FieldError{{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", model.MinPasswordLength)}}
	}
	if len(password) > model.MaxPasswordLength {
		return []model.FieldError{{Field: "password", Message: fmt.Sprintf("password must be at most %d characters", model.MaxPasswordLength)}}
	}
	return nil
}

func validateOptional(field, value string, max int) []model.FieldError {
	if len([]rune(value)) > max {
		return []model.FieldError{{Field: field, Message: fmt.Sprintf("%s must be %d characters or less", field, max)}}
	}
	return nil
}
