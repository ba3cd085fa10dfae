package utils

import (
	"net/mail"
	"regexp"
	"strings"

	"diario/pkg/models"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// ValidateUsername checks the allowed username shape
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return models.ErrInvalidInput
	}
	return nil
}

// ValidateEmail checks address syntax only; deliverability is proven by
// the double opt-in confirmation
func ValidateEmail(address string) error {
	if _, err := mail.ParseAddress(address); err != nil {
		return models.ErrInvalidInput
	}
	return nil
}

// ValidateInstanteTitle validates a journal entry title
func ValidateInstanteTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < 1 || len(title) > 255 {
		return models.ErrInvalidInput
	}
	return nil
}

// ValidateCommentContent rejects empty-after-trim or oversized content
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.ErrInvalidInput
	}
	if len(content) > models.MaxCommentLength {
		return models.ErrInvalidInput
	}
	return nil
}
