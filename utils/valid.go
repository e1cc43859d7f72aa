package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptPattern   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonPhoneDigits  = regexp.MustCompile(`[^\d+]`)
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInvalidPhone = errors.New("invalid phone number length")
)

// SanitizeInput trims free text, strips script blocks and control
// characters, and HTML-escapes what is left.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = scriptPattern.ReplaceAllString(input, "")
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, input)
	return html.EscapeString(input)
}

// SanitizeEmail lowercases and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// SanitizePhone normalizes a phone number to +digits. Empty is allowed.
func SanitizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}
	phone = nonPhoneDigits.ReplaceAllString(phone, "")
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	if len(phone) < 8 || len(phone) > 15 {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
