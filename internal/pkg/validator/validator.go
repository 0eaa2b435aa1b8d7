package validator

import (
	"errors"
	"net/mail"
	"path/filepath"
	"strings"
)

// Email accepts a bare address; display-name forms are rejected.
func Email(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email format")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || !strings.Contains(parts[1], ".") {
		return errors.New("invalid email domain")
	}
	return nil
}

// ShareCode validates a Home Office right-to-work share code: nine letters or
// digits, optionally grouped with spaces or dashes ("W7X 9KL M2P").
func ShareCode(code string) error {
	cleaned := NormalizeShareCode(code)
	if len(cleaned) != 9 {
		return errors.New("share code must be 9 characters")
	}
	for _, c := range cleaned {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return errors.New("share code may only contain letters and digits")
		}
	}
	return nil
}

func NormalizeShareCode(code string) string {
	r := strings.NewReplacer(" ", "", "-", "")
	return strings.ToUpper(r.Replace(code))
}

// DocumentExtension returns the lower-cased extension of name if it is one of allowed.
func DocumentExtension(name string, allowed ...string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "", errors.New("file has no extension")
	}
	for _, a := range allowed {
		if ext == a {
			return ext, nil
		}
	}
	return "", errors.New("unsupported file type: ." + ext)
}

func Required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " is required")
	}
	return nil
}

func OneOf(value, field string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.New("invalid " + field + ": " + value)
}
