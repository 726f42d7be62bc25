package project

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidateName trims name and checks it is usable as a project name.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return "", fmt.Errorf("%w: %d characters, maximum %d", ErrInvalidName, n, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune("/#+", r) {
			return "", fmt.Errorf("%w: %q not allowed", ErrInvalidName, r)
		}
	}
	return name, nil
}
