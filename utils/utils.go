// Package utils provides utility functions for the application.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// ParseUUID parses a UUID string, trimming surrounding whitespace
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// NormalizeNumber strips a leading '+' and all whitespace from a phone number
// so it can be compared against rate deck prefixes.
func NormalizeNumber(number string) string {
	n := strings.TrimSpace(number)
	n = strings.TrimPrefix(n, "+")
	return strings.ReplaceAll(n, " ", "")
}
