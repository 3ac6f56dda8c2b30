package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewJoinCode returns an uppercase hex code of the given length taken from a
// random UUID. Lengths beyond 32 are capped.
func NewJoinCode(length int) string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if length > 0 && length < len(code) {
		code = code[:length]
	}
	return code
}

// NormalizeJoinCode trims and uppercases a code typed by a participant.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
