package utils

import "strings"

// IsEventID reports whether value looks like an event identifier: 32 hex
// characters, dashes tolerated (UUID spelling of the same id).
func IsEventID(value string) bool {
	value = strings.ReplaceAll(value, "-", "")
	return isHex(value, 32)
}

// IsSpanID reports whether value looks like a span identifier: 16 hex
// characters.
func IsSpanID(value string) bool {
	return isHex(value, 16)
}

func isHex(value string, length int) bool {
	if len(value) != length {
		return false
	}
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
