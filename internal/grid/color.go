package grid

import (
	"fmt"
	"strings"
)

// Color is a normalized 24-bit RGB value stored as lowercase "#rrggbb".
// The zero value is not a valid color; values are produced by ParseColor.
type Color string

// ParseColor normalizes one "#RRGGBB" string into a Color. Surrounding
// whitespace is trimmed and hex digits are lowercased. Anything else,
// including color names, fails with ErrInvalidColor.
func ParseColor(raw string) (Color, error) {
	v := strings.TrimSpace(raw)
	if len(v) != 7 || v[0] != '#' {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	for _, r := range v[1:] {
		if !isHexDigit(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, raw)
		}
	}
	return Color(strings.ToLower(v)), nil
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}
