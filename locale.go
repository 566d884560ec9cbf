package exprtree

import (
	"strings"
	"unicode"
)

// Normalize prepares raw input for Tokenize. It removes whitespace and control
// characters, and when international is set it swaps every ',' with '.' and
// every '.' with ',', so that "1.234,5" becomes "1,234.5". No other validation
// is performed.
func Normalize(src string, international bool) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), unicode.IsControl(r):
			return -1
		case !international:
			return r
		case r == ',':
			return '.'
		case r == '.':
			return ','
		}
		return r
	}, src)
}
