package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrQueryEmpty is returned when the search query is empty or whitespace-only after trim.
var ErrQueryEmpty = errors.New("search query is required")

// ErrQueryTooLong is returned when the search query length exceeds the maximum.
var ErrQueryTooLong = errors.New("search query too long")

// ErrQueryInvalidChars is returned when the search query contains disallowed characters.
var ErrQueryInvalidChars = errors.New("search query contains invalid characters")

// ValidateSearchQuery trims the input, enforces a maximum length (maxLen in
// runes, 0 disables the check), and restricts to allowed characters: letters
// (Unicode), digits, space, comma, hyphen, period, apostrophe. Returns the
// trimmed string or an error suitable for 400 INVALID_REQUEST responses.
// Normalization (lowercase) is left to the resolver.
func ValidateSearchQuery(input string, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrQueryEmpty
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrQueryTooLong
	}
	for _, c := range r {
		if !isAllowedQueryRune(c) {
			return "", ErrQueryInvalidChars
		}
	}
	return s, nil
}

// isAllowedQueryRune returns true for letters (Unicode), digits, space,
// comma, hyphen, period, apostrophe.
func isAllowedQueryRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}
