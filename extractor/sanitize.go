package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize drops NUL bytes, control characters other than tab, newline and
// carriage return, and invalid UTF-8 from parser output.
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, isJunk) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		if isJunk(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isJunk(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 32, r == 127, r >= 128 && r <= 159:
		return true
	default:
		return !unicode.IsPrint(r) && !unicode.IsSpace(r)
	}
}
