package rules

import (
	"strings"
	"unicode"
)

// Name converts a Java identifier to pseudocode UPPER_SNAKE_CASE.
//
// An underscore is inserted at every lowercase→uppercase and
// digit→uppercase transition, then the result is uppercased, so
// "test123Variable" becomes "TEST123_VARIABLE". Names without lowercase
// letters are returned unchanged, which keeps the conversion idempotent.
func Name(id string) string {
	if !strings.ContainsFunc(id, unicode.IsLower) {
		return id
	}

	var sb strings.Builder
	sb.Grow(len(id) + 4)

	var prev rune
	for i, r := range id {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToUpper(r))
		prev = r
	}
	return sb.String()
}
