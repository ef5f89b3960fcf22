package loader

import (
	"strings"
	"unicode"
)

// GoName converts kebab-case and snake_case names to exported Go names:
// "user-id" and "user_id" both become "UserId". Names without separators
// only get their first letter upper-cased.
func GoName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
