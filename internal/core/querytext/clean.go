package querytext

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// droppable is NUL, ASCII and C1 controls and DEL; tab, CR and LF survive
var droppable = runes.Predicate(func(r rune) bool {
	switch r {
	case '\n', '\r', '\t':
		return false
	}
	return unicode.IsControl(r)
})

// Clean drops invalid UTF-8 and control characters, then NFC normalizes s
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	out, _, err := transform.String(transform.Chain(runes.Remove(droppable), norm.NFC), s)
	if err != nil {
		return norm.NFC.String(s)
	}
	return out
}
