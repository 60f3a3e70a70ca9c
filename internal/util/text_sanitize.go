package util

import (
	"strings"
	"unicode"
)

// SanitizeText normalizes text pulled out of uploaded documents before it
// reaches the validator. Page breaks become newlines, CRLF collapses to LF,
// and NUL, DEL, the byte-order mark and other non-printing controls are
// dropped. Postgres text columns reject NUL outright.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	blank := 0
	for i, ch := range s {
		switch {
		case ch == '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				continue
			}
			ch = '\n'
		case ch == '\f' || ch == '\v':
			ch = '\n'
		case ch == '\ufeff':
			continue
		}
		if ch == '\n' {
			// More than one empty line in a row is extraction noise.
			blank++
			if blank > 2 {
				continue
			}
			b.WriteRune(ch)
			continue
		}
		if ch != '\t' && unicode.IsControl(ch) {
			continue
		}
		if ch != ' ' && ch != '\t' {
			blank = 0
		}
		b.WriteRune(ch)
	}
	return strings.TrimSpace(b.String())
}
