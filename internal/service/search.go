package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// foldText lower-cases s and strips diacritics so "Nakato Zoë" matches "zoe".
func foldText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func containsAny(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(foldText(f), query) {
			return true
		}
	}
	return false
}
