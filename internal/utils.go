package internal

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most max runes, appending "..." when cut.
// Tabs are shown as \t so separators stay visible in log output.
func Truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\t", `\t`)
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Plural returns singular when n is 1 and plural otherwise
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
