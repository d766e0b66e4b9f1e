package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var identifierRegex = regexp.MustCompile(`^[^\x00-\x1f\x7f]+$`)

// IsValidIdentifier reports whether name can be quoted as a table or column
// identifier: non-empty, at most 63 bytes and free of control characters.
func IsValidIdentifier(name string) bool {
	return len(name) <= 63 && utf8.ValidString(name) && identifierRegex.MatchString(name)
}

func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

var titleCaser = cases.Title(language.English)

// ColumnLabel turns a column name like "user_id" into "User Id".
func ColumnLabel(column string) string {
	return titleCaser.String(strings.ReplaceAll(column, "_", " "))
}

// Truncate shortens s to at most max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// SplitList splits a comma separated query value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
