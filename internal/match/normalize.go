package match

import (
	"strings"
	"unicode"
)

// NormalizeName prepares a display name for comparison: casefold,
// replace runs of non-alphanumeric characters with a single space, trim.
// Returns "" for names with no comparable content; such items are never
// matched by the fuzzy or n-gram strategies.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
		} else if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// sortTokens returns the normalized name with its tokens in sorted
// order, so word order does not affect fuzzy similarity.
func sortTokens(normalized string) string {
	if normalized == "" {
		return ""
	}
	fields := strings.Fields(normalized)
	// insertion sort; names have a handful of tokens
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j] < fields[j-1]; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
	return strings.Join(fields, " ")
}
