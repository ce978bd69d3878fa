// Package htmltext holds best-effort cleanup for feed text.
//
// StripTags is a pattern match, not an HTML parser. Anything between a "<"
// and the next ">" is removed, so malformed markup or a literal "<" in text
// can lose content. Entities are left as they are.
package htmltext

import "regexp"

var tagPattern = regexp.MustCompile(`<.*?>`)

// StripTags removes every angle-bracket delimited run from s.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Truncate returns the first n characters of s, counted in runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Summary strips tags from raw and keeps the first n characters.
func Summary(raw string, n int) string {
	return Truncate(StripTags(raw), n)
}
