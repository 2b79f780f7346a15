package solidity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var normalizeRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?s)/\*.*?\*/`), " "},
	{regexp.MustCompile(`//[^\n]*`), " "},
	{regexp.MustCompile(`(?i)pragma\s+solidity[^;]*;`), " "},
	{regexp.MustCompile(`(?i)import\s+["'][^"']+["'];?`), " "},
	// long hex values are addresses; short ones may be meaningful constants
	{regexp.MustCompile(`0x[a-fA-F0-9]{20,}`), "<ADDR>"},
	{regexp.MustCompile(`\b\d{10,}\b`), "<LARGE_NUM>"},
	{regexp.MustCompile(`"[^"]{50,}"`), "<LONG_STR>"},
	{regexp.MustCompile(`'[^']{50,}'`), "<LONG_STR>"},
	{regexp.MustCompile(`\s+`), " "},
}

// NormalizeForModel prepares source for the classifier, which was trained on
// code without comments, pragmas, imports and long literals.
func NormalizeForModel(code string) string {
	for _, r := range normalizeRules {
		code = r.re.ReplaceAllString(code, r.repl)
	}
	return strings.TrimSpace(code)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
// n <= 0 disables truncation.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
