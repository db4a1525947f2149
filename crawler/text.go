package crawler

import "strings"

var punctuationReplacer = strings.NewReplacer(
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2013", "-",
	"\u2014", "-",
	"\u2026", "...",
	"\u00a0", " ",
)

// NormalizeText maps typographic punctuation to ASCII and trims the result.
func NormalizeText(s string) string {
	return strings.TrimSpace(punctuationReplacer.Replace(s))
}
