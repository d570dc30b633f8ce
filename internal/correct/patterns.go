// Package correct repairs OCR-damaged slide text in two stages: an
// ordered table of deterministic pattern rewrites plus garbage
// filtering, then an optional batched pass through an external
// correction service.
package correct

import (
	"fmt"
	"regexp"
	"strings"
)

// rewriteRule is one ordered substitution. Rules run case-insensitively
// against the current intermediate text, so later rules see the output
// of earlier ones.
type rewriteRule struct {
	re          *regexp.Regexp
	replacement string
}

var rewriteRules = []rewriteRule{
	// Character substitutions, including lowercase L and digit 1 read
	// as uppercase I in abbreviations ("ROl", "RO1", "15-25l%").
	{regexp.MustCompile(`(?i)supplyyote`), "supply chain"},
	{regexp.MustCompile(`(?i)inteligent`), "intelligent"},
	{regexp.MustCompile(`(?i)\bROl\b`), "ROI"},
	{regexp.MustCompile(`(?i)\bRO1\b`), "ROI"},
	{regexp.MustCompile(`(?i)\bl\b(\s*%)`), "I${1}"},

	// Icon and glyph artifacts.
	{regexp.MustCompile(`(?i)\bi\nS\b`), ""},
	{regexp.MustCompile(`(?i)\b→0\b`), ""},
	{regexp.MustCompile(`(?i)^[→←↑↓]\d*$`), ""},

	// Line break hygiene.
	{regexp.MustCompile(`(?i)\n\s+`), "\n"},
	{regexp.MustCompile(`(?i)\s+\n`), "\n"},

	// Frequent misspellings in business decks.
	{regexp.MustCompile(`(?i)\bforecsat\b`), "forecast"},
	{regexp.MustCompile(`(?i)\binventroy\b`), "inventory"},
	{regexp.MustCompile(`(?i)\bmanagment\b`), "management"},
	{regexp.MustCompile(`(?i)\banalsis\b`), "analysis"},
	{regexp.MustCompile(`(?i)\boptimzation\b`), "optimization"},
	{regexp.MustCompile(`(?i)\befficeint\b`), "efficient"},
	{regexp.MustCompile(`(?i)\bautomtic\b`), "automatic"},
	{regexp.MustCompile(`(?i)\boperatinal\b`), "operational"},
}

// garbagePatterns match texts that are pure OCR artifacts, checked
// against the whitespace-trimmed value: icon misreads, bare arrows with
// an optional trailing number, and runs of 1-3 symbol characters.
var garbagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^i\nS$`),
	regexp.MustCompile(`^→\d*$`),
	regexp.MustCompile(`^[^\w\s]{1,3}$`),
}

// ApplyRewrites runs the ordered substitution table over text. It
// returns the rewritten text and a description of each rule that
// changed it, for diagnostics.
func ApplyRewrites(text string) (string, []string) {
	result := text
	var applied []string

	for _, rule := range rewriteRules {
		next := rule.re.ReplaceAllString(result, rule.replacement)
		if next != result {
			applied = append(applied, fmt.Sprintf("%s -> %q", rule.re.String(), rule.replacement))
			result = next
		}
	}
	return result, applied
}

// IsGarbage reports whether the text, after trimming, matches a known
// artifact pattern and should be dropped rather than rendered.
func IsGarbage(text string) bool {
	text = strings.TrimSpace(text)
	for _, re := range garbagePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
