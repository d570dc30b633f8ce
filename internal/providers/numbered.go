package providers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numberedItemRe matches a line opening a new numbered item: "[3] text".
var numberedItemRe = regexp.MustCompile(`^\[(\d+)\]\s*(.*)`)

// FormatNumberedList serializes texts as a bracketed numbered list, one
// item per line, for batch submission.
func FormatNumberedList(texts []string) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, t)
	}
	return b.String()
}

// ParseNumberedList parses a numbered-list response back into items. A
// new item starts only on a line matching the numbering pattern; other
// lines append, with a line break, to the currently open item, so items
// may span multiple lines. Lines arriving before any item has content,
// such as a model preamble, are dropped.
func ParseNumberedList(response string) []string {
	lines := strings.Split(strings.TrimSpace(response), "\n")

	var results []string
	var current []string
	currentNum := 1

	for _, line := range lines {
		m := numberedItemRe.FindStringSubmatch(line)
		if m == nil {
			if len(current) > 0 {
				current = append(current, line)
			}
			continue
		}

		num, _ := strconv.Atoi(m[1])
		if len(current) > 0 && num != currentNum {
			results = append(results, strings.Join(current, "\n"))
			current = nil
		}
		currentNum = num
		if m[2] != "" {
			current = append(current, m[2])
		}
	}
	if len(current) > 0 {
		results = append(results, strings.Join(current, "\n"))
	}
	return results
}

// correctionPrompt builds the batch-correction instruction shared by
// the corrector clients.
func correctionPrompt(texts []string, slideContext string) string {
	if slideContext == "" {
		slideContext = "Business presentation slide"
	}

	return fmt.Sprintf(`Fix OCR errors in these text blocks from a business presentation slide.
Only fix obvious spelling/OCR mistakes. DO NOT change meaning, formatting, or line breaks.
Return ONLY the corrected texts in the same numbered format.

Context: %s

Texts to correct:
%s

Return corrected texts (same numbered format):`, slideContext, FormatNumberedList(texts))
}
