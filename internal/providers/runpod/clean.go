package runpod

import (
	"regexp"
	"strings"
)

var (
	leadingLabels = []string{"output:", "response:"}
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// CleanText trims generated text, strips leading "OUTPUT:"/"Response:"
// labels in any case, trims every line and collapses runs of blank lines.
// Applying it twice yields the same string as applying it once.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	for stripped := true; stripped; {
		stripped = false
		for _, label := range leadingLabels {
			if len(text) >= len(label) && strings.EqualFold(text[:len(label)], label) {
				text = strings.TrimSpace(text[len(label):])
				stripped = true
			}
		}
	}
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
