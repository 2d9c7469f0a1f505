package translate

import (
	"regexp"
	"strings"
)

var (
	brTagRe      = regexp.MustCompile(`\s*<br\s*/?>\s*`)
	blockTagRe   = regexp.MustCompile(`\s*</?(?:p|div)>\s*`)
	extraBlankRe = regexp.MustCompile(`\n{3,}`)
)

// PrepareForTranslation replaces newlines with <br> so the HTML-aware
// provider keeps paragraph structure intact.
func PrepareForTranslation(text string) string {
	return strings.ReplaceAll(text, "\n", "<br>")
}

// RestoreLineBreaks converts the provider's line-break and paragraph tags back
// into newlines and collapses runs of 3+ newlines to at most 2.
func RestoreLineBreaks(text string) string {
	text = brTagRe.ReplaceAllString(text, "\n")
	text = blockTagRe.ReplaceAllString(text, "\n\n")
	text = extraBlankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
