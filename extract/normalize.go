package extract

import (
	"regexp"
	"strings"
)

var (
	newlineRun    = regexp.MustCompile(`\n{2,}`)
	horizontalRun = regexp.MustCompile(`[ \t]{2,}`)
	// Any whitespace other than CR and LF, including the Unicode separators.
	inlineSpaceRun = regexp.MustCompile(`[\t\v\f \x{1c}-\x{1f}\x{85}\p{Z}]{2,}`)
)

// Normalize cleans up line endings and whitespace in extracted text.
// The result holds no carriage returns, no more than one blank line in a
// row and no runs of inline whitespace. Lines holding only spaces are not
// blank lines and are left in place.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r", "\n")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	text = horizontalRun.ReplaceAllString(text, " ")
	text = inlineSpaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
