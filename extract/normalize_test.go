package extract

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"OnlyWhitespace", " \t\r\n ", ""},
		{"CarriageReturns", "a\rb", "a\nb"},
		{"CRLFBecomesParagraphBreak", "a\r\nb", "a\n\nb"},
		{"BlankLinesCollapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"SingleNewlineKept", "a\nb", "a\nb"},
		{"SpacesCollapse", "a    b", "a b"},
		{"TabsCollapse", "a\t\t b", "a b"},
		{"SingleTabKept", "a\tb", "a\tb"},
		{"NoBreakSpaces", "a\u00a0\u00a0b", "a b"},
		{"MixedUnicodeSpaces", "a\u2003 \u3000b", "a b"},
		{"Trim", "  Agreement.  \n", "Agreement."},
		// Only bare newline runs collapse; a line holding a space is not blank.
		{"WhitespaceOnlyLinesKept", "a \n \n \n b", "a \n \n \n b"},
		{"ParagraphsWithIndent", "1. SERVICES\n\n\n   Provider agrees.", "1. SERVICES\n\n Provider agrees."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeInvariants(t *testing.T) {
	inputs := []string{
		"MASTER SERVICES AGREEMENT\r\n\r\n\r\nThis  Agreement\t\tis made.",
		"\n\n\n\t  Provider: Alpha\r\rClient:   Zaid \n \n \n",
		strings.Repeat("clause  \r\n", 50),
		"Date: _//_    \f\f Signatures:",
	}
	blankLines := regexp.MustCompile(`\n{3,}`)
	inlineRuns := regexp.MustCompile(`[ \t]{2,}`)

	for _, in := range inputs {
		out := Normalize(in)
		assert.NotContains(t, out, "\r")
		assert.False(t, blankLines.MatchString(out), "%q", out)
		assert.False(t, inlineRuns.MatchString(out), "%q", out)
		assert.Equal(t, strings.TrimSpace(out), out)
		assert.Equal(t, out, Normalize(out), "normalization is idempotent")
	}
}
