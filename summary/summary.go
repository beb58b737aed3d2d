package summary

import (
	"context"
	"strings"
	"unicode/utf8"

	"contractchunk/pkg/chunking"
)

const (
	DefaultChunks   = 3
	DefaultMaxChars = 3000
	PreviewWidth    = 800

	ellipsis = "..."
)

type Summarizer interface {
	Summarize(ctx context.Context, chunks []chunking.Chunk) (string, error)
}

// Extractive summarizes a document by joining its leading chunks.
type Extractive struct {
	Chunks   int
	MaxChars int
}

func NewExtractive(chunks, maxChars int) *Extractive {
	if chunks <= 0 {
		chunks = DefaultChunks
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractive{
		Chunks:   chunks,
		MaxChars: maxChars,
	}
}

// Summarize joins the first Chunks chunks with a blank line and truncates
// the result to MaxChars characters, appending an ellipsis when cut.
func (e *Extractive) Summarize(ctx context.Context, chunks []chunking.Chunk) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	n := min(e.Chunks, len(chunks))
	parts := make([]string, 0, n)
	for _, c := range chunks[:n] {
		parts = append(parts, c.Text)
	}
	text := strings.Join(parts, "\n\n")

	if utf8.RuneCountInString(text) <= e.MaxChars {
		return text, nil
	}
	return string([]rune(text)[:e.MaxChars]) + ellipsis, nil
}

// Shorten collapses whitespace and drops trailing words until the text fits
// in width characters, ellipsis included.
func Shorten(text string, width int) string {
	words := strings.Fields(text)
	joined := strings.Join(words, " ")
	if utf8.RuneCountInString(joined) <= width {
		return joined
	}

	budget := width - len(ellipsis)
	var b strings.Builder
	n := 0
	for _, w := range words {
		add := utf8.RuneCountInString(w)
		if n > 0 {
			add++
		}
		if n+add > budget {
			break
		}
		if n > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		n += add
	}
	if n == 0 {
		return ellipsis
	}
	return b.String() + ellipsis
}
