package chunking

import (
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

// sentenceTokenizer loads the English Punkt model on first use. The
// tokenizer is read-only afterwards and shared by all goroutines.
func sentenceTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
		if tokenizerErr != nil {
			tokenizerErr = fmt.Errorf("failed to load sentence tokenizer: %w", tokenizerErr)
		}
	})
	return tokenizer, tokenizerErr
}

// SplitSentences returns the trimmed, non-empty sentences of text in order.
func SplitSentences(text string) ([]string, error) {
	tok, err := sentenceTokenizer()
	if err != nil {
		return nil, err
	}

	sentenceObjs := tok.Tokenize(text)
	out := make([]string, 0, len(sentenceObjs))
	for _, s := range sentenceObjs {
		sentence := strings.TrimSpace(s.Text)
		if sentence == "" {
			continue
		}
		out = append(out, sentence)
	}
	return out, nil
}
