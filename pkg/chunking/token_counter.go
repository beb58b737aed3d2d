package chunking

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// TokenCounter estimates how many model tokens a chunk will cost a
// downstream summarizer.
type TokenCounter struct {
	encoding string
	tke      *tiktoken.Tiktoken
}

// NewTokenCounter loads a BPE encoding by name. The first load of an
// encoding downloads its ranks unless TIKTOKEN_CACHE_DIR holds a copy.
func NewTokenCounter(encoding string) (*TokenCounter, error) {
	if encoding == "" {
		encoding = defaultEncoding
	}
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding %s: %w", encoding, err)
	}
	return &TokenCounter{encoding: encoding, tke: tke}, nil
}

func (tc *TokenCounter) Count(text string) int {
	return len(tc.tke.Encode(text, nil, nil))
}

func (tc *TokenCounter) Encoding() string {
	return tc.encoding
}
