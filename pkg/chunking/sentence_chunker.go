package chunking

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SentenceChunker packs whole sentences into chunks of at most Size
// characters. When a chunk closes, the next one is seeded with the last
// Overlap characters of it. A sentence longer than Size is never split and
// forms an oversized chunk of its own.
type SentenceChunker struct {
	settings Settings
	logger   *zap.Logger
}

func NewSentenceChunker(settings Settings, logger *zap.Logger) (*SentenceChunker, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SentenceChunker{
		settings: settings,
		logger:   logger,
	}, nil
}

// Split chunks text with a one-off sentence chunker.
func Split(text string, size, overlap int) ([]Chunk, error) {
	sc, err := NewSentenceChunker(Settings{Size: size, Overlap: overlap}, nil)
	if err != nil {
		return nil, err
	}
	return sc.Chunk(text)
}

func (sc *SentenceChunker) Chunk(text string) ([]Chunk, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	sentences, err := SplitSentences(text)
	if err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return nil, nil
	}

	size, overlap := sc.settings.Size, sc.settings.Overlap

	var (
		chunks  []Chunk
		current string
		curLen  int
	)
	closeChunk := func() {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.TrimSpace(current),
		})
	}

	for _, sentence := range sentences {
		sentLen := utf8.RuneCountInString(sentence)

		switch {
		case current == "":
			current, curLen = sentence, sentLen
		case curLen+1+sentLen <= size:
			current += " " + sentence
			curLen += 1 + sentLen
		default:
			closeChunk()
			if overlap > 0 {
				seed := tail(current, curLen, overlap)
				current = seed + " " + sentence
				curLen = utf8.RuneCountInString(seed) + 1 + sentLen
			} else {
				current, curLen = sentence, sentLen
			}
		}
	}
	if current != "" {
		closeChunk()
	}

	sc.logger.Debug("chunked text",
		zap.Int("sentences", len(sentences)),
		zap.Int("chunks", len(chunks)),
		zap.Int("size", size),
		zap.Int("overlap", overlap))

	return chunks, nil
}

// tail returns the last n characters of s, or all of s when it is shorter.
func tail(s string, length, n int) string {
	if length <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-n:])
}
