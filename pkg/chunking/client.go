package chunking

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrInvalidArgument is returned for out of range chunk settings or text
// that is not valid UTF-8.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	StrategySentence  = "sentence"
	StrategyRecursive = "recursive"
)

// Chunk is one bounded unit of text, ordered by Index within a single run.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Settings bounds chunk sizes. Both values are counted in characters.
type Settings struct {
	Size    int
	Overlap int
}

type ChunkingClient interface {
	Chunk(text string) ([]Chunk, error)
}

// Validate reports whether the settings can drive a chunking run.
func (s Settings) Validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("%w: size must be greater than zero, got %d", ErrInvalidArgument, s.Size)
	}
	if s.Overlap < 0 {
		return fmt.Errorf("%w: overlap cannot be negative, got %d", ErrInvalidArgument, s.Overlap)
	}
	if s.Overlap >= s.Size {
		return fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidArgument, s.Overlap, s.Size)
	}
	return nil
}

// New returns the chunker for a strategy name. An empty name selects
// sentence chunking.
func New(strategy string, settings Settings, logger *zap.Logger) (ChunkingClient, error) {
	switch strategy {
	case "", StrategySentence:
		return NewSentenceChunker(settings, logger)
	case StrategyRecursive:
		return NewRecursiveCharacterChunker(settings, logger)
	default:
		return nil, fmt.Errorf("%w: unknown chunking strategy %q", ErrInvalidArgument, strategy)
	}
}

func validateText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidArgument)
	}
	return nil
}
