package chunking

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
)

// RecursiveCharacterChunker splits on paragraph, line, sentence and word
// separators in turn, ignoring sentence boundaries when a piece still
// does not fit.
type RecursiveCharacterChunker struct {
	splitter textsplitter.RecursiveCharacter
	logger   *zap.Logger
}

func NewRecursiveCharacterChunker(settings Settings, logger *zap.Logger) (*RecursiveCharacterChunker, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(settings.Size),
		textsplitter.WithChunkOverlap(settings.Overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
	)
	return &RecursiveCharacterChunker{
		splitter: splitter,
		logger:   logger,
	}, nil
}

func (c *RecursiveCharacterChunker) Chunk(text string) ([]Chunk, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	segments, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	var chunks []Chunk
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: trimmed})
	}

	c.logger.Debug("chunked text",
		zap.String("strategy", StrategyRecursive),
		zap.Int("chunks", len(chunks)))

	return chunks, nil
}
