package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"contractchunk/document"

	"go.uber.org/zap"
)

// ErrExtractionFailure is returned when document bytes cannot be read as
// the format they claim to be.
var ErrExtractionFailure = errors.New("extraction failure")

// TextExtractor reads the raw, unnormalized text of one document format.
type TextExtractor interface {
	ExtractText(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// Client dispatches documents to the extractor for their format and
// normalizes the result.
type Client struct {
	extractors map[document.Format]TextExtractor
	logger     *zap.Logger
}

// NewClient creates a client with the PDF and DOCX extractors wired in.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewClientWith(logger, map[document.Format]TextExtractor{
		document.FormatPDF:  NewPDFExtractor(logger),
		document.FormatDOCX: NewDOCXExtractor(logger),
	})
}

// NewClientWith creates a client with custom extractor implementations.
func NewClientWith(logger *zap.Logger, extractors map[document.Format]TextExtractor) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		extractors: extractors,
		logger:     logger,
	}
}

// Extract returns the normalized text of an in-memory document.
func (c *Client) Extract(ctx context.Context, doc document.Document) (string, error) {
	return c.extract(ctx, doc.Format, bytes.NewReader(doc.Data), int64(len(doc.Data)))
}

// ExtractFile returns the normalized text of the document stored at path.
func (c *Client) ExtractFile(ctx context.Context, path string, format document.Format) (string, error) {
	if _, err := c.extractorFor(format); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open %s: %w", ErrExtractionFailure, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: failed to stat %s: %w", ErrExtractionFailure, path, err)
	}

	return c.extract(ctx, format, f, info.Size())
}

func (c *Client) extractorFor(format document.Format) (TextExtractor, error) {
	ext, ok := c.extractors[format]
	if !ok || ext == nil {
		return nil, fmt.Errorf("%w: %q", document.ErrUnsupportedFormat, format.String())
	}
	return ext, nil
}

func (c *Client) extract(ctx context.Context, format document.Format, r io.ReaderAt, size int64) (string, error) {
	ext, err := c.extractorFor(format)
	if err != nil {
		return "", err
	}
	if size == 0 {
		c.logger.Debug("empty document", zap.String("format", format.String()))
		return "", nil
	}

	raw, err := c.run(ctx, ext, r, size)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.logger.Error("failed to extract text",
			zap.String("format", format.String()),
			zap.Int64("size", size),
			zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrExtractionFailure, format, err)
	}

	text := Normalize(raw)
	c.logger.Debug("extracted text",
		zap.String("format", format.String()),
		zap.Int64("size", size),
		zap.Int("chars", len(text)))
	return text, nil
}

// run shields callers from parser panics on malformed input.
func (c *Client) run(ctx context.Context, ext TextExtractor, r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = fmt.Errorf("parser panic: %v", p)
		}
	}()
	return ext.ExtractText(ctx, r, size)
}
