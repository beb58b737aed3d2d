package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"contractchunk/document"
	"contractchunk/pkg/chunking"
	"contractchunk/staging"
	"contractchunk/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoTextFound is reported to users when a document yields no chunks.
const NoTextFound = "no text found in document; scanned documents need OCR before they can be chunked"

var errNoFormatHint = fmt.Errorf("%w: no file extension or content type", document.ErrUnsupportedFormat)

// Extractor turns a contract into normalized text.
type Extractor interface {
	Extract(ctx context.Context, doc document.Document) (string, error)
	ExtractFile(ctx context.Context, path string, format document.Format) (string, error)
}

// Record is a chunk with its display ID.
type Record struct {
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Tokens int    `json:"tokens,omitempty"`
}

type Result struct {
	RunID      string          `json:"run_id"`
	Format     document.Format `json:"format"`
	Characters int             `json:"characters"`
	Cached     bool            `json:"cached"`
	Records    []Record        `json:"chunks"`
	Text       string          `json:"-"`
}

// Empty reports whether the document produced no chunks.
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Chunks returns the records as plain chunks.
func (r *Result) Chunks() []chunking.Chunk {
	out := make([]chunking.Chunk, len(r.Records))
	for i, rec := range r.Records {
		out[i] = chunking.Chunk{Index: rec.Index, Text: rec.Text}
	}
	return out
}

type Pipeline struct {
	extractor Extractor
	chunker   chunking.ChunkingClient
	stager    *staging.Stager
	cache     storage.TextRepository
	counter   *chunking.TokenCounter
	logger    *zap.Logger
}

type Option func(*Pipeline)

func WithStager(s *staging.Stager) Option {
	return func(p *Pipeline) { p.stager = s }
}

// WithCache stores extraction results keyed by document content.
func WithCache(c storage.TextRepository) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithTokenCounter adds token estimates to every record.
func WithTokenCounter(tc *chunking.TokenCounter) Option {
	return func(p *Pipeline) { p.counter = tc }
}

func New(extractor Extractor, chunker chunking.ChunkingClient, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.stager == nil {
		p.stager = staging.NewStager("", logger)
	}
	return p
}

// WithChunker returns a copy of p that chunks with c.
func (p *Pipeline) WithChunker(c chunking.ChunkingClient) *Pipeline {
	cp := *p
	cp.chunker = c
	return &cp
}

// FileToChunks extracts and chunks the contract at path.
func (p *Pipeline) FileToChunks(ctx context.Context, path string, format document.Format) (*Result, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", document.ErrUnsupportedFormat, format.String())
	}
	run := p.newRun(zap.String("path", path))

	if p.cache != nil {
		if data, err := os.ReadFile(path); err == nil {
			sum := sha256.Sum256(data)
			key := storage.Key(format.String(), hex.EncodeToString(sum[:]))
			text, cached := p.lookup(run.logger, key)
			if !cached {
				if text, err = p.extractor.Extract(ctx, document.Document{Format: format, Data: data}); err != nil {
					return nil, err
				}
				p.store(run.logger, key, text)
			}
			return p.chunk(run, format, text, cached)
		}
	}

	text, err := p.extractor.ExtractFile(ctx, path, format)
	if err != nil {
		return nil, err
	}
	return p.chunk(run, format, text, false)
}

// UploadToChunks stages an uploaded contract, extracts and chunks it, and
// removes the staged copy before returning.
func (p *Pipeline) UploadToChunks(ctx context.Context, filename, contentType string, r io.Reader) (*Result, error) {
	format, err := ResolveFormat(filename, contentType)
	if errors.Is(err, errNoFormatHint) {
		format, r, err = document.DetectReader(r)
	}
	if err != nil {
		return nil, err
	}
	run := p.newRun(zap.String("filename", filename))

	staged, err := p.stager.Stage(ctx, format, r)
	if err != nil {
		return nil, err
	}
	defer staged.Cleanup()

	key := storage.Key(format.String(), staged.Digest)
	text, cached := p.lookup(run.logger, key)
	if !cached {
		if text, err = p.extractor.ExtractFile(ctx, staged.Path, format); err != nil {
			return nil, err
		}
		p.store(run.logger, key, text)
	}
	return p.chunk(run, format, text, cached)
}

// ResolveFormat picks the format of an upload from its filename extension,
// falling back to the declared content type. Generic binary content types
// carry no hint.
func ResolveFormat(filename, contentType string) (document.Format, error) {
	if ext := filepath.Ext(filename); ext != "" {
		return document.ParseFormat(ext)
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		return "", errNoFormatHint
	}
	return document.FormatFromContentType(contentType)
}

type runInfo struct {
	id     string
	logger *zap.Logger
}

func (p *Pipeline) newRun(fields ...zap.Field) runInfo {
	id := uuid.NewString()
	return runInfo{
		id:     id,
		logger: p.logger.With(append([]zap.Field{zap.String("run_id", id)}, fields...)...),
	}
}

func (p *Pipeline) lookup(logger *zap.Logger, key string) (string, bool) {
	if p.cache == nil {
		return "", false
	}
	text, found, err := p.cache.Get(key)
	if err != nil {
		logger.Warn("failed to read extraction cache", zap.Error(err))
		return "", false
	}
	if found {
		logger.Debug("extraction cache hit", zap.String("key", key))
	}
	return text, found
}

func (p *Pipeline) store(logger *zap.Logger, key, text string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Put(key, text); err != nil {
		logger.Warn("failed to write extraction cache", zap.Error(err))
	}
}

func (p *Pipeline) chunk(run runInfo, format document.Format, text string, cached bool) (*Result, error) {
	chunks, err := p.chunker.Chunk(text)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk text: %w", err)
	}

	records := make([]Record, len(chunks))
	for i, c := range chunks {
		records[i] = Record{
			ID:    "chunk_" + strconv.Itoa(c.Index),
			Index: c.Index,
			Text:  c.Text,
		}
		if p.counter != nil {
			records[i].Tokens = p.counter.Count(c.Text)
		}
	}

	run.logger.Info("chunked document",
		zap.String("format", format.String()),
		zap.Int("characters", utf8.RuneCountInString(text)),
		zap.Int("chunks", len(records)),
		zap.Bool("cached", cached))

	return &Result{
		RunID:      run.id,
		Format:     format,
		Characters: utf8.RuneCountInString(text),
		Cached:     cached,
		Records:    records,
		Text:       text,
	}, nil
}
