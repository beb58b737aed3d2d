package staging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"contractchunk/document"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stager writes in-memory uploads to scoped temporary files so they can be
// read by path-based extractors.
type Stager struct {
	dir    string
	logger *zap.Logger
}

// Staged is one temporary copy of an upload. Callers must call Cleanup on
// every exit path.
type Staged struct {
	Path   string
	Format document.Format
	Size   int64
	// Digest is the hex SHA-256 of the staged bytes.
	Digest string

	once   sync.Once
	err    error
	logger *zap.Logger
}

// NewStager stages files under dir, or under os.TempDir when dir is empty.
func NewStager(dir string, logger *zap.Logger) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stager{
		dir:    dir,
		logger: logger,
	}
}

func (s *Stager) Dir() string {
	return s.dir
}

// Stage copies r to a new file with a random name carrying the format's
// extension.
func (s *Stager) Stage(ctx context.Context, format document.Format, r io.Reader) (*Staged, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", document.ErrUnsupportedFormat, format.String())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := filepath.Join(s.dir, "upload-"+uuid.NewString()+format.Extension())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	hash := sha256.New()
	size, copyErr := io.Copy(io.MultiWriter(f, hash), r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr, ctx.Err()); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	s.logger.Debug("staged upload",
		zap.String("path", path),
		zap.Int64("size", size))

	return &Staged{
		Path:   path,
		Format: format,
		Size:   size,
		Digest: hex.EncodeToString(hash.Sum(nil)),
		logger: s.logger,
	}, nil
}

// Cleanup removes the staged file. It is safe to call more than once.
func (st *Staged) Cleanup() error {
	st.once.Do(func() {
		err := os.Remove(st.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			st.err = fmt.Errorf("failed to remove staged file: %w", err)
			st.logger.Warn("failed to remove staged file",
				zap.String("path", st.Path),
				zap.Error(err))
		}
	})
	return st.err
}
