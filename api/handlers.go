package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"contractchunk/document"
	"contractchunk/extract"
	"contractchunk/pipeline"
	"contractchunk/pkg/chunking"

	"go.uber.org/zap"
)

// ChunkResponse is returned by /api/chunk.
type ChunkResponse struct {
	RunID      string            `json:"run_id"`
	Filename   string            `json:"filename"`
	Format     document.Format   `json:"format"`
	Characters int               `json:"characters"`
	Cached     bool              `json:"cached"`
	Count      int               `json:"count"`
	Chunks     []pipeline.Record `json:"chunks"`
	Message    string            `json:"message,omitempty"`
}

// SummaryResponse is returned by /api/summarize.
type SummaryResponse struct {
	RunID    string `json:"run_id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Summary  string `json:"summary"`
	Message  string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ChunkHandler extracts and chunks an uploaded contract.
func (s *Server) ChunkHandler(w http.ResponseWriter, r *http.Request) {
	filename, res, ok := s.process(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ChunkResponse{
		RunID:      res.RunID,
		Filename:   filename,
		Format:     res.Format,
		Characters: res.Characters,
		Cached:     res.Cached,
		Count:      len(res.Records),
		Chunks:     res.Records,
		Message:    noTextMessage(res),
	})
}

// SummarizeHandler chunks an uploaded contract and summarizes the leading
// chunks.
func (s *Server) SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	filename, res, ok := s.process(w, r)
	if !ok {
		return
	}

	text, err := s.summarizer.Summarize(r.Context(), res.Chunks())
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to summarize: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		RunID:    res.RunID,
		Filename: filename,
		Chunks:   len(res.Records),
		Summary:  text,
		Message:  noTextMessage(res),
	})
}

// process runs the upload through the pipeline. It writes the error response
// itself and reports false when the request failed.
func (s *Server) process(w http.ResponseWriter, r *http.Request) (string, *pipeline.Result, bool) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return "", nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid multipart form: %w", chunking.ErrInvalidArgument, err))
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing file field"})
		return "", nil, false
	}
	defer file.Close()

	p, err := s.pipelineFor(r)
	if err != nil {
		s.writeError(w, err)
		return "", nil, false
	}

	res, err := p.UploadToChunks(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.writeError(w, err)
		return "", nil, false
	}
	return header.Filename, res, true
}

// pipelineFor applies the optional size and overlap form fields.
func (s *Server) pipelineFor(r *http.Request) (*pipeline.Pipeline, error) {
	settings := s.opts.Settings
	changed := false
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"size", &settings.Size},
		{"overlap", &settings.Overlap},
	} {
		v := strings.TrimSpace(r.FormValue(f.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", chunking.ErrInvalidArgument, f.name)
		}
		*f.dst = n
		changed = true
	}
	if !changed {
		return s.pipeline, nil
	}

	c, err := chunking.New(s.opts.Strategy, settings, s.logger)
	if err != nil {
		return nil, err
	}
	return s.pipeline.WithChunker(c), nil
}

func noTextMessage(res *pipeline.Result) string {
	if res.Empty() {
		return pipeline.NoTextFound
	}
	return ""
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	} else {
		s.logger.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrExtractionFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, chunking.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
