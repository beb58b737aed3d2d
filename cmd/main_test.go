package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contractchunk/document"
	"contractchunk/pipeline"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clauses = []string{
	"Provider agrees to provide consulting services to Client.",
	"The initial term is twelve months from the effective date.",
	"Client will pay all invoices within thirty days.",
}

func writeDOCX(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONTRACTCHUNK_LOG_LEVEL", "error")
	t.Setenv("CONTRACTCHUNK_STAGING_DIR", t.TempDir())

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestChunkCommandJSON(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "msa.docx", clauses...)

	out, err := run(t, "chunk", path, "--size", "70", "--overlap", "0", "--json")
	require.NoError(t, err)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, document.FormatDOCX, res.Format)
	require.Len(t, res.Records, len(clauses))
	for i, rec := range res.Records {
		assert.Equal(t, clauses[i], rec.Text)
	}
}

func TestChunkCommandText(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "msa.docx", clauses...)

	out, err := run(t, "chunk", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 chunks from "+path)
	assert.Contains(t, out, "--- chunk_0 (")
	assert.Contains(t, out, clauses[0])
}

func TestChunkCommandExplicitFormat(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "upload.bin", clauses...)

	out, err := run(t, "chunk", path, "--format", "docx", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"chunk_0"`)

	_, err = run(t, "chunk", path, "--format", "txt")
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}

func TestChunkCommandSniffsFormat(t *testing.T) {
	dir := t.TempDir()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 11)
	doc.AddPage()
	doc.Cell(40, 10, "Client will pay all invoices within thirty days.")
	scan := filepath.Join(dir, "scan")
	require.NoError(t, doc.OutputFileAndClose(scan))

	out, err := run(t, "chunk", scan, "--json")
	require.NoError(t, err)
	var res pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, document.FormatPDF, res.Format)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Client will pay all invoices within thirty days.", res.Records[0].Text)

	notes := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(notes, []byte("plain words, nothing else"), 0o600))
	_, err = run(t, "chunk", notes)
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}

func TestChunkCommandReportsNoText(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "blank.docx")

	out, err := run(t, "chunk", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 chunks from "+path)
	assert.Contains(t, out, pipeline.NoTextFound)

	out, err = run(t, "summarize", path)
	require.NoError(t, err)
	assert.Contains(t, out, pipeline.NoTextFound)
}

func TestChunkCommandWithCache(t *testing.T) {
	dir := t.TempDir()
	path := writeDOCX(t, dir, "msa.docx", clauses...)
	cache := filepath.Join(dir, "cache.db")

	for i, wantCached := range []bool{false, true} {
		out, err := run(t, "chunk", path, "--cache", cache, "--json")
		require.NoError(t, err, "run %d", i)

		var res pipeline.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, wantCached, res.Cached, "run %d", i)
	}
}

func TestSummarizeCommand(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "msa.docx", clauses...)

	out, err := run(t, "summarize", path, "--size", "70", "--overlap", "0")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(clauses, "\n\n")+"\n", out)
}

func TestInvalidSettings(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "msa.docx", clauses...)

	_, err := run(t, "chunk", path, "--size", "100", "--overlap", "100")
	assert.ErrorContains(t, err, "chunk.overlap")

	_, err = run(t, "chunk")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error"} {
		logger, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}
	_, err := newLogger("verbose")
	assert.Error(t, err)
}
