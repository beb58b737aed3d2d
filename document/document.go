package document

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFormat is returned when a document is neither PDF nor DOCX.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format identifies how a document's bytes are to be read.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Document is an immutable byte blob tagged with its format.
type Document struct {
	Format Format
	Data   []byte
}

// New validates the format and returns a Document.
func New(format Format, data []byte) (Document, error) {
	if !format.Valid() {
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	return Document{Format: format, Data: data}, nil
}

func (f Format) Valid() bool {
	return f == FormatPDF || f == FormatDOCX
}

func (f Format) String() string {
	return string(f)
}

// Extension returns the file suffix used when a document is staged to disk.
func (f Format) Extension() string {
	if !f.Valid() {
		return ""
	}
	return "." + string(f)
}

// ParseFormat resolves a caller supplied tag. Both bare tags ("pdf") and
// file names or extensions ("contract.DOCX", ".pdf") are accepted.
func ParseFormat(tag string) (Format, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if ext := filepath.Ext(t); ext != "" {
		t = ext
	}
	t = strings.TrimPrefix(t, ".")

	switch t {
	case "pdf":
		return FormatPDF, nil
	case "docx", "doc":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

// FormatFromContentType resolves a declared MIME type such as the
// Content-Type of a multipart upload.
func FormatFromContentType(contentType string) (Format, error) {
	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)

	switch {
	case strings.Contains(ct, "pdf"):
		return FormatPDF, nil
	case strings.Contains(ct, "word"), strings.Contains(ct, "doc"):
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
}

// DetectFormat sniffs the document bytes.
func DetectFormat(data []byte) (Format, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(mimePDF):
		return FormatPDF, nil
	case mt.Is(mimeDOCX):
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, mt.String())
	}
}

// SniffLen is the number of leading bytes DetectReader inspects.
const SniffLen = 3072

// DetectReader sniffs the head of r. The returned reader yields every byte
// of r, including the sniffed ones.
func DetectReader(r io.Reader) (Format, io.Reader, error) {
	br := bufio.NewReaderSize(r, SniffLen)
	head, err := br.Peek(SniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", br, fmt.Errorf("failed to read document head: %w", err)
	}
	format, err := DetectFormat(head)
	return format, br, err
}
