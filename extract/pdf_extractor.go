package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PDFExtractor implements TextExtractor using github.com/ledongthuc/pdf.
type PDFExtractor struct {
	logger *zap.Logger
}

func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{
		logger: logger,
	}
}

// ExtractText reads every page in order and joins the non-empty page
// texts with a single newline.
func (p *PDFExtractor) ExtractText(ctx context.Context, ra io.ReaderAt, size int64) (string, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	numPages := r.NumPage()
	parts := make([]string, 0, numPages)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}
		// Blank pages come back as bare line breaks.
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, strings.Trim(text, "\r\n"))
	}

	p.logger.Debug("read PDF",
		zap.Int("pages", numPages),
		zap.Int("pages_with_text", len(parts)))

	return strings.Join(parts, "\n"), nil
}
