package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"
)

const docxBodyPart = "word/document.xml"

const bodyParagraphs = "//*[local-name()='body']/*[local-name()='p']"

var errMissingBody = errors.New("missing " + docxBodyPart)

// DOCXExtractor implements TextExtractor for Office Open XML documents.
type DOCXExtractor struct {
	logger *zap.Logger
}

func NewDOCXExtractor(logger *zap.Logger) *DOCXExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DOCXExtractor{
		logger: logger,
	}
}

// ExtractText reads the body paragraphs of word/document.xml in order and
// joins those holding visible text with a single newline.
func (d *DOCXExtractor) ExtractText(ctx context.Context, ra io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	body, err := zr.Open(docxBodyPart)
	if err != nil {
		return "", errMissingBody
	}
	defer body.Close()

	root, err := xmlquery.Parse(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", docxBodyPart, err)
	}

	nodes, err := xmlquery.QueryAll(root, bodyParagraphs)
	if err != nil {
		return "", fmt.Errorf("failed to query paragraphs: %w", err)
	}

	paragraphs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text := paragraphText(n)
		if strings.TrimSpace(text) == "" {
			continue
		}
		paragraphs = append(paragraphs, text)
	}

	d.logger.Debug("read DOCX",
		zap.Int("paragraphs", len(nodes)),
		zap.Int("paragraphs_with_text", len(paragraphs)))

	return strings.Join(paragraphs, "\n"), nil
}

// runContainers are the paragraph children whose runs belong to the
// paragraph text. Drawings, textboxes and properties are not descended.
var runContainers = map[string]bool{
	"r":          true,
	"hyperlink":  true,
	"ins":        true,
	"smartTag":   true,
	"fldSimple":  true,
	"sdt":        true,
	"sdtContent": true,
}

// paragraphText concatenates the text runs of a w:p element. Tabs and
// breaks inside runs become their whitespace characters.
func paragraphText(p *xmlquery.Node) string {
	var b strings.Builder
	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			switch {
			case c.Data == "t":
				b.WriteString(c.InnerText())
			case c.Data == "tab":
				b.WriteByte('\t')
			case c.Data == "br", c.Data == "cr":
				b.WriteByte('\n')
			case runContainers[c.Data]:
				walk(c)
			}
		}
	}
	walk(p)
	return b.String()
}
