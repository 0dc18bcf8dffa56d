// Package pdf provides the get_pdf_text tool.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/hupe1980/agentkit/artifact"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// DefaultMaxChars caps the returned text.
const DefaultMaxChars = 8000

// ErrNotPDF is returned for content that does not sniff as application/pdf.
var ErrNotPDF = errors.New("not a pdf document")

// Extractor reads PDF documents from an artifact store.
type Extractor struct {
	store artifact.Store
}

// NewExtractor creates an Extractor. A nil store reads the local filesystem.
func NewExtractor(store artifact.Store) *Extractor {
	if store == nil {
		store = artifact.NewFSStore("")
	}
	return &Extractor{store: store}
}

// Extract returns the plain text of every page, separated by newlines, cut
// to maxChars runes. maxChars <= 0 disables the cap.
func (e *Extractor) Extract(ctx context.Context, path string, maxChars int) (string, error) {
	data, err := e.store.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	if mt := mimetype.Detect(data); !mt.Is("application/pdf") {
		return "", fmt.Errorf("%s is %s: %w", path, mt.String(), ErrNotPDF)
	}

	text, err := plainText(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}

	return truncate(text, maxChars), nil
}

func plainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		s, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s)
	}

	return sb.String(), nil
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

// Args are the get_pdf_text arguments.
type Args struct {
	Path     string `json:"path" description:"path of the PDF file" validate:"required"`
	MaxChars int    `json:"max_chars,omitempty" description:"maximum number of characters to return (default 8000)" validate:"omitempty,min=1"`
}

// Tool returns get_pdf_text. Missing or non-PDF files are reported to the
// model as retry prompts.
func (e *Extractor) Tool() tool.Tool {
	return tool.NewTypedTool("get_pdf_text", "Extract the text content of a PDF file.",
		func(tc *core.ToolContext, in Args) (string, error) {
			maxChars := in.MaxChars
			if maxChars == 0 {
				maxChars = DefaultMaxChars
			}

			text, err := e.Extract(tc.Context(), in.Path, maxChars)
			switch {
			case errors.Is(err, artifact.ErrNotFound), errors.Is(err, artifact.ErrInvalidPath), errors.Is(err, ErrNotPDF):
				return "", tool.Retry("cannot read %q: %v", in.Path, err)
			case err != nil:
				return "", err
			}

			return Format(text), nil
		})
}

// Format wraps extracted text the way the tool reports it.
func Format(text string) string {
	return "PDF Content is:\n " + text + "\n\n End of PDF content"
}
