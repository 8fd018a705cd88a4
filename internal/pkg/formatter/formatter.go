package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/study-helper/internal/entity"
)

// Document is a titled block of text to render.
type Document struct {
	Title string
	// Subtitle is an optional metadata line under the title.
	Subtitle string
	Body     string
}

type Formatter interface {
	Format(doc Document) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	fontPath string
}

// NewFactory returns a factory. fontPath optionally points at a UTF-8 TTF
// font for PDF output; empty falls back to the built-in Latin-1 font.
func NewFactory(fontPath string) *Factory {
	return &Factory{fontPath: fontPath}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.fontPath), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrUsage, format)
	}
}

// paragraphs splits body into non-blank lines, trimmed.
func paragraphs(body string) []string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// bulletText strips a leading list marker, reporting whether there was one.
func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return line, false
}
