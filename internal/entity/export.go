package entity

import "strings"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

// ParseResultFormat accepts the format names and their file extensions.
func ParseResultFormat(raw string) ResultFormat {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")) {
	case "md", "markdown":
		return FormatMarkdown
	case "docx":
		return FormatDOCX
	case "pdf":
		return FormatPDF
	default:
		return ResultFormat(raw)
	}
}

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// ExportedFile describes a rendered summary written to disk.
type ExportedFile struct {
	Path        string
	ContentType string
	Size        int64
}
