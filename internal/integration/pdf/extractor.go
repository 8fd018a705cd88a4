package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
)

// Limits bound how much of a document is read. Zero values mean no limit.
type Limits struct {
	MaxPages int
	// StopAfterChars stops reading once the collected text is longer than
	// this many characters. The page that crosses the line is kept whole.
	StopAfterChars int
}

// Extraction is the text pulled out of a PDF.
type Extraction struct {
	Text      string
	PagesRead int
	PageCount int
}

var countPages = api.PageCountFile

// Extractor reads plain text out of PDF files on local disk.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the text of path's pages, in order, trimmed. A missing
// file yields an error matching fs.ErrNotExist. A document without a text
// layer is not an error; the returned Text is empty.
func (e *Extractor) ExtractText(ctx context.Context, path string, limits Limits) (result Extraction, err error) {
	// Both parsers can panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			result = Extraction{}
			err = fmt.Errorf("parse %s: %v", path, r)
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Extraction{}, fmt.Errorf("%s is a directory: %w", path, fs.ErrNotExist)
	}

	// pdfcpu validates the structure more strictly than the text reader; a
	// failure here is only reported, since many readable files still fail it.
	if count, cerr := countPages(path); cerr != nil {
		ctxzap.Debug(ctx, "pdfcpu could not count pages", zap.String("path", path), zap.Error(cerr))
	} else {
		result.PageCount = count
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return Extraction{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	if result.PageCount == 0 {
		result.PageCount = total
	}

	last := total
	if limits.MaxPages > 0 && limits.MaxPages < last {
		last = limits.MaxPages
	}

	var sb strings.Builder
	chars := 0
	for i := 1; i <= last; i++ {
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return Extraction{}, fmt.Errorf("read page %d of %s: %w", i, path, err)
		}

		sb.WriteString(text)
		chars += utf8.RuneCountInString(text)
		result.PagesRead = i

		if limits.StopAfterChars > 0 && chars > limits.StopAfterChars {
			break
		}
	}

	result.Text = strings.TrimSpace(sb.String())

	ctxzap.Debug(ctx, "pdf text extracted",
		zap.String("path", path),
		zap.Int("pages_read", result.PagesRead),
		zap.Int("page_count", result.PageCount),
		zap.Int("text_length", len(result.Text)),
	)

	return result, nil
}

// IsNotFound reports whether err came from a missing file.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
