package extraction

import (
	"context"

	"github.com/futig/study-helper/internal/integration/pdf"
)

type TextSource interface {
	ExtractText(ctx context.Context, path string, limits pdf.Limits) (pdf.Extraction, error)
}

// PathResolver maps a note's storage reference to a file on disk. It
// rejects references outside the storage root.
type PathResolver interface {
	ResolvePath(ref string) (string, error)
}
