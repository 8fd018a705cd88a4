package content

import (
	"context"

	"github.com/futig/study-helper/internal/integration/pdf"
)

type TextSource interface {
	ExtractText(ctx context.Context, path string, limits pdf.Limits) (pdf.Extraction, error)
}
