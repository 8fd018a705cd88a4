package extractor

import (
	"context"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/usecase/extraction"
)

type ExtractionUsecase interface {
	Extract(ctx context.Context, noteID int64) (*extraction.Result, error)
	Batch(ctx context.Context) ([]extraction.BatchItem, error)
	Get(ctx context.Context, noteID int64) (*entity.ExtractionRecord, error)
}
