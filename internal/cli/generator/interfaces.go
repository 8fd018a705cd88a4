package generator

import (
	"context"

	"github.com/futig/study-helper/internal/entity"
)

type GenerationUsecase interface {
	Summary(ctx context.Context, noteID, userID int64) (*entity.Summary, error)
	Quiz(ctx context.Context, noteID, userID int64) (*entity.StoredQuiz, error)
	Export(ctx context.Context, noteID, userID int64, format entity.ResultFormat) (*entity.ExportedFile, error)
}
