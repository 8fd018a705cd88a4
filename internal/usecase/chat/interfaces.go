package chat

import (
	"context"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/usecase/content"
)

type Completer interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
	Model() string
}

type ContentResolver interface {
	Resolve(ctx context.Context, d entity.ContentDescriptor, cached *entity.ExtractionRecord, mode content.Mode) entity.ResolvedContent
}

type ExtractionReader interface {
	GetExtraction(ctx context.Context, noteID int64) (*entity.ExtractionRecord, error)
}

type TokenCounter interface {
	Count(text string) int
	Truncate(text string, limit int) (string, bool)
}
