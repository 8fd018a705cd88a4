package generation

import (
	"context"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/pkg/formatter"
	"github.com/futig/study-helper/internal/usecase/content"
)

type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
	Model() string
}

type Completer interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
	Model() string
}

type QuizValidator interface {
	Validate(raw string) (entity.Quiz, error)
}

type ContentResolver interface {
	Resolve(ctx context.Context, d entity.ContentDescriptor, cached *entity.ExtractionRecord, mode content.Mode) entity.ResolvedContent
}

type TokenCounter interface {
	Count(text string) int
	Truncate(text string, limit int) (string, bool)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
