package chat

import (
	"context"

	"github.com/futig/study-helper/internal/entity"
)

type ChatUsecase interface {
	Respond(ctx context.Context, d entity.ContentDescriptor, userMessage string) (*entity.ChatAnswer, error)
}
