package chat

import (
	"context"
	"fmt"

	"github.com/futig/study-helper/internal/cli"
	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/pkg/logger"
	"github.com/futig/study-helper/internal/pkg/response"
	chatuc "github.com/futig/study-helper/internal/usecase/chat"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const Usage = "Missing arguments. Usage: chat-response <context_file> <user_message>"

type answerPayload struct {
	Model string `json:"model"`
}

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Respond handles "<context_file> <user_message>"
func (h *Handler) Respond(ctx context.Context, args []string) response.Outcome {
	ctx = logger.WithAction(ctx, "Respond")

	if len(args) != 2 {
		return cli.UsageOutcome(fmt.Errorf("%w: expected 2 arguments, got %d", entity.ErrUsage, len(args)), Usage)
	}

	file, err := chatuc.LoadContextFile(args[0])
	if err != nil {
		return response.Outcome{Err: entity.WithUserMessage(err, "Failed to read context file")}
	}

	d := chatuc.ToDescriptor(file)
	ctxzap.Info(ctx, "answering chat message",
		zap.Int64("note_id", d.NoteID),
		zap.String("file_type", string(d.FileType)),
		zap.Int("history_turns", len(d.History)),
	)

	answer, err := h.usecase.Respond(ctx, d, args[1])
	if entity.KindOf(err) == entity.KindUsage {
		return cli.UsageOutcome(err, "User message is empty")
	}
	if err != nil {
		return response.Outcome{
			Err:             err,
			FallbackMessage: response.MessageChatGeneric,
		}
	}

	return response.Outcome{
		Message: answer.Message,
		Payload: answerPayload{Model: answer.Model},
	}
}

// RegisterRoutes makes Respond the handler for every invocation
func RegisterRoutes(r *cli.Router, h *Handler) {
	r.Default(h.Respond)
}
