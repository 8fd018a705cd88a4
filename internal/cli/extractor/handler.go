package extractor

import (
	"context"
	"fmt"

	"github.com/futig/study-helper/internal/cli"
	"github.com/futig/study-helper/internal/pkg/logger"
	"github.com/futig/study-helper/internal/pkg/response"
	"github.com/futig/study-helper/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const Usage = "Usage: content-extractor <extract|batch|get> [note_id]"

type Handler struct {
	usecase ExtractionUsecase
}

func NewHandler(usecase ExtractionUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Extract handles "extract <note_id>"
func (h *Handler) Extract(ctx context.Context, args []string) response.Outcome {
	ctx = logger.WithAction(ctx, "Extract")

	noteID, err := noteIDArg(args)
	if err != nil {
		return cli.UsageOutcome(err, Usage)
	}

	ctxzap.Info(ctx, "extracting content", zap.Int64("note_id", noteID))

	res, err := h.usecase.Extract(ctx, noteID)
	if err != nil {
		return response.Outcome{Err: err}
	}

	return response.Outcome{
		Message: "Content extracted and stored successfully",
		Payload: toExtractPayload(res),
	}
}

// Batch handles "batch"
func (h *Handler) Batch(ctx context.Context, _ []string) response.Outcome {
	ctx = logger.WithAction(ctx, "Batch")

	items, err := h.usecase.Batch(ctx)
	if err != nil {
		return response.Outcome{Err: err}
	}

	return response.Outcome{
		Message: fmt.Sprintf("Batch extraction completed for %d notes", len(items)),
		Payload: toBatchPayload(items),
	}
}

// Get handles "get <note_id>"
func (h *Handler) Get(ctx context.Context, args []string) response.Outcome {
	ctx = logger.WithAction(ctx, "Get")

	noteID, err := noteIDArg(args)
	if err != nil {
		return cli.UsageOutcome(err, Usage)
	}

	rec, err := h.usecase.Get(ctx, noteID)
	if err != nil {
		return response.Outcome{Err: err}
	}

	return response.Outcome{Payload: toGetPayload(rec)}
}

func noteIDArg(args []string) (int64, error) {
	if err := validator.RequireArgs(args, 1, "note_id"); err != nil {
		return 0, err
	}
	return validator.ParseID("note_id", args[0])
}
