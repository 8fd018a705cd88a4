package generator

import (
	"context"
	"fmt"

	"github.com/futig/study-helper/internal/cli"
	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/pkg/logger"
	"github.com/futig/study-helper/internal/pkg/response"
	"github.com/futig/study-helper/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const Usage = "Usage: study-generator <summary|quiz> <note_id> <user_id> | export <note_id> <user_id> <md|pdf|docx>"

type Handler struct {
	usecase GenerationUsecase
}

func NewHandler(usecase GenerationUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Summary handles "summary <note_id> <user_id>"
func (h *Handler) Summary(ctx context.Context, args []string) response.Outcome {
	ctx = logger.WithAction(ctx, "Summary")

	noteID, userID, err := parseIDs(args, 2)
	if err != nil {
		return cli.UsageOutcome(err, Usage)
	}

	ctx = logger.AddFields(ctx, zap.Int64("note_id", noteID), zap.Int64("user_id", userID))
	ctxzap.Info(ctx, "generating summary")

	summary, err := h.usecase.Summary(ctx, noteID, userID)
	if err != nil {
		return response.Outcome{Err: err}
	}

	return response.Outcome{
		Message: "Summary generated successfully",
		Payload: toSummaryPayload(summary),
	}
}

// Quiz handles "quiz <note_id> <user_id>"
func (h *Handler) Quiz(ctx context.Context, args []string) response.Outcome {
	ctx = logger.WithAction(ctx, "Quiz")

	noteID, userID, err := parseIDs(args, 2)
	if err != nil {
		return cli.UsageOutcome(err, Usage)
	}

	ctx = logger.AddFields(ctx, zap.Int64("note_id", noteID), zap.Int64("user_id", userID))
	ctxzap.Info(ctx, "generating quiz")

	quiz, err := h.usecase.Quiz(ctx, noteID, userID)
	if err != nil {
		return response.Outcome{Err: err}
	}

	return response.Outcome{
		Message: "Quiz generated successfully",
		Payload: toQuizPayload(quiz),
	}
}

// Export handles "export <note_id> <user_id> <format>"
func (h *Handler) Export(ctx context.Context, args []string) response.Outcome {
	ctx = logger.WithAction(ctx, "Export")

	noteID, userID, err := parseIDs(args, 3)
	if err != nil {
		return cli.UsageOutcome(err, Usage)
	}

	format := entity.ParseResultFormat(args[2])
	if !format.IsValid() {
		return cli.UsageOutcome(fmt.Errorf("%w: unsupported format %q", entity.ErrUsage, args[2]), Usage)
	}

	ctx = logger.AddFields(ctx, zap.Int64("note_id", noteID), zap.Int64("user_id", userID))

	file, err := h.usecase.Export(ctx, noteID, userID, format)
	if err != nil {
		return response.Outcome{Err: err}
	}

	return response.Outcome{
		Message: "Summary exported successfully",
		Payload: toExportPayload(noteID, format, file),
	}
}

func parseIDs(args []string, n int) (noteID, userID int64, err error) {
	if err := validator.RequireArgs(args, n, Usage); err != nil {
		return 0, 0, err
	}
	if noteID, err = validator.ParseID("note_id", args[0]); err != nil {
		return 0, 0, err
	}
	if userID, err = validator.ParseID("user_id", args[1]); err != nil {
		return 0, 0, err
	}
	return noteID, userID, nil
}
