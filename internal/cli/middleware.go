package cli

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Recoverer turns a panic in a handler into a failure outcome.
func Recoverer(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, args []string) (out response.Outcome) {
		defer func() {
			if rec := recover(); rec != nil {
				ctxzap.Error(ctx, "panic while handling command",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				out = response.Outcome{Err: fmt.Errorf("%w: %v", entity.ErrPanic, rec)}
			}
		}()
		return next(ctx, args)
	}
}

// Logger logs the start and the outcome of every command.
func Logger(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, args []string) response.Outcome {
		start := time.Now()
		ctxzap.Info(ctx, "Start handle command", zap.Int("args", len(args)))

		out := next(ctx, args)

		fields := []zap.Field{
			zap.Bool("success", out.Err == nil),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if out.Err != nil {
			fields = append(fields,
				zap.String("kind", string(entity.KindOf(out.Err))),
				zap.Error(out.Err),
			)
			ctxzap.Warn(ctx, "Finish handle command", fields...)
			return out
		}

		ctxzap.Info(ctx, "Finish handle command", fields...)
		return out
	}
}
