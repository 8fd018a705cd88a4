package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/futig/study-helper/internal/entity"
	"github.com/futig/study-helper/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// HandlerFunc runs one command with the arguments that follow its mode.
type HandlerFunc func(ctx context.Context, args []string) response.Outcome

type Middleware func(next HandlerFunc) HandlerFunc

// Router dispatches the first argument to a mode handler. A router with a
// default handler and no modes passes every argument through.
type Router struct {
	usage       string
	routes      map[string]HandlerFunc
	fallback    HandlerFunc
	middlewares []Middleware
}

func NewRouter(usage string) *Router {
	return &Router{
		usage:  usage,
		routes: make(map[string]HandlerFunc),
	}
}

func (r *Router) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// Handle registers h for mode. Modes match case-insensitively.
func (r *Router) Handle(mode string, h HandlerFunc) {
	r.routes[strings.ToLower(mode)] = h
}

// Default registers the handler used when no mode matches.
func (r *Router) Default(h HandlerFunc) {
	r.fallback = h
}

// Serve runs the handler selected by args through the middleware chain.
func (r *Router) Serve(ctx context.Context, args []string) response.Outcome {
	h := r.route(args)
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	return h(ctx, args)
}

func (r *Router) route(args []string) HandlerFunc {
	if len(args) > 0 {
		if h, ok := r.routes[strings.ToLower(args[0])]; ok {
			return func(ctx context.Context, args []string) response.Outcome {
				ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("mode", strings.ToLower(args[0]))))
				return h(ctx, args[1:])
			}
		}
	}

	if r.fallback != nil {
		return r.fallback
	}

	return func(_ context.Context, args []string) response.Outcome {
		msg := "Invalid mode or missing arguments"
		if len(args) > 0 {
			msg = fmt.Sprintf("Unknown mode: %s", args[0])
		}
		return UsageOutcome(fmt.Errorf("%w: %s", entity.ErrUsage, msg), r.usage)
	}
}

// UsageOutcome reports err with usage as the caller-facing message.
func UsageOutcome(err error, usage string) response.Outcome {
	return response.Outcome{Err: entity.WithUserMessage(err, usage)}
}

// Execute serves args, writes the envelope to w and returns the process
// exit code. Handled failures exit 0; the caller reads the envelope.
// Usage errors and recovered panics exit 1.
func Execute(ctx context.Context, w io.Writer, r *Router, args []string) int {
	outcome := r.Serve(ctx, args)

	if err := response.Write(w, response.Format(outcome)); err != nil {
		ctxzap.Error(ctx, "failed to write response", zap.Error(err))
		return 1
	}

	return ExitCode(outcome.Err)
}

func ExitCode(err error) int {
	if entity.KindOf(err) == entity.KindUsage || errors.Is(err, entity.ErrPanic) {
		return 1
	}
	return 0
}
