package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/study-helper/internal/cli"
	"github.com/futig/study-helper/internal/pkg/response"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// App is one built binary: its command router and the resources to release
// once the command has finished.
type App struct {
	binary  string
	router  *cli.Router
	timeout time.Duration
	logger  *zap.Logger
	closers []func() error
}

// Run executes one command, writes its envelope to stdout and returns the
// exit code.
func (a *App) Run(args []string) int {
	return a.run(os.Stdout, args)
}

func (a *App) run(w io.Writer, args []string) int {
	defer a.shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	runLogger := a.logger.With(
		zap.String("binary", a.binary),
		zap.String("run_id", uuid.NewString()),
	)
	ctx = ctxzap.ToContext(ctx, runLogger)

	return cli.Execute(ctx, w, a.router, args)
}

// shutdown releases resources in reverse order of acquisition
func (a *App) shutdown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Error releasing resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// ReportStartupFailure writes the failure envelope for a binary that could
// not be built. No logger exists yet, so the cause also goes to stderr.
func ReportStartupFailure(w io.Writer, err error) {
	fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
	_ = response.Write(w, response.Format(response.Outcome{Err: err}))
}
