// Package stageexec wraps a single pipeline stage with the lifecycle logging
// every stage shares.
package stageexec

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"yt2wp/internal/logging"
	"yt2wp/internal/services"
)

// Func is the body of a stage. The logger it receives is already tagged with
// the run ID and stage name.
type Func func(ctx context.Context, logger *slog.Logger) error

// Options controls stage execution.
type Options struct {
	Logger    *slog.Logger
	StageName string
	// Attrs are added to the start line, e.g. the directory being verified.
	Attrs []logging.Attr
	Run   Func
}

// Run executes a stage, logging stage_start, then stage_complete or
// stage_failure. The stage error is returned unchanged.
func Run(ctx context.Context, opts Options) error {
	if opts.Run == nil {
		return errors.New("stage function unavailable: " + opts.StageName)
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	start := append([]logging.Attr{logging.String(logging.FieldEventType, "stage_start")}, opts.Attrs...)
	stageLogger.LogAttrs(stageCtx, slog.LevelInfo, "stage started", start...)

	began := time.Now()
	if err := opts.Run(stageCtx, stageLogger); err != nil {
		stageLogger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_message", strings.TrimSpace(err.Error())),
			logging.Duration("elapsed", time.Since(began).Round(time.Millisecond)),
		)
		return err
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(began).Round(time.Millisecond)),
	)
	return nil
}
