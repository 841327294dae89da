package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"yt2wp/internal/config"
	"yt2wp/internal/credentials"
	"yt2wp/internal/logging"
	"yt2wp/internal/notifications"
	"yt2wp/internal/services"
	"yt2wp/internal/stageexec"
	"yt2wp/internal/textutil"
)

// Downloader fetches the media for a source URL into dataRoot/SanitizeLabel(label).
type Downloader interface {
	Download(ctx context.Context, url, label string) error
}

// Uploader pushes a verified category directory to remote storage.
type Uploader interface {
	Upload(ctx context.Context, dir, envFile string) error
}

// Publisher creates posts for a category token.
type Publisher interface {
	Publish(ctx context.Context, category, envFile string) error
}

// Options configures an Orchestrator.
type Options struct {
	DataRoot string
	// EnvFiles are credential file candidates in precedence order.
	EnvFiles []string
	// DownloadAttempts is clamped to 1..config.MaxDownloadAttempts; zero
	// means the maximum.
	DownloadAttempts int
	RetryDelay       time.Duration
	// LockPath defaults to DataRoot/.yt2wp.lock.
	LockPath string

	Downloader Downloader
	Uploader   Uploader
	Publisher  Publisher
	Notifier   notifications.Service
	Logger     *slog.Logger
}

// Orchestrator runs jobs. It holds no per-run state and may be reused.
type Orchestrator struct {
	opts     Options
	attempts int
	logger   *slog.Logger
	notifier notifications.Service
	wait     func(context.Context, time.Duration) error
}

// New validates options and builds an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if strings.TrimSpace(opts.DataRoot) == "" {
		return nil, errors.New("pipeline: data root is required")
	}
	if opts.Downloader == nil || opts.Uploader == nil || opts.Publisher == nil {
		return nil, errors.New("pipeline: downloader, uploader, and publisher are required")
	}
	if len(opts.EnvFiles) == 0 {
		return nil, errors.New("pipeline: at least one credentials file candidate is required")
	}
	if strings.TrimSpace(opts.LockPath) == "" {
		opts.LockPath = filepath.Join(opts.DataRoot, LockFileName)
	}

	attempts := opts.DownloadAttempts
	if attempts <= 0 || attempts > config.MaxDownloadAttempts {
		attempts = config.MaxDownloadAttempts
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}

	return &Orchestrator{
		opts:     opts,
		attempts: attempts,
		logger:   logging.NewComponentLogger(opts.Logger, "orchestrator"),
		notifier: notifier,
		wait:     sleepContext,
	}, nil
}

// Run executes one job end to end. The returned Report is filled as far as
// the run got; a non-nil error is always a *StageError.
func (o *Orchestrator) Run(ctx context.Context, job Job) (Report, error) {
	began := time.Now()
	report := Report{RunID: uuid.NewString(), Stage: StageInit}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)

	fail := func(stage Stage, err error) (Report, error) {
		report.Stage = StageFailed
		report.FailedAt = stage
		report.Duration = time.Since(began)
		logger.Error("run failed",
			logging.String("failed_stage", string(stage)),
			logging.String("label", job.Label),
			logging.Error(err),
		)
		if stage != StageValidated || errors.Is(err, services.ErrPrerequisite) {
			o.notify(ctx, logger, notifications.EventRunFailed, notifications.Payload{
				"stage": string(stage),
				"label": job.Label,
				"error": err,
			})
		}
		return report, &StageError{Stage: stage, Err: err}
	}

	category, err := validateJob(job)
	if err != nil {
		return fail(StageValidated, err)
	}
	report.Category = category
	report.Directory = filepath.Join(o.opts.DataRoot, category)
	report.Stage = StageValidated
	logger.Info("run started",
		logging.String("label", job.Label),
		logging.String("category", category),
		logging.Bool("skip_download", job.SkipDownload),
	)

	envFile, err := credentials.Resolve(o.opts.EnvFiles)
	if err != nil {
		return fail(StageValidated, err)
	}
	report.EnvFile = envFile

	lock, err := acquireRunLock(o.opts.LockPath)
	if err != nil {
		return fail(StageValidated, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release run lock", logging.Error(err))
		}
	}()

	if job.SkipDownload {
		logger.Info("download skipped", logging.String(logging.FieldEventType, "stage_skipped"))
	} else {
		err := stageexec.Run(ctx, stageexec.Options{
			Logger:    o.logger,
			StageName: stepDownload,
			Attrs:     []logging.Attr{logging.Int("max_attempts", o.attempts)},
			Run: func(ctx context.Context, _ *slog.Logger) error {
				attempts, err := o.download(ctx, job)
				report.Attempts = attempts
				return err
			},
		})
		if err != nil {
			return fail(StageDownloaded, err)
		}
		report.Stage = StageDownloaded
	}

	err = stageexec.Run(ctx, stageexec.Options{
		Logger:    o.logger,
		StageName: stepVerify,
		Attrs:     []logging.Attr{logging.String("directory", report.Directory)},
		Run: func(_ context.Context, stageLogger *slog.Logger) error {
			dir, files, err := verifyDirectory(o.opts.DataRoot, category)
			if err != nil {
				return err
			}
			report.Directory = dir
			report.Files = files
			stageLogger.Info("category directory verified", logging.Int("files", files))
			return nil
		},
	})
	if err != nil {
		return fail(StageDirectoryVerified, err)
	}
	report.Stage = StageDirectoryVerified

	err = stageexec.Run(ctx, stageexec.Options{
		Logger:    o.logger,
		StageName: stepUpload,
		Attrs:     []logging.Attr{logging.String("directory", report.Directory)},
		Run: func(ctx context.Context, _ *slog.Logger) error {
			if err := o.opts.Uploader.Upload(ctx, report.Directory, envFile); err != nil {
				return services.Wrap(services.ErrUpload, stepUpload, "Invoke uploader", report.Directory, err)
			}
			return nil
		},
	})
	if err != nil {
		return fail(StageUploaded, err)
	}
	report.Stage = StageUploaded

	err = stageexec.Run(ctx, stageexec.Options{
		Logger:    o.logger,
		StageName: stepPublish,
		Attrs:     []logging.Attr{logging.String("category", category)},
		Run: func(ctx context.Context, _ *slog.Logger) error {
			if err := o.opts.Publisher.Publish(ctx, category, envFile); err != nil {
				return services.Wrap(services.ErrPublish, stepPublish, "Invoke publisher", category, err)
			}
			return nil
		},
	})
	if err != nil {
		return fail(StagePublished, err)
	}
	report.Stage = StageDone
	report.Duration = time.Since(began)
	logger.Info("run completed",
		logging.String("category", category),
		logging.Int("files", report.Files),
		logging.Duration("elapsed", report.Duration.Round(time.Millisecond)),
	)
	o.notify(ctx, logger, notifications.EventRunCompleted, notifications.Payload{
		"label":    job.Label,
		"category": category,
		"duration": report.Duration,
	})
	return report, nil
}

// validateJob performs the pure input checks and returns the category token.
func validateJob(job Job) (string, error) {
	if !job.SkipDownload && strings.TrimSpace(job.SourceURL) == "" {
		return "", services.Wrap(services.ErrInput, stepValidate, "Check source URL", "source URL is required", nil)
	}
	if strings.TrimSpace(job.Label) == "" {
		return "", services.Wrap(services.ErrInput, stepValidate, "Check label", "label is required", nil)
	}
	category := textutil.SanitizeLabel(job.Label)
	if category == "" {
		return "", services.Wrap(services.ErrInput, stepValidate, "Sanitize label",
			fmt.Sprintf("label %q has no usable characters", job.Label), nil)
	}
	return category, nil
}

// download invokes the downloader until one attempt succeeds or the ceiling
// is reached. Each outcome is checked on its own; a cancelled context stops
// the loop without counting as exhaustion.
func (o *Orchestrator) download(ctx context.Context, job Job) ([]Attempt, error) {
	attempts := make([]Attempt, 0, o.attempts)
	var lastErr error
	for n := 1; n <= o.attempts; n++ {
		attemptCtx := services.WithAttempt(ctx, n)
		logger := logging.WithContext(attemptCtx, o.logger)
		logger.Info("download attempt", logging.String(logging.FieldEventType, "download_attempt"))

		err := o.opts.Downloader.Download(attemptCtx, job.SourceURL, job.Label)
		attempts = append(attempts, Attempt{Number: n, Err: err})
		if err == nil {
			return attempts, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempts, services.Wrap(nil, stepDownload, "Invoke downloader", "run cancelled", ctxErr)
		}
		logger.Warn("download attempt failed",
			logging.Int("remaining", o.attempts-n),
			logging.Error(err),
		)
		if n < o.attempts {
			if err := o.wait(ctx, o.opts.RetryDelay); err != nil {
				return attempts, services.Wrap(nil, stepDownload, "Wait before retry", "run cancelled", err)
			}
		}
	}
	return attempts, services.Wrap(services.ErrDownload, stepDownload, "Invoke downloader",
		fmt.Sprintf("failed after %d attempts", len(attempts)), lastErr)
}

func (o *Orchestrator) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		logger.Warn("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
