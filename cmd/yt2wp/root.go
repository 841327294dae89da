package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"yt2wp/internal/external"
	"yt2wp/internal/logging"
	"yt2wp/internal/notifications"
	"yt2wp/internal/pipeline"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var dataRootFlag string
	var envFileFlag string
	var urlFlag string
	var labelFlag string
	var skipDownload bool

	ctx := newCommandContext(&configFlag, &dataRootFlag, &envFileFlag)

	rootCmd := &cobra.Command{
		Use:   "yt2wp",
		Short: "Download a YouTube playlist and publish it to WordPress",
		Long: "Runs the full pipeline for one playlist: download audio and thumbnails,\n" +
			"verify the category directory, upload media, and create posts.\n" +
			"The source URL and label are prompted for when not given as flags.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := readJob(cmd, urlFlag, labelFlag, skipDownload)
			if err != nil {
				return err
			}
			return runPipeline(cmd, ctx, job)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&dataRootFlag, "data-root", "", "Directory holding one subdirectory per category (overrides config)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Credentials file (overrides the configured candidates)")
	rootCmd.Flags().StringVar(&urlFlag, "url", "", "Playlist or video URL (prompted when omitted)")
	rootCmd.Flags().StringVar(&labelFlag, "label", "", "Human-readable playlist label (prompted when omitted)")
	rootCmd.Flags().BoolVar(&skipDownload, "skip-download", false, "Reuse files already in the category directory")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})

	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// readJob fills the job from flags, prompting for whatever is missing. Blank
// answers are passed through; the orchestrator rejects them as input errors.
func readJob(cmd *cobra.Command, url, label string, skipDownload bool) (pipeline.Job, error) {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	var err error
	if !skipDownload && url == "" {
		if url, err = p.ask("Source URL"); err != nil {
			return pipeline.Job{}, err
		}
	}
	if label == "" {
		if label, err = p.ask("Label"); err != nil {
			return pipeline.Job{}, err
		}
	}
	return pipeline.Job{SourceURL: url, Label: label, SkipDownload: skipDownload}, nil
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, job pipeline.Job) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger := ctx.loggerValue()

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate yt2wp executable: %w", err)
	}
	collaborators := external.NewClient(cfg.Commands, self, ctx.configPath, cfg.Paths.DataRoot, external.WithLogger(logger))

	orchestrator, err := pipeline.New(pipeline.Options{
		DataRoot:         cfg.Paths.DataRoot,
		EnvFiles:         cfg.Credentials.EnvFiles,
		DownloadAttempts: cfg.Pipeline.DownloadAttempts,
		RetryDelay:       time.Duration(cfg.Pipeline.RetryDelaySeconds) * time.Second,
		Downloader:       collaborators,
		Uploader:         collaborators,
		Publisher:        collaborators,
		Notifier:         notifications.NewService(cfg),
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	report, err := orchestrator.Run(cmd.Context(), job)
	if err != nil {
		var ambiguous *pipeline.AmbiguousDirectoryError
		if errors.As(err, &ambiguous) {
			rows := make([][]string, 0, len(ambiguous.Candidates))
			for _, candidate := range ambiguous.Candidates {
				rows = append(rows, []string{candidate})
			}
			writeTable(cmd.ErrOrStderr(), tableSpec{
				Title:   fmt.Sprintf("Expected %s; refusing to choose between", ambiguous.Expected),
				Headers: []string{"Candidate directory"},
				Rows:    rows,
			})
		}
		logger.Debug("run report",
			logging.String(logging.FieldRunID, report.RunID),
			logging.String("failed_stage", string(report.FailedAt)),
			logging.Int("download_attempts", len(report.Attempts)),
		)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Published %s (%d files) in %s\n",
		report.Category, report.Files, report.Duration.Round(time.Second))
	return nil
}
