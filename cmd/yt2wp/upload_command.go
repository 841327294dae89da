package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"yt2wp/internal/services"
	"yt2wp/internal/wordpress"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var skipMissing bool

	cmd := &cobra.Command{
		Use:   "upload DIR",
		Short: "Upload a category directory's audio and thumbnails to the WordPress media library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerValue()

			var client wordpress.MediaClient
			creds, err := loadCredentials(cfg)
			switch {
			case err == nil:
				wp, err := newWordPressClient(cfg, creds)
				if err != nil {
					return err
				}
				client = wp
			case !dryRun:
				return err
			}

			uploader := wordpress.NewUploader(client, logger)
			result, err := uploader.Upload(cmd.Context(), wordpress.UploadRequest{
				Dir:          args[0],
				MetadataFile: cfg.Downloader.MetadataFile,
				DryRun:       dryRun,
				SkipMissing:  skipMissing,
			})
			renderUploadResult(cmd, result, dryRun)
			if err != nil {
				return services.Wrap(services.ErrUpload, "upload", "Upload media", args[0], err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the files that would be uploaded without uploading")
	cmd.Flags().BoolVar(&skipMissing, "skip-missing", false, "Skip entries lacking audio or a thumbnail instead of failing")
	return cmd
}

func renderUploadResult(cmd *cobra.Command, result wordpress.UploadResult, dryRun bool) {
	if len(result.Outcomes) == 0 && len(result.Missing) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(result.Outcomes)+len(result.Missing))
	for _, o := range result.Outcomes {
		status := "uploaded"
		switch {
		case dryRun:
			status = "pending"
		case o.Err != nil:
			status = statusCell(out, false, "", "failed")
		}
		media := ""
		if o.MediaID > 0 {
			media = strconv.Itoa(o.MediaID)
		}
		rows = append(rows, []string{o.Target.VideoID, string(o.Target.Kind), filepath.Base(o.Target.Path), media, status})
	}
	for _, gap := range result.Missing {
		rows = append(rows, []string{gap.VideoID, "", "", "", "skipped: " + gap.Error()})
	}
	title := "Uploads"
	if dryRun {
		title = "Uploads (dry run)"
	}
	writeTable(out, tableSpec{
		Title:   title,
		Headers: []string{"Video", "Kind", "File", "Media ID", "Status"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	})
	if !dryRun {
		fmt.Fprintf(out, "%d uploaded, %d failed\n", len(result.Outcomes)-result.Failed(), result.Failed())
	}
}
