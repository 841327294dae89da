package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"yt2wp/internal/config"
	"yt2wp/internal/services"
	"yt2wp/internal/wordpress"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var status string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish [CATEGORY...]",
		Short: "Create WordPress posts from category metadata",
		Long: "Creates one post per metadata entry in each category directory. With no\n" +
			"CATEGORY arguments every directory in the data root that holds a metadata\n" +
			"file is published.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if status == "" {
				status = cfg.WordPress.PostStatus
			}
			if !slices.Contains(config.PostStatuses, status) {
				return services.Wrap(services.ErrInput, "publish", "Check status",
					fmt.Sprintf("status %q is not one of %s", status, strings.Join(config.PostStatuses, ", ")), nil)
			}

			req := wordpress.PublishRequest{
				DataRoot:     cfg.Paths.DataRoot,
				MetadataFile: cfg.Downloader.MetadataFile,
				Categories:   args,
				Status:       status,
				AudioExt:     cfg.Downloader.AudioFormat,
				Skip:         cfg.WordPress.PlayerSkip,
				DryRun:       dryRun,
			}

			var client wordpress.PostClient
			creds, err := loadCredentials(cfg)
			switch {
			case err == nil:
				wp, err := newWordPressClient(cfg, creds)
				if err != nil {
					return err
				}
				client = wp
				req.MediaBase = creds.MediaBase(cfg.WordPress.UploadsPath)
			case !dryRun:
				return err
			}

			publisher := wordpress.NewPublisher(client, ctx.loggerValue())
			result, err := publisher.Publish(cmd.Context(), req)
			renderPublishResult(cmd, result, dryRun)
			if err != nil {
				return services.Wrap(services.ErrPublish, "publish", "Create posts", strings.Join(args, ", "), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Post status: "+strings.Join(config.PostStatuses, ", ")+" (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be posted without calling WordPress")
	return cmd
}

func renderPublishResult(cmd *cobra.Command, result wordpress.PublishResult, dryRun bool) {
	out := cmd.OutOrStdout()
	if len(result.Posts) > 0 {
		rows := make([][]string, 0, len(result.Posts))
		for _, p := range result.Posts {
			if dryRun {
				rows = append(rows, []string{p.Category, p.Entry.Title, yesNo(p.AudioFound), yesNo(p.ImageFound)})
				continue
			}
			post, outcome := "", p.Link
			if p.Err != nil {
				outcome = statusCell(out, false, "", "failed: "+p.Err.Error())
			} else {
				post = strconv.Itoa(p.PostID)
			}
			rows = append(rows, []string{p.Category, p.Entry.Title, post, outcome})
		}
		spec := tableSpec{
			Title:   "Posts",
			Headers: []string{"Category", "Title", "Post ID", "Link"},
			Rows:    rows,
			Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		}
		if dryRun {
			spec.Title = "Posts (dry run)"
			spec.Headers = []string{"Category", "Title", "Audio", "Image"}
			spec.Aligns = nil
		}
		writeTable(out, spec)
	}
	for _, name := range sortedKeys(result.CategoryErrors) {
		fmt.Fprintf(cmd.ErrOrStderr(), "category %s: %v\n", name, result.CategoryErrors[name])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
