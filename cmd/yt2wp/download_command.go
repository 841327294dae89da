package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yt2wp/internal/services"
	"yt2wp/internal/ytdlp"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var cookiesFile string
	var noPlaylist bool

	cmd := &cobra.Command{
		Use:   "download URL [LABEL]",
		Short: "Download playlist audio, thumbnails, and metadata into the data root",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req := ytdlp.Request{
				URL:         args[0],
				DataRoot:    cfg.Paths.DataRoot,
				CookiesFile: cfg.Downloader.CookiesFile,
				NoPlaylist:  noPlaylist,
			}
			if len(args) == 2 {
				req.Label = args[1]
			}
			if cookiesFile != "" {
				req.CookiesFile = cookiesFile
			}

			downloader := ytdlp.New(cfg.Downloader, ytdlp.WithLogger(ctx.loggerValue()))
			result, err := downloader.Download(cmd.Context(), req)
			if err != nil {
				return services.Wrap(services.ErrDownload, "download", "Download playlist", req.URL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Collected %d entries into %s (%d downloaded, %d already present)\n",
				result.Entries, result.Directory, result.Downloaded, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&cookiesFile, "cookies-file", "", "Netscape cookies file passed to yt-dlp")
	cmd.Flags().BoolVar(&noPlaylist, "no-playlist", false, "Only download the video when the URL also names a playlist")
	return cmd
}
