package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"yt2wp/internal/config"
	"yt2wp/internal/fileutil"
	"yt2wp/internal/metadata"
)

type categoryStatus struct {
	Name     string
	Files    int
	Entries  int
	Metadata bool
	Err      error
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List category directories in the data root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			statuses, err := collectCategoryStatus(cfg)
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "Data root %s does not exist yet\n", cfg.Paths.DataRoot)
				return nil
			}
			if err != nil {
				return err
			}
			if len(statuses) == 0 {
				fmt.Fprintf(out, "No category directories in %s\n", cfg.Paths.DataRoot)
				return nil
			}

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				entries := strconv.Itoa(s.Entries)
				switch {
				case s.Err != nil:
					entries = "unreadable"
				case !s.Metadata:
					entries = "-"
				}
				rows = append(rows, []string{s.Name, strconv.Itoa(s.Files), entries})
			}
			writeTable(out, tableSpec{
				Title:   cfg.Paths.DataRoot,
				Headers: []string{"Category", "Files", "Metadata entries"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignRight, alignRight},
			})
			return nil
		},
	}
}

func collectCategoryStatus(cfg *config.Config) ([]categoryStatus, error) {
	names, err := fileutil.Subdirectories(cfg.Paths.DataRoot)
	if err != nil {
		return nil, err
	}
	statuses := make([]categoryStatus, 0, len(names))
	for _, name := range names {
		dir := filepath.Join(cfg.Paths.DataRoot, name)
		s := categoryStatus{Name: name}
		files, err := fileutil.RegularFiles(dir)
		if err != nil {
			s.Err = err
			statuses = append(statuses, s)
			continue
		}
		s.Files = len(files)
		metaPath := cfg.MetadataPath(dir)
		for _, f := range files {
			if f == metaPath {
				s.Metadata = true
			}
		}
		if s.Metadata {
			entries, err := metadata.Load(metaPath)
			if err != nil {
				s.Err = err
			}
			s.Entries = len(entries)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}
