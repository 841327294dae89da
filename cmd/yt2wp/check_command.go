package main

import (
	"github.com/spf13/cobra"

	"yt2wp/internal/deps"
	"yt2wp/internal/preflight"
	"yt2wp/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify paths, credentials, WordPress access, and external binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, statusCell(out, r.Passed, "ok", "fail"), r.Detail})
			}
			writeTable(out, tableSpec{
				Title:   "Preflight",
				Headers: []string{"Check", "Status", "Detail"},
				Rows:    rows,
			})

			statuses := preflight.CheckSystemDeps(cfg)
			rows = make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := statusCell(out, s.Available, "ok", "missing")
				if !s.Available && s.Optional {
					state = "optional"
				}
				detail := s.Path
				if detail == "" {
					detail = s.Detail
				}
				rows = append(rows, []string{s.Name, state, detail, s.Description})
			}
			writeTable(out, tableSpec{
				Title:   "Dependencies",
				Headers: []string{"Dependency", "Status", "Location", "Purpose"},
				Rows:    rows,
			})

			missing := deps.MissingRequired(statuses)
			if preflight.Failed(results) || len(missing) > 0 {
				return services.Wrap(services.ErrPrerequisite, "check", "Run preflight", "one or more checks failed", nil)
			}
			return nil
		},
	}
}
