package preflight

import (
	"context"

	"yt2wp/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem and credential checks for the given config.
// The WordPress check only runs when a valid credentials file was found.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data root", cfg.Paths.DataRoot),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	creds, credResult := CheckCredentials(cfg.Credentials.EnvFiles)
	results = append(results, credResult)
	if credResult.Passed {
		results = append(results, CheckWordPress(ctx, creds, nil))
	}

	if cfg.Downloader.CookiesFile != "" {
		results = append(results, CheckFileReadable("Cookies file", cfg.Downloader.CookiesFile))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
