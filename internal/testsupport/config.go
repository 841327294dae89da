// Package testsupport builds throwaway configs and fixtures for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"yt2wp/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The data root is created; credential candidates point inside the temp
// directory and do not exist until WithCredentials is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataRoot = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Credentials.EnvFiles = []string{filepath.Join(base, ".env"), filepath.Join(base, "wp.env")}
	cfgVal.Pipeline.RetryDelaySeconds = 0
	if err := os.MkdirAll(cfgVal.Paths.DataRoot, 0o755); err != nil {
		t.Fatalf("mkdir data root: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCredentials writes a complete credentials file as the first candidate.
func WithCredentials(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		WriteEnvFile(b.t, b.cfg.Credentials.EnvFiles[0], map[string]string{
			"WP_BASE_URL":     baseURL,
			"WP_USERNAME":     "editor",
			"WP_APP_PASSWORD": "secret",
		})
	}
}

// WithCommands overrides the collaborator argv templates.
func WithCommands(downloader, uploader, publisher []string) ConfigOption {
	return func(b *configBuilder) {
		if downloader != nil {
			b.cfg.Commands.Downloader = downloader
		}
		if uploader != nil {
			b.cfg.Commands.Uploader = uploader
		}
		if publisher != nil {
			b.cfg.Commands.Publisher = publisher
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp and ffmpeg are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataRoot)
}
