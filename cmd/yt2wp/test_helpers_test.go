package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt2wp/internal/config"
	"yt2wp/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv writes a config file whose collaborators are shell
// snippets, so the pipeline can run without yt-dlp or a WordPress site.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := []testsupport.ConfigOption{
		testsupport.WithCredentials("https://wp.example"),
		testsupport.WithCommands(
			[]string{"sh", "-c", `mkdir -p "$1/my-playlist" && echo audio > "$1/my-playlist/video123.mp3" && echo fetched "$0"`, "{url}", "{data_root}"},
			[]string{"sh", "-c", `test -f "$0/video123.mp3" && test -f "$1"`, "{dir}", "{env_file}"},
			[]string{"sh", "-c", `test "$0" = my-playlist`, "{category}"},
		),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	baseDir := testsupport.BaseDir(cfg)

	configPath := filepath.Join(baseDir, "config.toml")
	writeTestConfig(t, configPath, cfg)
	t.Setenv("HOME", baseDir)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: baseDir}
}

func runCLI(t *testing.T, args []string, configPath string, stdin io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.SetIn(stdin)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
