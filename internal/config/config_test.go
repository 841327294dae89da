package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"yt2wp/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "yt2wp", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if !filepath.IsAbs(cfg.Paths.DataRoot) || filepath.Base(cfg.Paths.DataRoot) != "data" {
		t.Fatalf("expected absolute data root ending in data, got %q", cfg.Paths.DataRoot)
	}
	if cfg.Pipeline.DownloadAttempts != 3 {
		t.Fatalf("expected 3 download attempts, got %d", cfg.Pipeline.DownloadAttempts)
	}
	if got := strings.Join(cfg.Credentials.EnvFiles, ","); got != ".env,wp.env" {
		t.Fatalf("unexpected env file precedence: %q", got)
	}
	if cfg.Commands.Downloader[0] != config.PlaceholderSelf {
		t.Fatalf("expected downloader to re-invoke self, got %v", cfg.Commands.Downloader)
	}
	if cfg.WordPress.PostStatus != "draft" {
		t.Fatalf("unexpected post status: %q", cfg.WordPress.PostStatus)
	}
	if cfg.Downloader.MetadataFile != "playlist_metadata.json" {
		t.Fatalf("unexpected metadata file: %q", cfg.Downloader.MetadataFile)
	}
	if err := cfg.EnsureLogDirectory(); err != nil {
		t.Fatalf("EnsureLogDirectory failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("expected log directory to exist: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.DataRoot); !os.IsNotExist(err) {
		t.Fatalf("expected data root to be left alone, stat err=%v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "yt2wp.toml")

	type payload struct {
		Paths struct {
			DataRoot string `toml:"data_root"`
		} `toml:"paths"`
		Pipeline struct {
			DownloadAttempts  int `toml:"download_attempts"`
			RetryDelaySeconds int `toml:"retry_delay_seconds"`
		} `toml:"pipeline"`
		Credentials struct {
			EnvFiles []string `toml:"env_files"`
		} `toml:"credentials"`
		WordPress struct {
			PostStatus  string `toml:"post_status"`
			UploadsPath string `toml:"uploads_path"`
		} `toml:"wordpress"`
	}
	custom := payload{}
	custom.Paths.DataRoot = filepath.Join(tempDir, "media")
	custom.Pipeline.DownloadAttempts = 2
	custom.Pipeline.RetryDelaySeconds = 0
	custom.Credentials.EnvFiles = []string{" secrets.env ", "", "secrets.env", "wp.env"}
	custom.WordPress.PostStatus = " Publish "
	custom.WordPress.UploadsPath = "/wp-content/uploads/custom/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataRoot != filepath.Join(tempDir, "media") {
		t.Fatalf("unexpected data root: %q", cfg.Paths.DataRoot)
	}
	if cfg.Pipeline.DownloadAttempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", cfg.Pipeline.DownloadAttempts)
	}
	if got := strings.Join(cfg.Credentials.EnvFiles, ","); got != "secrets.env,wp.env" {
		t.Fatalf("expected deduplicated env files, got %q", got)
	}
	if cfg.WordPress.PostStatus != "publish" {
		t.Fatalf("expected normalized post status, got %q", cfg.WordPress.PostStatus)
	}
	if cfg.WordPress.UploadsPath != "wp-content/uploads/custom" {
		t.Fatalf("expected trimmed uploads path, got %q", cfg.WordPress.UploadsPath)
	}
}

func TestLoadClampsDownloadAttempts(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "yt2wp.toml")
	if err := os.WriteFile(configPath, []byte("[pipeline]\ndownload_attempts = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pipeline.DownloadAttempts != config.MaxDownloadAttempts {
		t.Fatalf("expected attempts clamped to %d, got %d", config.MaxDownloadAttempts, cfg.Pipeline.DownloadAttempts)
	}
}

func TestSampleConfigUsesFullAttemptBudget(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "yt2wp.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pipeline.DownloadAttempts != config.MaxDownloadAttempts {
		t.Fatalf("expected sample to use %d attempts, got %d", config.MaxDownloadAttempts, cfg.Pipeline.DownloadAttempts)
	}

	lowered := filepath.Join(t.TempDir(), "yt2wp.toml")
	if err := os.WriteFile(lowered, []byte("[pipeline]\ndownload_attempts = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err = config.Load(lowered)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pipeline.DownloadAttempts != 1 {
		t.Fatalf("expected explicit single attempt to be kept, got %d", cfg.Pipeline.DownloadAttempts)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "yt2wp.toml")
	if err := os.WriteFile(configPath, []byte("[paths\ndata_root = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_topic_here") {
		t.Fatalf("sample config missing placeholder topic: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Paths.DataRoot != "data" {
		t.Fatalf("expected sample data root, got %q", cfg.Paths.DataRoot)
	}
	if len(cfg.Commands.Publisher) == 0 {
		t.Fatal("expected sample publisher command")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.WordPress.PostStatus = "scheduled"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown post status")
	}

	cfg = config.Default()
	cfg.Pipeline.DownloadAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero attempts")
	}

	cfg = config.Default()
	cfg.Commands.Uploader = []string{"rsync", "-a"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when uploader omits {dir}")
	}

	cfg = config.Default()
	cfg.Commands.Publisher = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty publisher command")
	}

	cfg = config.Default()
	cfg.WordPress.RequestTimeoutSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
