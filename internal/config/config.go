package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataRoot string `toml:"data_root"`
	LogDir   string `toml:"log_dir"`
}

// Credentials lists the key-value credential files checked in order; the
// first one that exists wins.
type Credentials struct {
	EnvFiles []string `toml:"env_files"`
}

// Pipeline contains orchestrator retry settings.
type Pipeline struct {
	DownloadAttempts  int `toml:"download_attempts"`
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
}

// Commands holds the argv templates used to invoke the external collaborators.
//
// Recognized placeholders: {self}, {config}, {url}, {label}, {dir},
// {category}, {env_file}, {data_root}.
type Commands struct {
	Downloader []string `toml:"downloader"`
	Uploader   []string `toml:"uploader"`
	Publisher  []string `toml:"publisher"`
}

// Downloader contains settings for the built-in yt-dlp downloader.
type Downloader struct {
	YtdlpBinary      string `toml:"ytdlp_binary"`
	CookiesFile      string `toml:"cookies_file"`
	MetadataFile     string `toml:"metadata_file"`
	AudioFormat      string `toml:"audio_format"`
	AudioQuality     string `toml:"audio_quality"`
	ThumbnailBaseURL string `toml:"thumbnail_base_url"`
}

// WordPress contains settings for the built-in uploader and publisher.
type WordPress struct {
	UploadsPath           string `toml:"uploads_path"`
	PostStatus            string `toml:"post_status"`
	PlayerSkip            int    `toml:"player_skip"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for yt2wp.
//
// Configuration sections by subsystem:
//   - Paths: data root and log directory
//   - Credentials: credential file precedence
//   - Pipeline: download retry ceiling and delay
//   - Commands: collaborator argv templates
//   - Downloader: yt-dlp invocation and metadata layout
//   - WordPress: upload paths, post status, and player shortcode
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Credentials   Credentials   `toml:"credentials"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Commands      Commands      `toml:"commands"`
	Downloader    Downloader    `toml:"downloader"`
	WordPress     WordPress     `toml:"wordpress"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/yt2wp/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("yt2wp.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureLogDirectory creates the log directory. The data root is deliberately
// left alone: a missing data root is reported by the pipeline, not papered over.
func (c *Config) EnsureLogDirectory() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// MetadataPath returns the metadata file path inside a category directory.
func (c *Config) MetadataPath(dir string) string {
	return filepath.Join(dir, c.Downloader.MetadataFile)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
