package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCredentials()
	c.normalizePipeline()
	c.normalizeCommands()
	if err := c.normalizeDownloader(); err != nil {
		return err
	}
	c.normalizeWordPress()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataRoot) == "" {
		c.Paths.DataRoot = defaultDataRoot
	}
	if c.Paths.DataRoot, err = expandPath(strings.TrimSpace(c.Paths.DataRoot)); err != nil {
		return fmt.Errorf("paths.data_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeCredentials trims candidates but keeps them relative; they are
// resolved against the working directory at run time.
func (c *Config) normalizeCredentials() {
	files := make([]string, 0, len(c.Credentials.EnvFiles))
	seen := make(map[string]struct{}, len(c.Credentials.EnvFiles))
	for _, file := range c.Credentials.EnvFiles {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		if _, ok := seen[file]; ok {
			continue
		}
		seen[file] = struct{}{}
		files = append(files, file)
	}
	if len(files) == 0 {
		files = defaultEnvFiles()
	}
	c.Credentials.EnvFiles = files
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.DownloadAttempts <= 0 {
		c.Pipeline.DownloadAttempts = defaultDownloadAttempts
	}
	if c.Pipeline.DownloadAttempts > MaxDownloadAttempts {
		c.Pipeline.DownloadAttempts = MaxDownloadAttempts
	}
	if c.Pipeline.RetryDelaySeconds < 0 {
		c.Pipeline.RetryDelaySeconds = 0
	}
}

func (c *Config) normalizeCommands() {
	c.Commands.Downloader = trimArgs(c.Commands.Downloader)
	if len(c.Commands.Downloader) == 0 {
		c.Commands.Downloader = defaultDownloaderCommand()
	}
	c.Commands.Uploader = trimArgs(c.Commands.Uploader)
	if len(c.Commands.Uploader) == 0 {
		c.Commands.Uploader = defaultUploaderCommand()
	}
	c.Commands.Publisher = trimArgs(c.Commands.Publisher)
	if len(c.Commands.Publisher) == 0 {
		c.Commands.Publisher = defaultPublisherCommand()
	}
}

func (c *Config) normalizeDownloader() error {
	c.Downloader.YtdlpBinary = strings.TrimSpace(c.Downloader.YtdlpBinary)
	if c.Downloader.YtdlpBinary == "" {
		c.Downloader.YtdlpBinary = defaultYtdlpBinary
	}
	c.Downloader.MetadataFile = strings.TrimSpace(c.Downloader.MetadataFile)
	if c.Downloader.MetadataFile == "" {
		c.Downloader.MetadataFile = defaultMetadataFile
	}
	c.Downloader.AudioFormat = strings.ToLower(strings.TrimSpace(c.Downloader.AudioFormat))
	if c.Downloader.AudioFormat == "" {
		c.Downloader.AudioFormat = defaultAudioFormat
	}
	c.Downloader.AudioQuality = strings.TrimSpace(c.Downloader.AudioQuality)
	if c.Downloader.AudioQuality == "" {
		c.Downloader.AudioQuality = defaultAudioQuality
	}
	c.Downloader.ThumbnailBaseURL = strings.TrimRight(strings.TrimSpace(c.Downloader.ThumbnailBaseURL), "/")
	if c.Downloader.ThumbnailBaseURL == "" {
		c.Downloader.ThumbnailBaseURL = defaultThumbnailBaseURL
	}
	if cookies := strings.TrimSpace(c.Downloader.CookiesFile); cookies != "" {
		var err error
		if c.Downloader.CookiesFile, err = expandPath(cookies); err != nil {
			return fmt.Errorf("downloader.cookies_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeWordPress() {
	c.WordPress.UploadsPath = strings.Trim(strings.TrimSpace(c.WordPress.UploadsPath), "/")
	if c.WordPress.UploadsPath == "" {
		c.WordPress.UploadsPath = defaultUploadsPath
	}
	c.WordPress.PostStatus = strings.ToLower(strings.TrimSpace(c.WordPress.PostStatus))
	if c.WordPress.PostStatus == "" {
		c.WordPress.PostStatus = defaultPostStatus
	}
	if c.WordPress.RequestTimeoutSeconds == 0 {
		c.WordPress.RequestTimeoutSeconds = defaultWordPressTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotificationTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
