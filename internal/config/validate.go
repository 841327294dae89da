package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateCommands(); err != nil {
		return err
	}
	if err := c.validateWordPress(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataRoot) == "" {
		return errors.New("paths.data_root must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.DownloadAttempts < 1 || c.Pipeline.DownloadAttempts > MaxDownloadAttempts {
		return fmt.Errorf("pipeline.download_attempts must be between 1 and %d", MaxDownloadAttempts)
	}
	if c.Pipeline.RetryDelaySeconds < 0 {
		return errors.New("pipeline.retry_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateCommands() error {
	for key, argv := range map[string][]string{
		"commands.downloader": c.Commands.Downloader,
		"commands.uploader":   c.Commands.Uploader,
		"commands.publisher":  c.Commands.Publisher,
	} {
		if len(argv) == 0 {
			return fmt.Errorf("%s must name a program", key)
		}
	}
	if !containsPlaceholder(c.Commands.Downloader, PlaceholderURL) {
		return fmt.Errorf("commands.downloader must pass %s", PlaceholderURL)
	}
	if !containsPlaceholder(c.Commands.Uploader, PlaceholderDir) {
		return fmt.Errorf("commands.uploader must pass %s", PlaceholderDir)
	}
	if !containsPlaceholder(c.Commands.Publisher, PlaceholderCategory) {
		return fmt.Errorf("commands.publisher must pass %s", PlaceholderCategory)
	}
	return nil
}

func (c *Config) validateWordPress() error {
	if !slices.Contains(PostStatuses, c.WordPress.PostStatus) {
		return fmt.Errorf("wordpress.post_status must be one of %s", strings.Join(PostStatuses, ", "))
	}
	if c.WordPress.PlayerSkip < 0 {
		return errors.New("wordpress.player_skip must be >= 0")
	}
	if err := ensurePositiveMap(map[string]int{
		"wordpress.request_timeout_seconds": c.WordPress.RequestTimeoutSeconds,
		"notifications.request_timeout":     c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func containsPlaceholder(argv []string, placeholder string) bool {
	for _, arg := range argv {
		if strings.Contains(arg, placeholder) {
			return true
		}
	}
	return false
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
