package external

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"yt2wp/internal/config"
	"yt2wp/internal/logging"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger that receives collaborator output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client invokes the downloader, uploader, and publisher collaborators.
type Client struct {
	commands config.Commands
	base     Vars
	exec     Executor
	logger   *slog.Logger
}

// NewClient builds a collaborator client. self is the path of the running
// executable, configPath the resolved config file (may be empty).
func NewClient(commands config.Commands, self, configPath, dataRoot string, opts ...Option) *Client {
	c := &Client{
		commands: commands,
		base: Vars{
			config.PlaceholderSelf:     self,
			config.PlaceholderConfig:   configPath,
			config.PlaceholderDataRoot: dataRoot,
		},
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Download runs the downloader for a source URL and label.
func (c *Client) Download(ctx context.Context, url, label string) error {
	return c.invoke(ctx, "downloader", c.commands.Downloader, Vars{
		config.PlaceholderURL:   url,
		config.PlaceholderLabel: label,
	})
}

// Upload runs the uploader against a verified category directory.
func (c *Client) Upload(ctx context.Context, dir, envFile string) error {
	return c.invoke(ctx, "uploader", c.commands.Uploader, Vars{
		config.PlaceholderDir:     dir,
		config.PlaceholderEnvFile: envFile,
	})
}

// Publish runs the post publisher for a category token.
func (c *Client) Publish(ctx context.Context, category, envFile string) error {
	return c.invoke(ctx, "publisher", c.commands.Publisher, Vars{
		config.PlaceholderCategory: category,
		config.PlaceholderEnvFile:  envFile,
	})
}

func (c *Client) invoke(ctx context.Context, name string, template []string, vars Vars) error {
	merged := make(Vars, len(c.base)+len(vars))
	for k, v := range c.base {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}

	argv, err := Expand(template, merged)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	logger := logging.WithContext(ctx, c.logger)
	program := filepath.Base(argv[0])
	logger.Debug("invoking collaborator",
		logging.String("collaborator", name),
		logging.String("command", strings.Join(argv, " ")),
	)

	err = c.exec.Run(ctx, argv[0], argv[1:], func(line string) {
		logger.Info(line, logging.String("source", program))
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
