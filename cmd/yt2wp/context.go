package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"yt2wp/internal/config"
	"yt2wp/internal/logging"
)

type commandContext struct {
	configFlag   *string
	dataRootFlag *string
	envFileFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	closeLog   func() error
}

func newCommandContext(configFlag, dataRootFlag, envFileFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		dataRootFlag: dataRootFlag,
		envFileFlag:  envFileFlag,
	}
}

// ensureConfig loads the config file once and applies the persistent path
// overrides. The data root is not created here.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if exists {
			c.configPath = path
		}
		if dataRoot := flagValue(c.dataRootFlag); dataRoot != "" {
			expanded, err := config.ExpandPath(dataRoot)
			if err != nil {
				c.configErr = fmt.Errorf("resolve data root: %w", err)
				return
			}
			cfg.Paths.DataRoot = expanded
		}
		if envFile := flagValue(c.envFileFlag); envFile != "" {
			cfg.Credentials.EnvFiles = []string{envFile}
		}
		if err := cfg.EnsureLogDirectory(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue returns the process logger, falling back to a console logger
// on stderr when the configured outputs cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, closeFn, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: %v; falling back to stderr\n", err)
			logger, closeFn, _ = logging.New(logging.Options{Format: "console", Level: "info"})
		}
		c.logger = logger
		c.closeLog = closeFn
	})
	return c.logger
}

func (c *commandContext) close() {
	if c.closeLog != nil {
		_ = c.closeLog()
	}
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
