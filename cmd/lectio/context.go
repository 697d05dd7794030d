package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lectio/internal/config"
	"lectio/internal/devotion"
	"lectio/internal/logging"
	"lectio/internal/services"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// commandLogger keeps one-shot commands quiet unless --verbose is set.
func (c *commandContext) commandLogger(cfg *config.Config) (*slog.Logger, error) {
	level := "warn"
	if c.verboseFlag != nil && *c.verboseFlag {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:   level,
		Format:  cfg.Logging.Format,
		Outputs: []string{"stderr"},
	})
}

// withService opens the devotion facade for the duration of fn. The context
// passed to fn carries a fresh correlation id.
func (c *commandContext) withService(cmd *cobra.Command, fn func(context.Context, *devotion.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.commandLogger(cfg)
	if err != nil {
		return err
	}
	svc, err := devotion.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := services.WithRequestID(cmd.Context(), uuid.NewString())
	return fn(ctx, svc)
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
