package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/smith3v/word-learner/pkg/config"
	"github.com/smith3v/word-learner/pkg/connectivity"
	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/learner"
	"github.com/smith3v/word-learner/pkg/logger"
	"github.com/smith3v/word-learner/pkg/wordsource"
)

type commandContext struct {
	configFlag  *string
	envFileFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag, envFileFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		envFileFlag: envFileFlag,
	}
}

// ensureConfig loads the env file and configuration once and configures
// logging. Without an explicit --config a missing file falls back to the
// defaults.
func (c *commandContext) ensureConfig(explicit bool) (config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = c.loadConfig(explicit)
		if c.configErr != nil {
			return
		}
		c.configErr = logger.Configure(logger.Options{
			Level:  c.config.Logging.Level,
			File:   c.config.Logging.File,
			Format: c.config.Logging.Format,
		})
	})
	return c.config, c.configErr
}

func (c *commandContext) loadConfig(explicit bool) (config.Config, error) {
	if err := config.LoadEnvFile(flagValue(c.envFileFlag)); err != nil {
		return config.Config{}, fmt.Errorf("load env file: %w", err)
	}

	path := flagValue(c.configFlag)
	var cfg config.Config
	if _, err := os.Stat(path); path == "" || (!explicit && errors.Is(err, os.ErrNotExist)) {
		cfg = config.Default()
		cfg.ApplyEnv()
	} else {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *commandContext) configValue() config.Config {
	cfg, _ := c.ensureConfig(false)
	return cfg
}

// withService opens the store for the duration of fn.
func (c *commandContext) withService(signal connectivity.Signal, fn func(*learner.Service, *db.Store) error) error {
	cfg := c.configValue()
	store, err := db.Open(cfg.Database, db.WithGormLogLevel(cfg.Logging.GormLevel))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	source := wordsource.New(cfg.WordSource, nil)
	return fn(learner.New(store, source, signal), store)
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}
