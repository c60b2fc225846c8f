package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/smith3v/word-learner/pkg/logger"
)

type Config struct {
	Database     DatabaseConfig     `json:"database" toml:"database"`
	Telegram     TelegramConfig     `json:"telegram" toml:"telegram"`
	Logging      LoggingConfig      `json:"logging" toml:"logging"`
	WordSource   WordSourceConfig   `json:"word_source" toml:"word_source"`
	Connectivity ConnectivityConfig `json:"connectivity" toml:"connectivity"`
}

// DatabaseConfig selects the durable store. Driver is "sqlite" or "postgres";
// Path is used by sqlite, the remaining fields by postgres.
type DatabaseConfig struct {
	Driver   string `json:"driver" toml:"driver"`
	Path     string `json:"path" toml:"path"`
	Host     string `json:"host" toml:"host"`
	User     string `json:"user" toml:"user"`
	Password string `json:"password" toml:"password"`
	DBName   string `json:"dbname" toml:"dbname"`
	Port     int    `json:"port" toml:"port"`
	SSLMode  string `json:"sslmode" toml:"sslmode"`
}

type TelegramConfig struct {
	Token         string `json:"token" toml:"token"`
	AllowedUserID int64  `json:"allowed_user_id" toml:"allowed_user_id"`
	// ReminderHours are local hours (0-23) at which the next word is pushed
	// to AllowedUserID. Empty disables reminders.
	ReminderHours       []int `json:"reminder_hours" toml:"reminder_hours"`
	TimezoneOffsetHours int   `json:"timezone_offset_hours" toml:"timezone_offset_hours"`
}

type LoggingConfig struct {
	Level     string `json:"level" toml:"level"`
	File      string `json:"file" toml:"file"`
	Format    string `json:"format" toml:"format"`
	GormLevel string `json:"gorm_level" toml:"gorm_level"`
}

type WordSourceConfig struct {
	URL                    string `json:"url" toml:"url"`
	Language               string `json:"language" toml:"language"`
	TimeoutSeconds         int    `json:"timeout_seconds" toml:"timeout_seconds"`
	MeaningPlaceholder     string `json:"meaning_placeholder" toml:"meaning_placeholder"`
	EtymologyPlaceholder   string `json:"etymology_placeholder" toml:"etymology_placeholder"`
	TranslationPlaceholder string `json:"translation_placeholder" toml:"translation_placeholder"`
}

type ConnectivityConfig struct {
	ProbeURL        string `json:"probe_url" toml:"probe_url"`
	IntervalSeconds int    `json:"interval_seconds" toml:"interval_seconds"`
	TimeoutSeconds  int    `json:"timeout_seconds" toml:"timeout_seconds"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default returns the configuration used for any field the file leaves out.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:  DriverSQLite,
			Path:    filepath.Join("data", "wordlearn.db"),
			Port:    5432,
			SSLMode: "disable",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			GormLevel: "warn",
		},
		WordSource: WordSourceConfig{
			URL:                    "https://random-word-api.herokuapp.com/word",
			Language:               "pt",
			TimeoutSeconds:         10,
			MeaningPlaceholder:     "Significado não disponível automaticamente.",
			EtymologyPlaceholder:   "Etimologia não disponível automaticamente.",
			TranslationPlaceholder: "Translation unavailable.",
		},
		Connectivity: ConnectivityConfig{
			ProbeURL:        "https://random-word-api.herokuapp.com/",
			IntervalSeconds: 30,
			TimeoutSeconds:  5,
		},
	}
}

// LoadConfig reads filename on top of Default. Files ending in .toml are
// decoded as TOML, everything else as JSON. A missing file is an error.
func LoadConfig(filename string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return cfg, err
	}

	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		logger.Error("failed to decode config file", "error", err)
		return cfg, fmt.Errorf("decode %s: %w", filename, err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides fields from WORDLEARN_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("WORDLEARN_TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("WORDLEARN_ALLOWED_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.AllowedUserID = id
		} else {
			logger.Error("ignoring invalid WORDLEARN_ALLOWED_USER_ID", "value", v, "error", err)
		}
	}
	if v := os.Getenv("WORDLEARN_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("WORDLEARN_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("WORDLEARN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}
	if c.WordSource.TimeoutSeconds < 0 || c.Connectivity.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	for _, hour := range c.Telegram.ReminderHours {
		if hour < 0 || hour > 23 {
			errs = append(errs, fmt.Errorf("telegram.reminder_hours: %d is not an hour of the day", hour))
		}
	}
	if len(c.Telegram.ReminderHours) > 0 && c.Telegram.AllowedUserID == 0 {
		errs = append(errs, errors.New("telegram.reminder_hours requires telegram.allowed_user_id"))
	}
	if c.Telegram.TimezoneOffsetHours < -12 || c.Telegram.TimezoneOffsetHours > 14 {
		errs = append(errs, errors.New("telegram.timezone_offset_hours must be between -12 and 14"))
	}
	if c.Connectivity.IntervalSeconds < 0 {
		errs = append(errs, errors.New("connectivity.interval_seconds must not be negative"))
	}
	return errors.Join(errs...)
}
