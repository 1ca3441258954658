package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // reminder.timezone must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"`      // current application environment (local, production)
	Database Database `mapstructure:"database"` // storage section
	Reminder Reminder `mapstructure:"reminder"` // daily study reminder
	Telegram Telegram `mapstructure:"telegram"` // reminder delivery
}

// Database describes which backend to open and how to pool it.
type Database struct {
	Driver       string        `mapstructure:"driver"`         // sqlite or postgres
	DSN          string        `mapstructure:"dsn"`            // postgres connection string
	Path         string        `mapstructure:"path"`           // sqlite file path
	MaxOpenConns int           `mapstructure:"max_open_conns"` // ignored for sqlite, which always uses one
	BusyTimeout  time.Duration `mapstructure:"busy_timeout"`   // sqlite lock wait
}

type Reminder struct {
	Enabled   bool   `mapstructure:"enabled"`
	Hour      int    `mapstructure:"hour"`
	DailyGoal int    `mapstructure:"daily_goal"`
	Timezone  string `mapstructure:"timezone"`
}

type Telegram struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// Location resolves the reminder timezone, falling back to UTC when unset.
func (r Reminder) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(r.Timezone)
}

// Configured reports whether reminders can actually be delivered.
func (t Telegram) Configured() bool {
	return t.Token != "" && t.ChatID != 0
}

// Load reads .env, config/config.yaml and MEMORIZER_* environment variables,
// in increasing order of precedence.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("memorizer")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so nested keys without
	// defaults have to be bound explicitly.
	_ = v.BindEnv("database.dsn")
	_ = v.BindEnv("telegram.token", "MEMORIZER_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/memorizer.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.busy_timeout", "5s")
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.hour", 9)
	v.SetDefault("reminder.daily_goal", 10)
	v.SetDefault("reminder.timezone", "UTC")
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for sqlite", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database.dsn is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Reminder.Hour < 0 || c.Reminder.Hour > 23 {
		return fmt.Errorf("%w: reminder.hour must be between 0 and 23", ErrInvalidConfig)
	}
	if c.Reminder.DailyGoal < 0 {
		return fmt.Errorf("%w: reminder.daily_goal must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Reminder.Location(); err != nil {
		return fmt.Errorf("%w: reminder.timezone: %v", ErrInvalidConfig, err)
	}

	return nil
}
