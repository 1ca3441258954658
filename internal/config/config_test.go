package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/memorizer.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 9, cfg.Reminder.Hour)
	assert.Equal(t, 10, cfg.Reminder.DailyGoal)
	assert.False(t, cfg.Telegram.Configured())
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MEMORIZER_ENV", "production")
	t.Setenv("MEMORIZER_DATABASE_DRIVER", "postgres")
	t.Setenv("MEMORIZER_DATABASE_DSN", "postgres://localhost/memorizer?sslmode=disable")
	t.Setenv("MEMORIZER_REMINDER_HOUR", "20")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("MEMORIZER_TELEGRAM_CHAT_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/memorizer?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, 20, cfg.Reminder.Hour)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.True(t, cfg.Telegram.Configured())
}

func TestLoadConfigFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.Mkdir("config", 0o755))
	require.NoError(t, os.WriteFile("config/config.yaml", []byte(`
database:
  path: study.db
reminder:
  daily_goal: 25
  timezone: Asia/Seoul
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "study.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.Reminder.DailyGoal)
	loc, err := cfg.Reminder.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: Database{Driver: DriverSQLite, Path: "x.db"},
		Reminder: Reminder{Hour: 9, Timezone: "UTC"},
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }},
		{"hour out of range", func(c *Config) { c.Reminder.Hour = 24 }},
		{"negative goal", func(c *Config) { c.Reminder.DailyGoal = -1 }},
		{"bad timezone", func(c *Config) { c.Reminder.Timezone = "Nowhere/City" }},
	}

	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
