// Package config loads runtime settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/schoolbot/internal/session"
)

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// ErrMissingToken is returned by RequireToken when no bot token is set.
var ErrMissingToken = errors.New("bot token is missing: set BOT_TOKEN or telegram.token")

// Config holds application configuration.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Health   HealthConfig   `mapstructure:"health"`
	Log      LogConfig      `mapstructure:"log"`

	// File is the config file that was read, empty when none was.
	File string `mapstructure:"-"`

	adminID int64
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"`
}

// AdminConfig names the single administrator.
type AdminConfig struct {
	// UserID is kept as text so a non-numeric value can be reported.
	UserID string `mapstructure:"user_id"`
}

// StorageConfig selects the catalog backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// HealthConfig holds liveness endpoint settings.
type HealthConfig struct {
	Addr string `mapstructure:"addr"`
	Port string `mapstructure:"port"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration. path is an explicit config file and may be
// empty, in which case SCHOOLBOT_CONFIG or ./schoolbot.yaml is used when
// present. Env var overrides use prefix SCHOOLBOT_; the unprefixed
// BOT_TOKEN, ADMIN_USER_ID and PORT are honoured too.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("admin.user_id", "")
	v.SetDefault("storage.driver", DriverJSON)
	v.SetDefault("storage.path", "data.json")
	v.SetDefault("health.addr", "")
	v.SetDefault("health.port", "8000")
	v.SetDefault("log.level", "info")

	v.SetConfigType("yaml")

	explicit := path
	if explicit == "" {
		explicit = os.Getenv("SCHOOLBOT_CONFIG")
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("schoolbot")
	}

	v.SetEnvPrefix("SCHOOLBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range map[string][]string{
		"telegram.token": {"SCHOOLBOT_TELEGRAM_TOKEN", "BOT_TOKEN"},
		"admin.user_id":  {"SCHOOLBOT_ADMIN_USER_ID", "ADMIN_USER_ID"},
		"health.port":    {"SCHOOLBOT_HEALTH_PORT", "PORT"},
	} {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.File = v.ConfigFileUsed()

	if err := c.normalize(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) normalize() error {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)

	if raw := strings.TrimSpace(c.Admin.UserID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("ADMIN_USER_ID must be a number (telegram user id), got %q", raw)
		}
		c.adminID = id
	}

	if c.Health.Addr == "" {
		if _, err := strconv.Atoi(c.Health.Port); err != nil {
			return fmt.Errorf("PORT must be a number, got %q", c.Health.Port)
		}
		c.Health.Addr = ":" + c.Health.Port
	}

	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverJSON, DriverSQLite, c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path must not be empty")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Telegram.PollTimeout < 0 {
		return fmt.Errorf("telegram.poll_timeout must not be negative, got %d", c.Telegram.PollTimeout)
	}
	return nil
}

// AdminIdentity returns the administrator. ok is false when none is
// configured, in which case every caller is treated as admin.
func (c Config) AdminIdentity() (id session.Identity, ok bool) {
	if c.adminID == 0 {
		return 0, false
	}
	return session.Identity(c.adminID), true
}

// RequireToken returns ErrMissingToken when no bot token is configured.
func (c Config) RequireToken() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
