package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration tree. Values come from the YAML
// file, GILDHALL_* environment overrides, and built-in defaults, in that
// order of precedence.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig covers the websocket listener and session housekeeping.
type ServerConfig struct {
	Address     string        `mapstructure:"address"`
	LeasePeriod time.Duration `mapstructure:"lease_period"`
	MaxSessions int           `mapstructure:"max_sessions"`
	LogDir      string        `mapstructure:"log_dir"`
}

// DatabaseConfig configures the postgres pool. An empty URL disables
// persistence; the server then runs with in-memory state only.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// AuthConfig covers account and reset-token handling.
type AuthConfig struct {
	AdminPassword         string        `mapstructure:"admin_password"`
	PasswordResetTokenTTL time.Duration `mapstructure:"password_reset_token_ttl"`
	MinPasswordLength     int           `mapstructure:"min_password_length"`
}

// GameConfig is the run template every new run is stamped from.
type GameConfig struct {
	StartingGold int `mapstructure:"starting_gold"`
	HandSize     int `mapstructure:"hand_size"`
	BaseActions  int `mapstructure:"base_actions"`
	EventChance  int `mapstructure:"event_chance"`
	MaxTurns     int `mapstructure:"max_turns"`
	HouseSlots   int `mapstructure:"house_slots"`
}

// LoggingConfig selects the zap profile.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration at path. A missing file is not an error; the
// defaults plus environment overrides are used instead.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("GILDHALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8089")
	v.SetDefault("server.lease_period", "8m")
	v.SetDefault("server.max_sessions", 500)
	v.SetDefault("server.log_dir", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.connect_timeout", "5s")

	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.password_reset_token_ttl", "15m")
	v.SetDefault("auth.min_password_length", 8)

	v.SetDefault("game.starting_gold", 5)
	v.SetDefault("game.hand_size", 5)
	v.SetDefault("game.base_actions", 3)
	v.SetDefault("game.event_chance", 30)
	v.SetDefault("game.max_turns", 20)
	v.SetDefault("game.house_slots", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.LeasePeriod <= 0 {
		return fmt.Errorf("server.lease_period must be positive, got %s", c.Server.LeasePeriod)
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("server.max_sessions must be at least 1, got %d", c.Server.MaxSessions)
	}
	if c.Auth.PasswordResetTokenTTL <= 0 {
		return fmt.Errorf("auth.password_reset_token_ttl must be positive, got %s", c.Auth.PasswordResetTokenTTL)
	}
	if c.Auth.MinPasswordLength < 4 {
		return fmt.Errorf("auth.min_password_length must be at least 4, got %d", c.Auth.MinPasswordLength)
	}
	if c.Game.HandSize < 1 {
		return fmt.Errorf("game.hand_size must be at least 1, got %d", c.Game.HandSize)
	}
	if c.Game.BaseActions < 1 {
		return fmt.Errorf("game.base_actions must be at least 1, got %d", c.Game.BaseActions)
	}
	if c.Game.MaxTurns < 1 {
		return fmt.Errorf("game.max_turns must be at least 1, got %d", c.Game.MaxTurns)
	}
	if c.Game.HouseSlots < 0 {
		return fmt.Errorf("game.house_slots must not be negative, got %d", c.Game.HouseSlots)
	}
	if c.Game.EventChance > 100 {
		return fmt.Errorf("game.event_chance must not exceed 100, got %d", c.Game.EventChance)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	return nil
}
