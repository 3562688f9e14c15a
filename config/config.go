package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/admin"
	"github.com/sagarc03/wally/database"
	"github.com/sagarc03/wally/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for wally.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Wall     WallConfig      `mapstructure:"wall"`
	Database database.Config `mapstructure:"database"`
	Admin    AdminConfig     `mapstructure:"admin"`
	Log      LogConfig       `mapstructure:"log"`
}

// ServerConfig holds the origin server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=0,max=65535"`
	// Root is the directory tree being served. It must exist.
	Root        string   `mapstructure:"root" validate:"required,dir"`
	Name        string   `mapstructure:"name" validate:"required"`
	Index       []string `mapstructure:"index" validate:"dive,required,excludesall=/\\"`
	IdleTimeout int      `mapstructure:"idle_timeout" validate:"min=0"` // seconds, 0 disables
}

// WallConfig holds the comment wall configuration.
type WallConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// AdminConfig holds the moderation API configuration.
type AdminConfig struct {
	Enabled bool                  `mapstructure:"enabled"`
	Port    int                   `mapstructure:"port" validate:"min=0,max=65535"`
	Keys    keybackend.KeysConfig `mapstructure:"keys"`
	CORS    admin.CORSConfig      `mapstructure:"cors"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":    "database.type",
	"db-dsn":     "database.dsn",
	"root":       "server.root",
	"port":       "server.port",
	"admin-port": "admin.port",
	"wall":       "wall.enabled",
	"log-level":  "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.root", ".")
	v.SetDefault("server.name", wally.DefaultServerInfo)
	v.SetDefault("server.index", []string{})
	v.SetDefault("server.idle_timeout", 0)

	v.SetDefault("wall.enabled", true)
	v.SetDefault("wall.path", wally.DefaultWallPath)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "wally.db")
	v.SetDefault("database.tables.comments", "wally_comments")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.port", 8081)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix("WALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
