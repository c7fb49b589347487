// Package cli holds configuration and error reporting for the sqlbricks
// command.
package cli

import (
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dropbox/sqlbricks/errors"
)

const (
	EnvPrefix = "SQLBRICKS"

	DriverPQ  = "postgres"
	DriverPgx = "pgx"
)

// Config files looked up in the working directory when --config is absent.
var DefaultConfigFiles = []string{"sqlbricks.yaml", "sqlbricks.yml"}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Exec     ExecConfig     `mapstructure:"exec"`
}

type DatabaseConfig struct {
	URL    string `mapstructure:"url"`
	Driver string `mapstructure:"driver"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ExecConfig struct {
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("database.driver", DriverPQ)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("exec.slow_threshold", "200ms")
	v.SetDefault("exec.timeout", "30s")
}

// LoadConfig merges defaults, the config file and SQLBRICKS_* environment
// variables, in increasing precedence.  Flags are applied by the caller.
// Returns the config and the path of the file it read, if any.
func LoadConfig(explicitPath string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, errors.Wrapf(err, "Failed to read config file %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, path, errors.Wrap(err, "Failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", errors.Newf("Config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}
	for _, name := range DefaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPQ, DriverPgx:
	default:
		return errors.Newf(
			"Unknown database driver %q (expected %s or %s)",
			c.Database.Driver,
			DriverPQ,
			DriverPgx)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Newf("Unknown log format %q (expected text or json)", c.Log.Format)
	}
	if c.Exec.SlowThreshold < 0 || c.Exec.Timeout < 0 {
		return errors.New("exec durations must not be negative")
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Wrapf(err, "Invalid log level %q", l.Level)
	}
	return level, nil
}

// DSN returns the database url, or an error when none is configured.
func (c *Config) DSN() (string, error) {
	if c.Database.URL == "" {
		return "", errors.Newf(
			"No database url: pass --dsn, set %s_DATABASE_URL or database.url",
			EnvPrefix)
	}
	return c.Database.URL, nil
}

// Display is the shape config show prints: durations as text, the database
// password masked.
type Display struct {
	Database struct {
		URL    string `json:"url"`
		Driver string `json:"driver"`
	} `json:"database"`
	Log struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"log"`
	Exec struct {
		SlowThreshold string `json:"slow_threshold"`
		Timeout       string `json:"timeout"`
	} `json:"exec"`
}

func (c *Config) Display() Display {
	var d Display
	d.Database.URL = redactURL(c.Database.URL)
	d.Database.Driver = c.Database.Driver
	d.Log.Level = c.Log.Level
	d.Log.Format = c.Log.Format
	d.Exec.SlowThreshold = c.Exec.SlowThreshold.String()
	d.Exec.Timeout = c.Exec.Timeout.String()
	return d
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
