// Package config resolves settings from flags, MAPNAV_* environment
// variables, an optional config file and defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid configuration")

type Relay struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Gamepad struct {
	Enabled   bool          `mapstructure:"enabled"`
	Threshold float64       `mapstructure:"threshold"`
	Poll      time.Duration `mapstructure:"poll"`
}

type SavePoint struct {
	Enabled bool          `mapstructure:"enabled"`
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Status struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Config represents the application configuration.
type Config struct {
	Addr      string    `mapstructure:"addr"`
	Catalog   string    `mapstructure:"catalog"`
	Clipboard bool      `mapstructure:"clipboard"`
	Tray      bool      `mapstructure:"tray"`
	Relay     Relay     `mapstructure:"relay"`
	Gamepad   Gamepad   `mapstructure:"gamepad"`
	SavePoint SavePoint `mapstructure:"savepoint"`
	Status    Status    `mapstructure:"status"`

	// CatalogUpload lets web clients replace the catalog file.
	CatalogUpload bool `mapstructure:"catalog_upload"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("catalog", "points.json")
	v.SetDefault("clipboard", true)
	v.SetDefault("tray", runtime.GOOS == "windows")
	v.SetDefault("relay.enabled", true)
	v.SetDefault("relay.addr", "127.0.0.1:61234")
	v.SetDefault("relay.timeout", 100*time.Millisecond)
	v.SetDefault("gamepad.enabled", true)
	v.SetDefault("gamepad.threshold", 0.5)
	v.SetDefault("gamepad.poll", 16*time.Millisecond)
	v.SetDefault("savepoint.enabled", true)
	v.SetDefault("savepoint.dir", "")
	v.SetDefault("savepoint.timeout", 5*time.Second)
	v.SetDefault("catalog_upload", true)
	v.SetDefault("status.ttl", 2*time.Second)
}

// Flags returns the command line flag set. Flag names match config keys.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("mapnav", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (json, yaml or toml)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("catalog", "points.json", "map and marker catalog file")
	fs.Bool("clipboard", true, "copy marker coordinates to the clipboard")
	fs.Bool("tray", runtime.GOOS == "windows", "show a system tray icon")
	fs.Bool("relay.enabled", true, "push confirmed markers to the coordinate listener")
	fs.String("relay.addr", "127.0.0.1:61234", "coordinate listener address")
	fs.Duration("relay.timeout", 100*time.Millisecond, "coordinate listener timeout")
	fs.Bool("gamepad.enabled", true, "read local controllers through SDL3")
	fs.Float64("gamepad.threshold", 0.5, "stick deflection that counts as a direction")
	fs.Duration("gamepad.poll", 16*time.Millisecond, "controller polling interval")
	fs.Bool("savepoint.enabled", true, "bind X and Y to the save point mod's scan and teleport")
	fs.String("savepoint.dir", "", "save point mod command directory (default: temp dir)")
	fs.Duration("savepoint.timeout", 5*time.Second, "how long to wait for the save point mod")
	fs.Bool("catalog_upload", true, "accept catalog uploads from web clients")
	fs.Duration("status.ttl", 2*time.Second, "how long status messages stay visible")
	return fs
}

// Load parses args and resolves the configuration.
func Load(args []string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return FromFlags(fs)
}

// FromFlags resolves the configuration from an already parsed flag set.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MAPNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	}
	if strings.TrimSpace(c.Catalog) == "" {
		return fmt.Errorf("%w: catalog is empty", ErrInvalid)
	}
	if c.Gamepad.Threshold <= 0 || c.Gamepad.Threshold >= 1 {
		return fmt.Errorf("%w: gamepad.threshold must be in (0, 1), got %g", ErrInvalid, c.Gamepad.Threshold)
	}
	if c.SavePoint.Enabled && c.SavePoint.Timeout <= 0 {
		return fmt.Errorf("%w: savepoint.timeout must be positive", ErrInvalid)
	}
	if c.Relay.Enabled && c.Relay.Addr == "" {
		return fmt.Errorf("%w: relay.addr is empty", ErrInvalid)
	}
	return nil
}
