// Package catalog loads the maps and markers the navigator cycles through.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrNoMaps      = errors.New("catalog has no maps")
	ErrUnnamedMap  = errors.New("map has no name")
	ErrUnsupported = errors.New("unsupported catalog format")
)

// Marker is a point of interest within a map.
type Marker struct {
	Label string  `mapstructure:"label" json:"label"`
	X     float64 `mapstructure:"x" json:"x"`
	Y     float64 `mapstructure:"y" json:"y"`
}

// Map is one selectable map and its markers.
type Map struct {
	Name    string   `mapstructure:"name" json:"name"`
	Markers []Marker `mapstructure:"markers" json:"markers"`
}

// Catalog is the ordered list of maps.
type Catalog struct {
	Maps []Map `mapstructure:"maps" json:"maps"`
}

// Load reads a catalog file. The format follows the file extension
// (json, yaml, yml, toml).
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var unsupported viper.UnsupportedConfigError
		if errors.As(err, &unsupported) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return decode(v)
}

// Parse reads a catalog from memory in the given format.
func Parse(format string, r io.Reader) (*Catalog, error) {
	v := viper.New()
	v.SetConfigType(strings.TrimPrefix(format, "."))
	if err := v.ReadConfig(r); err != nil {
		var unsupported viper.UnsupportedConfigError
		if errors.As(err, &unsupported) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, format)
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Catalog, error) {
	var c Catalog
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the catalog can be navigated.
func (c *Catalog) Validate() error {
	if c == nil || len(c.Maps) == 0 {
		return ErrNoMaps
	}
	for i, m := range c.Maps {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("map %d: %w", i, ErrUnnamedMap)
		}
	}
	return nil
}

// Save validates c and writes it to path in the format of its extension.
func Save(path string, c *Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	v := viper.New()
	v.Set("maps", c.settings())
	if err := v.WriteConfigAs(path); err != nil {
		var unsupported viper.UnsupportedConfigError
		if errors.As(err, &unsupported) {
			return fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
		}
		return fmt.Errorf("failed to write catalog %s: %w", path, err)
	}
	return nil
}

// settings renders the maps as plain values so every viper encoder uses
// the same key names as the decoder.
func (c *Catalog) settings() []any {
	maps := make([]any, 0, len(c.Maps))
	for _, m := range c.Maps {
		markers := make([]any, 0, len(m.Markers))
		for _, mk := range m.Markers {
			markers = append(markers, map[string]any{"label": mk.Label, "x": mk.X, "y": mk.Y})
		}
		maps = append(maps, map[string]any{"name": m.Name, "markers": markers})
	}
	return maps
}
