package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/poorboy44/bounding-boxes/internal/geo"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatSQLite = "sqlite"
)

// Default output filenames, one per format.
var defaultFilenames = map[string]string{
	FormatJSON:   "bounding_boxes.json",
	FormatText:   "bounding_boxes.txt",
	FormatSQLite: "bounding_boxes.db",
}

// Config holds one run's settings. It is built once from flags, environment,
// and an optional config file, validated, and then passed around read-only.
type Config struct {
	West  float64 `mapstructure:"west"`
	South float64 `mapstructure:"south"`
	East  float64 `mapstructure:"east"`
	North float64 `mapstructure:"north"`

	Tag string `mapstructure:"tag"`

	// Zero means "use the latitude-band default".
	LatOffset float64 `mapstructure:"lat-offset"`
	LonOffset float64 `mapstructure:"lon-offset"`

	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`

	TiersFile string `mapstructure:"tiers-file"`

	// Acceptance band for a tile's width in miles; low exclusive, high
	// inclusive.
	TargetLow  float64 `mapstructure:"target-low"`
	TargetHigh float64 `mapstructure:"target-high"`

	MaxIterations int `mapstructure:"max-iterations"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	Verbose   bool   `mapstructure:"verbose"`
}

// Load builds a Config from defaults, an optional boxgrid.yaml, BOXGRID_*
// environment variables, and the given flag set, highest priority last.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("format", FormatJSON)
	v.SetDefault("target-low", 24.8)
	v.SetDefault("target-high", 24.9)
	v.SetDefault("max-iterations", 5000)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")

	v.SetConfigName("boxgrid")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // OK if missing

	v.SetEnvPrefix("BOXGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
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

// Validate checks that the configuration describes a runnable tiling job.
func (c *Config) Validate() error {
	var errs []string

	if err := c.StudyArea().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.West < -180 || c.East > 180 {
		errs = append(errs, fmt.Sprintf("longitudes must be within [-180, 180], got west=%g east=%g", c.West, c.East))
	}
	if c.South < -90 || c.North > 90 {
		errs = append(errs, fmt.Sprintf("latitudes must be within [-90, 90], got south=%g north=%g", c.South, c.North))
	}
	if _, ok := defaultFilenames[c.Format]; !ok {
		errs = append(errs, fmt.Sprintf("format must be %s, %s, or %s, got %q",
			FormatJSON, FormatText, FormatSQLite, c.Format))
	}
	if c.LatOffset < 0 || c.LonOffset < 0 {
		errs = append(errs, "offsets must not be negative")
	}
	if c.TargetLow <= 0 || c.TargetHigh <= c.TargetLow {
		errs = append(errs, fmt.Sprintf("target band must satisfy 0 < low < high, got (%g, %g]", c.TargetLow, c.TargetHigh))
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, "max-iterations must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// StudyArea returns the outer rectangle described by the bounds.
func (c *Config) StudyArea() geo.StudyArea {
	return geo.StudyArea{West: c.West, South: c.South, East: c.East, North: c.North}
}

// OutputPath returns the destination file, falling back to the per-format
// default filename when no explicit path was given.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(".", defaultFilenames[c.Format])
}
