// Package config loads mapty settings from flags, environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "MAPTY"
	configFileName = "config"
	appDirName     = ".mapty"
)

type Config struct {
	DataDir     string            `mapstructure:"data_dir"`
	Store       StoreConfig       `mapstructure:"store"`
	Map         MapConfig         `mapstructure:"map"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	Log         LogConfig         `mapstructure:"log"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "sqlite"
}

type MapConfig struct {
	Zoom        int           `mapstructure:"zoom"`
	PanDuration time.Duration `mapstructure:"pan_duration"`
}

// GeolocationConfig describes where the locator reports the user to be.
// Without both coordinates the map stays unavailable.
type GeolocationConfig struct {
	Latitude    float64       `mapstructure:"latitude"`
	Longitude   float64       `mapstructure:"longitude"`
	Timeout     time.Duration `mapstructure:"timeout"`
	HasPosition bool          `mapstructure:"-"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// NewFlagSet declares the command line flags understood by Load
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file (default ~/.mapty/config.yaml)")
	fs.String("data-dir", "", "directory for stored workouts and logs (default ~/.mapty)")
	fs.String("store", "file", "storage backend: file or sqlite")
	fs.Int("zoom", 13, "initial map zoom level (1-18)")
	fs.Duration("pan-duration", time.Second, "duration of animated map pans")
	fs.Float64("lat", 0, "current latitude reported to the map")
	fs.Float64("lng", 0, "current longitude reported to the map")
	fs.Duration("geo-timeout", 10*time.Second, "how long to wait for a position")
	fs.String("log-file", "", "log file path (default <data-dir>/mapty.log)")
	fs.Bool("dump", false, "print stored workouts as YAML and exit")
	fs.Bool("reset", false, "delete all stored workouts and exit")
	return fs
}

var flagKeys = map[string]string{
	"data-dir":     "data_dir",
	"store":        "store.backend",
	"zoom":         "map.zoom",
	"pan-duration": "map.pan_duration",
	"lat":          "geolocation.latitude",
	"lng":          "geolocation.longitude",
	"geo-timeout":  "geolocation.timeout",
	"log-file":     "log.file",
}

// Load resolves the config from fs (already parsed), MAPTY_* env vars and the config file
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for flagName, key := range flagKeys {
		if f := fs.Lookup(flagName); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", flagName, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// no defaults for these, so AutomaticEnv alone would not see them
	for _, key := range []string{"geolocation.latitude", "geolocation.longitude"} {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", envName, err)
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Geolocation.HasPosition = v.IsSet("geolocation.latitude") && v.IsSet("geolocation.longitude")
	if cfg.Geolocation.HasPosition {
		cfg.Geolocation.Latitude = v.GetFloat64("geolocation.latitude")
		cfg.Geolocation.Longitude = v.GetFloat64("geolocation.longitude")
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, "mapty.log")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("store.backend", "file")
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.pan_duration", time.Second)
	v.SetDefault("geolocation.timeout", 10*time.Second)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	path := ""
	if f := fs.Lookup("config"); f != nil {
		path = f.Value.String()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultDataDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, appDirName)
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store.backend must be file or sqlite, got %q", c.Store.Backend)
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 18 {
		return fmt.Errorf("map.zoom must be between 1 and 18, got %d", c.Map.Zoom)
	}
	if c.Map.PanDuration < 0 {
		return fmt.Errorf("map.pan_duration must not be negative")
	}
	if c.Geolocation.Timeout <= 0 {
		return fmt.Errorf("geolocation.timeout must be positive")
	}
	if c.Geolocation.HasPosition {
		if c.Geolocation.Latitude < -90 || c.Geolocation.Latitude > 90 {
			return fmt.Errorf("geolocation.latitude out of range: %v", c.Geolocation.Latitude)
		}
		if c.Geolocation.Longitude < -180 || c.Geolocation.Longitude > 180 {
			return fmt.Errorf("geolocation.longitude out of range: %v", c.Geolocation.Longitude)
		}
	}
	return nil
}
