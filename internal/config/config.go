// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads the location program configuration from
// defaults, an optional config file, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider kinds.
const (
	ProviderAuto   = "auto"
	ProviderFused  = "fused"
	ProviderStatic = "static"
	ProviderIPGeo  = "ipgeo"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "LOCATION"

// Config is the program configuration.
type Config struct {
	Log        LogConfig
	Screen     ScreenConfig
	Provider   ProviderConfig
	Permission PermissionConfig
}

// LogConfig configures the logger returned by NewLogger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// ScreenConfig configures the location screen.
type ScreenConfig struct {
	// Refresh lets the button fetch again once a location is shown.
	Refresh bool
	// Toast is how long a notice stays on screen.
	Toast time.Duration
}

// ProviderConfig selects and configures the location provider.
type ProviderConfig struct {
	Kind   string
	Static StaticConfig
	IPGeo  IPGeoConfig
}

// StaticConfig is the fixed coordinate of the static provider. Set
// distinguishes a configured coordinate from none.
type StaticConfig struct {
	Set       bool
	Latitude  float64
	Longitude float64
}

// IPGeoConfig configures the IP geolocation provider.
type IPGeoConfig struct {
	URL     string
	Timeout time.Duration
}

// PermissionConfig scripts the permission registry on platforms that
// lack one.
type PermissionConfig struct {
	Granted bool
	Answer  string // grant, deny
}

// Flags returns the command-line flags understood by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("provider", ProviderAuto, "location provider: auto, fused, static or ipgeo")
	fs.Bool("refresh", false, "allow fetching again once a location is shown")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
	return fs
}

// Load reads the configuration. Values are taken, in increasing order
// of precedence, from defaults, the config file, a .env file in the
// working directory, LOCATION_* environment variables and fs. dirs are
// searched for config.yaml unless fs names a file. fs may be nil.
func Load(fs *pflag.FlagSet, dirs ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("screen.refresh", false)
	v.SetDefault("screen.toast", 2*time.Second)
	v.SetDefault("provider.kind", ProviderAuto)
	v.SetDefault("provider.static.set", false)
	v.SetDefault("provider.static.latitude", 0.0)
	v.SetDefault("provider.static.longitude", 0.0)
	v.SetDefault("provider.ipgeo.url", "http://ip-api.com/json/")
	v.SetDefault("provider.ipgeo.timeout", 10*time.Second)
	v.SetDefault("permission.granted", false)
	v.SetDefault("permission.answer", "grant")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		bind := map[string]string{
			"provider.kind":  "provider",
			"screen.refresh": "refresh",
			"log.level":      "log-level",
			"log.format":     "log-format",
		}
		for key, name := range bind {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// The defaults suffice without a config file.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderAuto, ProviderFused, ProviderStatic, ProviderIPGeo:
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider.Kind)
	}
	switch strings.ToLower(c.Permission.Answer) {
	case "grant", "deny":
	default:
		return fmt.Errorf("config: permission answer must be grant or deny, got %q", c.Permission.Answer)
	}
	if c.Screen.Toast <= 0 {
		return fmt.Errorf("config: toast duration must be positive, got %v", c.Screen.Toast)
	}
	if s := c.Provider.Static; s.Set {
		if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
			return fmt.Errorf("config: static coordinate out of range: %v, %v", s.Latitude, s.Longitude)
		}
	}
	return nil
}

// GrantOnRequest reports whether the scripted permission dialog grants.
func (c *Config) GrantOnRequest() bool {
	return strings.EqualFold(c.Permission.Answer, "grant")
}

// NewLogger creates a logger writing to w based on the configuration.
func (c *Config) NewLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	switch strings.ToLower(c.Log.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
