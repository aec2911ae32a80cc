package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Geocoding providers understood by the geocode client
const (
	ProviderMapsCo    = "mapsco"
	ProviderNominatim = "nominatim"
)

const envPrefix = "WEATHER_CRAWLER"

var providerBaseURLs = map[string]string{
	ProviderMapsCo:    "https://geocode.maps.co/search",
	ProviderNominatim: "https://nominatim.openstreetmap.org/search",
}

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Geocoding GeocodingConfig
	Forecast  ForecastConfig
	HTTP      HTTPConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            int    `validate:"min=1,max=65535"`
	GinMode         string `validate:"oneof=debug release test"`
	MetricsPath     string `validate:"required,startswith=/"`
	TelemetryPath   string `validate:"omitempty,startswith=/,nefield=MetricsPath"`
	ShutdownTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"` // debug, info, warn, error
	Format string `validate:"oneof=text json pretty"`              // text, json, pretty
}

// GeocodingConfig selects the place search service used at startup
type GeocodingConfig struct {
	Provider string `validate:"oneof=mapsco nominatim"`
	BaseURL  string `validate:"omitempty,url"`
	APIKey   string
}

// ForecastConfig holds Open-Meteo forecast API settings
type ForecastConfig struct {
	BaseURL string `validate:"required,url"`
	Models  string `validate:"required"`
}

// HTTPConfig holds settings shared by the upstream HTTP clients
type HTTPConfig struct {
	Timeout   time.Duration `validate:"gte=0"` // zero disables the client timeout
	UserAgent string        // empty sends weather-crawler/<version>
}

// NewFlagSet returns the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SortFlags = false
	flags.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flags.Int("port", 0, "port for the metrics server (overrides server.port)")
	flags.String("log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	flags.BoolP("version", "v", false, "print version information and exit")
	flags.BoolP("help", "h", false, "show this help")
	return flags
}

// Load reads configuration from .env, config file, environment variables and the
// given flags, in increasing order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	var configFile string
	if flags != nil {
		configFile, _ = flags.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.weather-crawler")
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist unless one was asked for
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 9090)
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("server.metricspath", "/metrics")
	v.SetDefault("server.telemetrypath", "/internal/metrics")
	v.SetDefault("server.shutdowntimeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("geocoding.provider", ProviderMapsCo)
	v.SetDefault("geocoding.baseurl", "")
	v.SetDefault("geocoding.apikey", "")
	v.SetDefault("forecast.baseurl", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("forecast.models", "best_match")
	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("http.useragent", "")
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"server.port": "port",
		"log.level":   "log-level",
	}
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks the loaded values against the struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// GeocodingBaseURL returns the configured search URL or the provider default
func (c *Config) GeocodingBaseURL() string {
	if c.Geocoding.BaseURL != "" {
		return c.Geocoding.BaseURL
	}
	return providerBaseURLs[c.Geocoding.Provider]
}

// NewLogger creates a new slog.Logger based on the configuration
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(c.newHandler(os.Stdout))
}

func (c *Config) newHandler(w io.Writer) slog.Handler {
	level := parseLevel(c.Log.Level)

	switch strings.ToLower(c.Log.Format) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "pretty":
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default: // "text" or anything else
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
