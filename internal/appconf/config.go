// Package appconf loads the service configuration from defaults, an optional
// YAML file, a .env file and TIMBER_* environment variables.
package appconf

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSourceURL is the public Mississippi stumpage price CSV.
const DefaultSourceURL = "https://raw.githubusercontent.com/azd169/timber_prices/main/ms_stumpage.csv"

const envPrefix = "TIMBER"

// Config holds all the configuration settings for the Application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Storage StorageConfig `mapstructure:"storage"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// DataConfig describes where the stumpage CSV comes from and how often it is re-read.
type DataConfig struct {
	SourceURL    string        `mapstructure:"source_url"`
	RefreshCron  string        `mapstructure:"refresh_cron"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

type HTTPConfig struct {
	RateLimit   int      `mapstructure:"rate_limit"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	AdminKeys   []string `mapstructure:"admin_keys"` // keys accepted by the manual refresh endpoint
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
}

// Environment returns the parsed server.env value.
func (c Config) Environment() Environment {
	return EnvFlagToEnvironment(c.Server.Env)
}

// LogLevel returns the slog level for logging.level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks values that would otherwise fail much later at runtime.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Data.SourceURL) == "" {
		return errors.New("data.source_url is required")
	}
	if c.Data.FetchTimeout <= 0 {
		return errors.New("data.fetch_timeout must be positive")
	}
	if c.Storage.SQLitePath == "" {
		return errors.New("storage.sqlite_path is required")
	}
	if c.Environment() == Test && c.Storage.SQLitePath != ":memory:" {
		return fmt.Errorf("storage.sqlite_path must be :memory: in the test environment, got %q", c.Storage.SQLitePath)
	}
	return nil
}

// Load reads the configuration. When path is empty, ./config/timberprices.yaml is
// used if present; a missing file is not an error. Environment variables
// (TIMBER_SERVER_PORT, TIMBER_DATA_SOURCE_URL, ...) override file values.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("timberprices")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.env", "development")

	v.SetDefault("data.source_url", DefaultSourceURL)
	v.SetDefault("data.refresh_cron", "@every 6h")
	v.SetDefault("data.fetch_timeout", 30*time.Second)

	v.SetDefault("storage.sqlite_path", "timberprices.db")

	v.SetDefault("http.rate_limit", 100)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.admin_keys", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
