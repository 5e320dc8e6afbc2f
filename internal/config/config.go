package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	AlphaGenome AlphaGenomeConfig `mapstructure:"alphagenome"`
	Annotation  AnnotationConfig  `mapstructure:"annotation"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

func (s ServerConfig) Addr() string { return s.Host + ":" + s.Port }

type AlphaGenomeConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	APIKeyHeader string        `mapstructure:"api_key_header"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type AnnotationConfig struct {
	// GTFSource is a local path or http(s) URL of a GENCODE GTF, optionally gzipped.
	// Empty disables gene symbol lookup.
	GTFSource string `mapstructure:"gtf_source"`
}

// OpenAIConfig configures the optional result narration. An empty APIKey disables it.
type OpenAIConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	APIEndpoint string `mapstructure:"endpoint"`
	Model       string `mapstructure:"model"`
	APIVersion  string `mapstructure:"api_version"`
}

func (o OpenAIConfig) Enabled() bool { return o.APIKey != "" }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "GW"

var stderr io.Writer = os.Stderr

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8501")
	v.SetDefault("server.host", "0.0.0.0")
	// predictions over 1 Mb windows can take minutes
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "6m")
	v.SetDefault("server.session_ttl", "2h")

	v.SetDefault("alphagenome.endpoint", "https://alphagenome.googleapis.com/graphql")
	v.SetDefault("alphagenome.api_key_header", "X-Goog-Api-Key")
	v.SetDefault("alphagenome.timeout", "5m")

	v.SetDefault("annotation.gtf_source", "")

	v.SetDefault("openai.provider", "openai")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.api_version", "2024-06-01")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads defaults, then the optional config file, then GW_* environment
// variables (GW_SERVER_PORT, GW_ALPHAGENOME_ENDPOINT, ...).
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully", "file", file, "endpoint", cfg.AlphaGenome.Endpoint)
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.AlphaGenome.Endpoint == "" {
		errs = append(errs, errors.New("alphagenome.endpoint is required"))
	}
	if c.AlphaGenome.APIKeyHeader == "" {
		errs = append(errs, errors.New("alphagenome.api_key_header is required"))
	}
	if c.AlphaGenome.Timeout <= 0 {
		errs = append(errs, errors.New("alphagenome.timeout must be positive"))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl must be positive"))
	}
	switch c.OpenAI.Provider {
	case "openai", "azure":
	default:
		errs = append(errs, fmt.Errorf("openai.provider %q is not one of openai, azure", c.OpenAI.Provider))
	}
	return errors.Join(errs...)
}

// Logger builds the process logger from the log section.
func (l LogConfig) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(stderr, opts))
	}
	return slog.New(slog.NewTextHandler(stderr, opts))
}
