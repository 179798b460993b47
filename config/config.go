// Package config loads shelfpipe settings from flags, environment variables,
// an optional .env file and an optional shelfpipe.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/gaurav-prasanna/shelfpipe/core/fetch"
	"github.com/gaurav-prasanna/shelfpipe/core/llm"
	"github.com/gaurav-prasanna/shelfpipe/core/render"
)

// Fetch backend names.
const (
	BackendFirecrawl = "firecrawl"
	BackendHTTP      = "http"
	BackendBrowser   = "browser"
)

// Config holds all configuration for a run.
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Log      LogConfig      `mapstructure:"log"`
	URLs     []string       `mapstructure:"urls"`
}

// OutputConfig locates the per-URL artifacts and the summary.
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	SummaryPath string `mapstructure:"summary_path"`
}

// FetchConfig selects and configures the scraping backend.
type FetchConfig struct {
	Backend          string        `mapstructure:"backend"`
	FirecrawlBaseURL string        `mapstructure:"firecrawl_base_url"`
	FirecrawlAPIKey  string        `mapstructure:"firecrawl_api_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
	ChromeBin        string        `mapstructure:"chrome_bin"`
}

// LLMConfig selects and configures the chat model.
type LLMConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Temperature   float64       `mapstructure:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxInputWords int           `mapstructure:"max_input_words"`
}

// PostgresConfig enables the optional summary mirror when DSN is set.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"output_dir":      "output.dir",
	"summary_path":    "output.summary_path",
	"backend":         "fetch.backend",
	"provider":        "llm.provider",
	"model":           "llm.model",
	"max_input_words": "llm.max_input_words",
	"log_level":       "log.level",
}

// Load builds a Config. configFile may be empty, in which case shelfpipe.yaml
// is looked up in . and ./config and is optional. Flags that were set on the
// command line override every other source.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("shelfpipe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SHELFPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindCredentials(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv reads ./.env if present. Real environment variables always win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// bindCredentials also accepts the conventional unprefixed key variables.
func bindCredentials(v *viper.Viper) error {
	if err := v.BindEnv("fetch.firecrawl_api_key", "SHELFPIPE_FETCH_FIRECRAWL_API_KEY", "FIRECRAWL_API_KEY"); err != nil {
		return err
	}
	return v.BindEnv("llm.api_key", "SHELFPIPE_LLM_API_KEY", "GROQ_API_KEY")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.summary_path", filepath.Join("output", "summary.xlsx"))

	v.SetDefault("fetch.backend", BackendFirecrawl)
	v.SetDefault("fetch.firecrawl_base_url", fetch.DefaultFirecrawlURL)
	v.SetDefault("fetch.firecrawl_api_key", "")
	v.SetDefault("fetch.timeout", "60s")
	v.SetDefault("fetch.user_agent", "shelfpipe/1.0")
	v.SetDefault("fetch.chrome_bin", "")

	// An empty model or base URL means the provider's own default.
	v.SetDefault("llm.provider", llm.ProviderGroq)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.max_input_words", 0)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.table", "product_rows")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("urls", []string{})
}

func validate(cfg *Config) error {
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if cfg.Output.SummaryPath == "" {
		return fmt.Errorf("summary path must not be empty")
	}
	ext := strings.ToLower(filepath.Ext(cfg.Output.SummaryPath))
	if !slices.Contains(render.SummaryFormats, ext) {
		return fmt.Errorf("summary path %q must end in one of %s", cfg.Output.SummaryPath, strings.Join(render.SummaryFormats, ", "))
	}

	switch cfg.Fetch.Backend {
	case BackendFirecrawl, BackendHTTP, BackendBrowser:
	default:
		return fmt.Errorf("fetch backend must be %s, %s or %s, got: %s", BackendFirecrawl, BackendHTTP, BackendBrowser, cfg.Fetch.Backend)
	}

	switch cfg.LLM.Provider {
	case llm.ProviderGroq, llm.ProviderOllama:
	default:
		return fmt.Errorf("llm provider must be %s or %s, got: %s", llm.ProviderGroq, llm.ProviderOllama, cfg.LLM.Provider)
	}
	if cfg.LLM.MaxInputWords < 0 {
		return fmt.Errorf("max_input_words must not be negative, got: %d", cfg.LLM.MaxInputWords)
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", cfg.Log.Format)
	}
	return nil
}
