package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Research   ResearchConfig   `yaml:"research" mapstructure:"research"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ResearchConfig selects the research provider.
type ResearchConfig struct {
	// Provider is one of gemini, perplexity, anthropic, stub.
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PipelineConfig configures the batch orchestrator.
type PipelineConfig struct {
	// Pacing is one of fixed, token_bucket, none.
	Pacing          string  `yaml:"pacing" mapstructure:"pacing"`
	PacingDelayMs   int     `yaml:"pacing_delay_ms" mapstructure:"pacing_delay_ms"`
	RatePerSec      float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst       int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	CallTimeoutSecs int     `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
}

// ExportConfig configures record export.
type ExportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider-native key names are honored alongside the prefixed ones.
	bindings := map[string][]string{
		"gemini.key":     {"ENRICH_GEMINI_KEY", "GEMINI_API_KEY", "API_KEY"},
		"perplexity.key": {"ENRICH_PERPLEXITY_KEY", "PERPLEXITY_API_KEY"},
		"anthropic.key":  {"ENRICH_ANTHROPIC_KEY", "ANTHROPIC_API_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("research.provider", "gemini")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("pipeline.pacing", "fixed")
	v.SetDefault("pipeline.pacing_delay_ms", 500)
	v.SetDefault("pipeline.rate_per_sec", 2.0)
	v.SetDefault("pipeline.rate_burst", 1)
	v.SetDefault("pipeline.call_timeout_secs", 0)
	v.SetDefault("export.format", "xlsx")
	v.SetDefault("export.dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Validate checks that the settings required by mode are present.
// Modes: "enrich" (CLI batch run) and "serve" (HTTP surface).
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "enrich":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Research.Provider {
	case "gemini":
		if c.Gemini.Key == "" {
			errs = append(errs, "gemini.key is required (GEMINI_API_KEY)")
		}
	case "perplexity":
		if c.Perplexity.Key == "" {
			errs = append(errs, "perplexity.key is required (PERPLEXITY_API_KEY)")
		}
	case "anthropic":
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required (ANTHROPIC_API_KEY)")
		}
	case "stub":
	default:
		errs = append(errs, "research.provider must be one of gemini, perplexity, anthropic, stub")
	}

	switch c.Pipeline.Pacing {
	case "", "fixed", "none":
		if c.Pipeline.PacingDelayMs < 0 {
			errs = append(errs, "pipeline.pacing_delay_ms must be >= 0")
		}
	case "token_bucket":
		if c.Pipeline.RatePerSec <= 0 {
			errs = append(errs, "pipeline.rate_per_sec must be > 0")
		}
	default:
		errs = append(errs, "pipeline.pacing must be one of fixed, token_bucket, none")
	}

	if c.Pipeline.CallTimeoutSecs < 0 {
		errs = append(errs, "pipeline.call_timeout_secs must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
