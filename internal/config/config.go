package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the RivalScope server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Providers ProvidersConfig
	Analysis  AnalysisConfig
	Watchdog  WatchdogConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// ProvidersConfig carries vendor endpoints and models. API keys are not
// configured here: they live in the provider_credentials table, per tenant.
type ProvidersConfig struct {
	CallTimeout time.Duration
	OpenAI      OpenAIConfig
	Anthropic   AnthropicConfig
	Gemini      GeminiConfig
	Perplexity  PerplexityConfig
}

type OpenAIConfig struct {
	BaseURL string
	Model   string
}

type AnthropicConfig struct {
	BaseURL    string
	APIVersion string
	Model      string
}

type GeminiConfig struct {
	BaseURL string
	Model   string
}

type PerplexityConfig struct {
	BaseURL string
	Model   string
}

type AnalysisConfig struct {
	// MaxParallel bounds concurrent competitor analysis within one job.
	// 1 keeps the strictly sequential default.
	MaxParallel     int
	InsightMaxBytes int
	ProgressTTL     time.Duration
}

type WatchdogConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("RIVALSCOPE_PORT", 8080),
			Env:             envString("RIVALSCOPE_ENV", "development"),
			RateLimitPerMin: envInt("RIVALSCOPE_RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Providers: ProvidersConfig{
			CallTimeout: envDuration("PROVIDER_CALL_TIMEOUT", 60*time.Second),
			OpenAI: OpenAIConfig{
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Anthropic: AnthropicConfig{
				BaseURL:    envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				APIVersion: envString("ANTHROPIC_API_VERSION", "2023-06-01"),
				Model:      envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
			Gemini: GeminiConfig{
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
				Model:   envString("GEMINI_MODEL", "gemini-2.0-flash"),
			},
			Perplexity: PerplexityConfig{
				BaseURL: envString("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
				Model:   envString("PERPLEXITY_MODEL", "sonar"),
			},
		},
		Analysis: AnalysisConfig{
			MaxParallel:     envInt("ANALYSIS_MAX_PARALLEL", 1),
			InsightMaxBytes: envInt("ANALYSIS_INSIGHT_MAX_BYTES", 2000),
			ProgressTTL:     envDuration("ANALYSIS_PROGRESS_TTL", 30*time.Minute),
		},
		Watchdog: WatchdogConfig{
			Interval:   envDuration("WATCHDOG_INTERVAL", time.Minute),
			StaleAfter: envDuration("WATCHDOG_STALE_AFTER", 30*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	for name, base := range map[string]string{
		"OPENAI_BASE_URL":     c.Providers.OpenAI.BaseURL,
		"ANTHROPIC_BASE_URL":  c.Providers.Anthropic.BaseURL,
		"GEMINI_BASE_URL":     c.Providers.Gemini.BaseURL,
		"PERPLEXITY_BASE_URL": c.Providers.Perplexity.BaseURL,
	} {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("%s must start with http:// or https://, got %q", name, base)
		}
	}

	if c.Providers.CallTimeout <= 0 {
		return fmt.Errorf("PROVIDER_CALL_TIMEOUT must be positive")
	}

	if c.Analysis.MaxParallel < 1 {
		return fmt.Errorf("ANALYSIS_MAX_PARALLEL must be at least 1")
	}
	if c.Analysis.InsightMaxBytes < 100 {
		return fmt.Errorf("ANALYSIS_INSIGHT_MAX_BYTES must be at least 100")
	}

	if c.Watchdog.Interval <= 0 {
		return fmt.Errorf("WATCHDOG_INTERVAL must be positive")
	}
	if c.Watchdog.StaleAfter < c.Watchdog.Interval {
		return fmt.Errorf("WATCHDOG_STALE_AFTER must be at least WATCHDOG_INTERVAL")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
