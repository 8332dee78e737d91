package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete council configuration
type Config struct {
	Council      CouncilConfig      `mapstructure:"council"`
	Backends     BackendsConfig     `mapstructure:"backends"`
	Disagreement DisagreementConfig `mapstructure:"disagreement"`
	Retry        RetryConfig        `mapstructure:"retry"`
	Batch        BatchConfig        `mapstructure:"batch"`
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// CouncilConfig controls which assessors participate and role assignment
type CouncilConfig struct {
	// Active is the ordered list of assessor identifiers participating in
	// analysis and review. The order is the single source of truth for
	// anonymization label assignment; map iteration order is never used.
	Active []string `mapstructure:"active"`
	// Segmenter is the backend identifier used to split contracts into clauses
	Segmenter string `mapstructure:"segmenter"`
	// Arbitrator is the backend identifier that issues the final verdict
	Arbitrator string `mapstructure:"arbitrator"`
}

// BackendConfig describes one upstream model backend
type BackendConfig struct {
	// Model is the upstream model identifier (e.g. "gpt-4o")
	Model string `mapstructure:"model"`
	// APIKeyEnv is the environment variable holding the API key
	APIKeyEnv string `mapstructure:"api_key_env"`
	// BaseURL overrides the provider endpoint (primarily for tests)
	BaseURL string `mapstructure:"base_url"`
	// MaxTokens caps the response length where the provider requires it
	// (Anthropic rejects requests without an explicit max_tokens)
	MaxTokens int `mapstructure:"max_tokens"`
}

// BackendsConfig holds per-provider backend settings
type BackendsConfig struct {
	OpenAI BackendConfig `mapstructure:"openai"`
	Claude BackendConfig `mapstructure:"claude"`
	Gemini BackendConfig `mapstructure:"gemini"`
}

// DisagreementConfig controls when assessor outputs trigger a review round
type DisagreementConfig struct {
	// VarianceThreshold is the population standard deviation of risk scores
	// above which a peer review round is triggered
	VarianceThreshold float64 `mapstructure:"variance_threshold"`
}

// RetryConfig controls the retry executor wrapping every backend call
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int `mapstructure:"max_retries"`
	// BaseDelayMs is the base backoff delay; actual wait = base * 2^attempt
	BaseDelayMs int `mapstructure:"base_delay_ms"`
	// CallTimeoutSeconds bounds a single backend call (0 = unbounded)
	CallTimeoutSeconds int `mapstructure:"call_timeout_seconds"`
}

// BatchConfig controls clause batching in the pipeline driver
type BatchConfig struct {
	// Size is the number of clauses processed concurrently per batch
	Size int `mapstructure:"size"`
	// InterBatchDelayMs is the pause between batches; raise it when the
	// backends start returning 429s
	InterBatchDelayMs int `mapstructure:"inter_batch_delay_ms"`
}

// ServerConfig controls the HTTP report server
type ServerConfig struct {
	// Addr is the listen address for the HTTP server
	Addr string `mapstructure:"addr"`
	// StatsFile is the path of the persisted dashboard statistics
	StatsFile string `mapstructure:"stats_file"`
}

// LoggingConfig controls structured logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Dir is the log directory; empty means stderr
	Dir string `mapstructure:"dir"`
}

// BaseDelay returns the retry base delay as a time.Duration
func (c *RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// CallTimeout returns the per-call timeout as a time.Duration (0 means unbounded)
func (c *RetryConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// InterBatchDelay returns the inter-batch delay as a time.Duration
func (c *BatchConfig) InterBatchDelay() time.Duration {
	return time.Duration(c.InterBatchDelayMs) * time.Millisecond
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Council: CouncilConfig{
			Active:     []string{"openai", "claude", "gemini"},
			Segmenter:  "openai",
			Arbitrator: "gemini",
		},
		Backends: BackendsConfig{
			OpenAI: BackendConfig{
				Model:     "gpt-4o",
				APIKeyEnv: "OPENAI_API_KEY",
			},
			Claude: BackendConfig{
				Model:     "claude-3-haiku-20240307",
				APIKeyEnv: "ANTHROPIC_API_KEY",
				MaxTokens: 4096,
			},
			Gemini: BackendConfig{
				Model:     "gemini-2.5-flash",
				APIKeyEnv: "GOOGLE_API_KEY",
			},
		},
		Disagreement: DisagreementConfig{
			VarianceThreshold: 1.0,
		},
		Retry: RetryConfig{
			MaxRetries:         2,
			BaseDelayMs:        1000,
			CallTimeoutSeconds: 60,
		},
		Batch: BatchConfig{
			Size:              6,
			InterBatchDelayMs: 0, // raise to ~1000 when hitting 429s
		},
		Server: ServerConfig{
			Addr:      ":8000",
			StatsFile: "stats.json",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Council defaults
	viper.SetDefault("council.active", defaults.Council.Active)
	viper.SetDefault("council.segmenter", defaults.Council.Segmenter)
	viper.SetDefault("council.arbitrator", defaults.Council.Arbitrator)

	// Backend defaults
	viper.SetDefault("backends.openai.model", defaults.Backends.OpenAI.Model)
	viper.SetDefault("backends.openai.api_key_env", defaults.Backends.OpenAI.APIKeyEnv)
	viper.SetDefault("backends.claude.model", defaults.Backends.Claude.Model)
	viper.SetDefault("backends.claude.api_key_env", defaults.Backends.Claude.APIKeyEnv)
	viper.SetDefault("backends.claude.max_tokens", defaults.Backends.Claude.MaxTokens)
	viper.SetDefault("backends.gemini.model", defaults.Backends.Gemini.Model)
	viper.SetDefault("backends.gemini.api_key_env", defaults.Backends.Gemini.APIKeyEnv)

	// Disagreement defaults
	viper.SetDefault("disagreement.variance_threshold", defaults.Disagreement.VarianceThreshold)

	// Retry defaults
	viper.SetDefault("retry.max_retries", defaults.Retry.MaxRetries)
	viper.SetDefault("retry.base_delay_ms", defaults.Retry.BaseDelayMs)
	viper.SetDefault("retry.call_timeout_seconds", defaults.Retry.CallTimeoutSeconds)

	// Batch defaults
	viper.SetDefault("batch.size", defaults.Batch.Size)
	viper.SetDefault("batch.inter_batch_delay_ms", defaults.Batch.InterBatchDelayMs)

	// Server defaults
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.stats_file", defaults.Server.StatsFile)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Backend returns the backend settings for the given identifier and whether
// the identifier is known.
func (c *Config) Backend(name string) (BackendConfig, bool) {
	switch name {
	case "openai":
		return c.Backends.OpenAI, true
	case "claude":
		return c.Backends.Claude, true
	case "gemini":
		return c.Backends.Gemini, true
	default:
		return BackendConfig{}, false
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "council")
	}
	// Fall back to ~/.config/council
	home, err := os.UserHomeDir()
	if err != nil {
		return ".council"
	}
	return filepath.Join(home, ".config", "council")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
