// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the skillbench configuration.
type Config struct {
	Agent     AgentConfig     `toml:"agent"`
	LLM       LLMConfig       `toml:"llm"`
	Storage   StorageConfig   `toml:"storage"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Eval      EvalConfig      `toml:"eval"`
}

// AgentConfig contains workspace and context assembly settings.
type AgentConfig struct {
	Workspace     string   `toml:"workspace"`      // Template tree copied into a fresh run directory
	SkillsDir     string   `toml:"skills_dir"`     // Skills root, relative to the workspace
	ContextFiles  []string `toml:"context_files"`  // Generic context files, order preserved
	PersonaFiles  []string `toml:"persona_files"`  // Persona files, order preserved
	MaxSteps      int      `toml:"max_steps"`      // Agent loop step bound (default 20)
	ContextBudget int      `toml:"context_budget"` // Character budget per bundle (default 200000)
}

// LLMConfig contains LLM provider settings.
type LLMConfig struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	APIKey       string `toml:"api_key"`
	APIKeyEnv    string `toml:"api_key_env"`
	MaxTokens    int    `toml:"max_tokens"`
	BaseURL      string `toml:"base_url"`      // Custom API endpoint (OpenRouter, LiteLLM, Ollama)
	MaxRetries   int    `toml:"max_retries"`   // Max retry attempts (default 5)
	RetryBackoff string `toml:"retry_backoff"` // Max backoff duration (default "60s")
}

// StorageConfig contains session recording settings.
type StorageConfig struct {
	Path            string `toml:"path"`             // Base directory for session files
	PersistSessions bool   `toml:"persist_sessions"` // false = no session files written
}

// TelemetryConfig contains OTLP export settings.
type TelemetryConfig struct {
	Enabled     bool              `toml:"enabled"`
	Endpoint    string            `toml:"endpoint"`     // OTLP endpoint (e.g., localhost:4317)
	Protocol    string            `toml:"protocol"`     // grpc (default) or http
	Insecure    bool              `toml:"insecure"`     // Disable TLS (default false)
	ServiceName string            `toml:"service_name"` // Reported service.name (default "skillbench")
	Headers     map[string]string `toml:"headers"`      // Auth headers (e.g., x-honeycomb-team)
}

// EvalConfig contains eval harness settings.
type EvalConfig struct {
	Cases      string `toml:"cases"`       // JSONL case file
	RunnerBin  string `toml:"runner_bin"`  // Runner binary; defaults to the current executable
	ExcerptLen int    `toml:"excerpt_len"` // Final-text excerpt length in the report (default 400)
}

// Defaults applied when the config file omits a value.
const (
	DefaultMaxSteps      = 20
	DefaultContextBudget = 200000
	DefaultExcerptLen    = 400
)

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Agent: AgentConfig{
			SkillsDir:     "skills",
			MaxSteps:      DefaultMaxSteps,
			ContextBudget: DefaultContextBudget,
		},
		LLM: LLMConfig{
			MaxTokens: 4096,
		},
		Storage: StorageConfig{
			Path:            "~/.local/skillbench",
			PersistSessions: true,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: "skillbench",
		},
		Eval: EvalConfig{
			ExcerptLen: DefaultExcerptLen,
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Resolve locates and loads the config file. Order: explicit path,
// skillbench.toml in the current directory, ~/.config/skillbench/.
// A missing file is not an error; defaults apply.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, "skillbench.toml")
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "skillbench", "skillbench.toml")
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.Agent.SkillsDir == "" {
		c.Agent.SkillsDir = "skills"
	}
	if c.Agent.MaxSteps <= 0 {
		c.Agent.MaxSteps = DefaultMaxSteps
	}
	if c.Agent.ContextBudget <= 0 {
		c.Agent.ContextBudget = DefaultContextBudget
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.Eval.ExcerptLen <= 0 {
		c.Eval.ExcerptLen = DefaultExcerptLen
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "skillbench"
	}
}

// GetAPIKey returns the API key: explicit config value first, then the
// configured environment variable, then the provider's default env var.
func (c *Config) GetAPIKey() string {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	envVar := c.LLM.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(c.LLM.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// DefaultAPIKeyEnv returns the default environment variable name for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	case "mistral":
		return "MISTRAL_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return ""
	}
}

// StoragePath expands a leading ~ in the storage path.
func (c *Config) StoragePath() string {
	p := c.Storage.Path
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
