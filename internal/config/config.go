package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Models    map[string]ModelConfig   `yaml:"models,omitempty"`
	Datasets  map[string]DatasetConfig `yaml:"datasets,omitempty"`
	Methods   map[string]string        `yaml:"methods,omitempty"`
	Judge     JudgeConfig              `yaml:"judge,omitempty"`
	Limits    LimitsConfig             `yaml:"limits,omitempty"`
	Storage   StorageConfig            `yaml:"storage,omitempty"`
	OutputDir string                   `yaml:"output_dir,omitempty"`
}

// ModelConfig describes one responder target. Provider is an explicit
// variant tag ("openai", "anthropic", "local"); when empty the variant is
// inferred from Path and the model name.
type ModelConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Path     string `yaml:"path,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

type DatasetConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type JudgeConfig struct {
	Provider   string `yaml:"provider,omitempty"`
	Model      string `yaml:"model,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	PromptFile string `yaml:"prompt_file,omitempty"`
}

// LimitsConfig holds the retry, pacing, and timeout knobs. All durations
// are whole seconds in the config file.
type LimitsConfig struct {
	MaxAttempts         int `yaml:"max_attempts,omitempty"`
	BackoffSeconds      int `yaml:"backoff_seconds,omitempty"`
	JudgeBackoffSeconds int `yaml:"judge_backoff_seconds,omitempty"`
	RecordDelaySeconds  int `yaml:"record_delay_seconds,omitempty"`
	TimeoutSeconds      int `yaml:"timeout_seconds,omitempty"`
	JudgeTimeoutSeconds int `yaml:"judge_timeout_seconds,omitempty"`
	MaxNewTokens        int `yaml:"max_new_tokens,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

func (l LimitsConfig) Backoff() time.Duration {
	return time.Duration(l.BackoffSeconds) * time.Second
}

func (l LimitsConfig) JudgeBackoff() time.Duration {
	return time.Duration(l.JudgeBackoffSeconds) * time.Second
}

func (l LimitsConfig) RecordDelay() time.Duration {
	return time.Duration(l.RecordDelaySeconds) * time.Second
}

func (l LimitsConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

func (l LimitsConfig) JudgeTimeout() time.Duration {
	return time.Duration(l.JudgeTimeoutSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Models == nil {
		cfg.Models = make(map[string]ModelConfig)
	}
	if cfg.Datasets == nil {
		cfg.Datasets = make(map[string]DatasetConfig)
	}
	if cfg.Methods == nil {
		cfg.Methods = make(map[string]string)
	}

	if strings.TrimSpace(cfg.Judge.Provider) == "" {
		cfg.Judge.Provider = "openai"
	}
	if strings.TrimSpace(cfg.Judge.Model) == "" {
		cfg.Judge.Model = "gpt-4o"
	}
	if strings.TrimSpace(cfg.Judge.PromptFile) == "" {
		cfg.Judge.PromptFile = "prompts/eval_prompt.txt"
	}

	if cfg.Limits.MaxAttempts <= 0 {
		cfg.Limits.MaxAttempts = 3
	}
	if cfg.Limits.BackoffSeconds <= 0 {
		cfg.Limits.BackoffSeconds = 5
	}
	if cfg.Limits.JudgeBackoffSeconds <= 0 {
		cfg.Limits.JudgeBackoffSeconds = 3
	}
	// A negative value disables the per-record pause; zero means unset.
	if cfg.Limits.RecordDelaySeconds == 0 {
		cfg.Limits.RecordDelaySeconds = 1
	} else if cfg.Limits.RecordDelaySeconds < 0 {
		cfg.Limits.RecordDelaySeconds = 0
	}
	if cfg.Limits.TimeoutSeconds <= 0 {
		cfg.Limits.TimeoutSeconds = 300
	}
	if cfg.Limits.JudgeTimeoutSeconds <= 0 {
		cfg.Limits.JudgeTimeoutSeconds = 120
	}
	if cfg.Limits.MaxNewTokens <= 0 {
		cfg.Limits.MaxNewTokens = 4096
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = "response"
	}
}

func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	anthropicKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))

	if strings.TrimSpace(cfg.Judge.APIKey) == "" {
		switch providerFamily(cfg.Judge.Provider) {
		case "openai":
			cfg.Judge.APIKey = openaiKey
		case "anthropic":
			cfg.Judge.APIKey = anthropicKey
		}
	}

	for name, m := range cfg.Models {
		if strings.TrimSpace(m.APIKey) != "" {
			continue
		}
		switch providerFamily(m.Provider) {
		case "openai":
			if openaiKey != "" {
				m.APIKey = openaiKey
				cfg.Models[name] = m
			}
		case "anthropic":
			if anthropicKey != "" {
				m.APIKey = anthropicKey
				cfg.Models[name] = m
			}
		}
	}
}

func providerFamily(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "claude" {
		return "anthropic"
	}
	return provider
}
