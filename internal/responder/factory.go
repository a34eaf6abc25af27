package responder

import (
	"fmt"
	"strings"

	"github.com/calderstone/redbench/internal/config"
)

// Name fragments identifying the OpenAI-compatible model family when no
// explicit provider tag is configured.
var openAICompatibleFragments = []string{"gpt", "deepseek"}

// New builds the responder for one configured model. An explicit provider
// tag wins; otherwise the variant is inferred from the config shape and
// model name the way the launcher scripts historically did. An
// unresolvable entry is a ConfigError, surfaced before any record is
// processed.
func New(name string, cfg config.ModelConfig) (Responder, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = inferProvider(cfg)
	}

	switch provider {
	case "local":
		model := strings.TrimSpace(cfg.Path)
		if model == "" {
			model = strings.TrimSpace(cfg.Model)
		}
		if model == "" {
			return nil, &ConfigError{Msg: fmt.Sprintf("responder: model %q: local provider needs a path", name)}
		}
		return NewLocalResponder(cfg.BaseURL, model), nil
	case "openai":
		return NewOpenAIResponder(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "anthropic", "claude":
		return NewClaudeResponder(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "":
		return nil, &ConfigError{Msg: fmt.Sprintf("responder: model %q: cannot determine provider for %q", name, cfg.Model)}
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("responder: model %q: unknown provider %q", name, cfg.Provider)}
	}
}

func inferProvider(cfg config.ModelConfig) string {
	if strings.TrimSpace(cfg.Path) != "" {
		return "local"
	}

	model := strings.ToLower(strings.TrimSpace(cfg.Model))
	for _, frag := range openAICompatibleFragments {
		if strings.Contains(model, frag) {
			return "openai"
		}
	}
	if strings.Contains(model, "claude") {
		return "anthropic"
	}
	return ""
}
