package responder

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudeMaxTokens = 4096

// ClaudeResponder talks to the Anthropic messages API. Retries are
// handled by the pipeline's retry driver, so the SDK's own retry loop is
// disabled.
type ClaudeResponder struct {
	client anthropic.Client
	model  string
}

func NewClaudeResponder(apiKey string, baseURL string, model string) *ClaudeResponder {
	opts := make([]option.RequestOption, 0, 3)
	if v := strings.TrimSpace(apiKey); v != "" {
		opts = append(opts, option.WithAPIKey(v))
	}
	if v := strings.TrimSpace(baseURL); v != "" {
		opts = append(opts, option.WithBaseURL(sdkBaseURL(v)))
	}
	opts = append(opts, option.WithMaxRetries(0))

	return &ClaudeResponder{
		client: anthropic.NewClient(opts...),
		model:  strings.TrimSpace(model),
	}
}

func (r *ClaudeResponder) Name() string {
	return "anthropic"
}

func (r *ClaudeResponder) Generate(ctx context.Context, req *Request) (string, error) {
	if r == nil {
		return "", errors.New("responder: claude: nil responder")
	}
	if ctx == nil {
		return "", errors.New("responder: claude: nil context")
	}
	if req == nil {
		return "", errors.New("responder: claude: nil request")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Input)),
		},
	}
	if req.Temperature >= 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.JSONOnly {
		// The messages API has no JSON response mode.
		params.System = []anthropic.TextBlockParam{
			{Text: "Reply with only a valid JSON object. No prose, no code fences."},
		}
	}

	msg, err := r.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyClaudeError(err)
	}
	if msg == nil {
		return "", transient(KindEmpty, errors.New("claude: nil message"))
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		text := block.AsText()
		sb.WriteString(text.Text)
	}
	return sb.String(), nil
}

func classifyClaudeError(err error) error {
	if err == nil {
		return nil
	}

	var sdkErr *anthropic.Error
	if errors.As(err, &sdkErr) {
		switch {
		case sdkErr.StatusCode == 429:
			return transient(KindRateLimit, err)
		case sdkErr.StatusCode == 408:
			return transient(KindTimeout, err)
		default:
			return transient(KindStatus, err)
		}
	}

	return classifyCallError(err)
}

// sdkBaseURL strips a trailing /v1 so overrides written in the
// OpenAI-compatible convention still point at the right place.
func sdkBaseURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return strings.TrimSuffix(base, "/v1")
}
