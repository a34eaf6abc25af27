package responder

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIResponder talks to any OpenAI-compatible chat endpoint, including
// self-hosted gateways selected via a base-URL override.
type OpenAIResponder struct {
	client *openai.Client
	model  string
}

func NewOpenAIResponder(apiKey string, baseURL string, model string) *OpenAIResponder {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	return &OpenAIResponder{
		client: openai.NewClientWithConfig(cfg),
		model:  strings.TrimSpace(model),
	}
}

func (r *OpenAIResponder) Name() string {
	return "openai"
}

func (r *OpenAIResponder) Generate(ctx context.Context, req *Request) (string, error) {
	if r == nil || r.client == nil {
		return "", errors.New("responder: openai: nil client")
	}
	if ctx == nil {
		return "", errors.New("responder: openai: nil context")
	}
	if req == nil {
		return "", errors.New("responder: openai: nil request")
	}

	cr := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Input},
		},
	}
	if req.MaxTokens > 0 {
		cr.MaxTokens = req.MaxTokens
	}
	if req.Temperature >= 0 {
		cr.Temperature = float32(req.Temperature)
	}
	if req.JSONOnly {
		cr.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := r.client.CreateChatCompletion(ctx, cr)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", transient(KindEmpty, errors.New("openai: empty choices"))
	}

	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return transient(KindRateLimit, err)
		case apiErr.HTTPStatusCode == 408:
			return transient(KindTimeout, err)
		default:
			return transient(KindStatus, err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return transient(KindStatus, err)
	}

	return classifyCallError(err)
}
