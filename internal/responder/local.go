package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultLocalBaseURL = "http://localhost:11434"

// LocalResponder generates against an Ollama-compatible inference server
// on the same machine. The server keeps the model resident, so the
// expensive load is paid once per run; decoding is deterministic
// (temperature 0, bounded output length).
type LocalResponder struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewLocalResponder(baseURL string, model string) *LocalResponder {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultLocalBaseURL
	}

	return &LocalResponder{
		httpClient: &http.Client{},
		baseURL:    base,
		model:      strings.TrimSpace(model),
	}
}

func (r *LocalResponder) Name() string {
	return "local"
}

type localGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type localGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (r *LocalResponder) Generate(ctx context.Context, req *Request) (string, error) {
	if r == nil || r.httpClient == nil {
		return "", errors.New("responder: local: nil client")
	}
	if ctx == nil {
		return "", errors.New("responder: local: nil context")
	}
	if req == nil {
		return "", errors.New("responder: local: nil request")
	}

	body := localGenerateRequest{
		Model:  r.model,
		Prompt: req.Input,
		Stream: false,
		Options: map[string]any{
			"temperature": 0,
		},
	}
	if req.MaxTokens > 0 {
		body.Options["num_predict"] = req.MaxTokens
	}
	if req.JSONOnly {
		body.Format = "json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("responder: local: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("responder: local: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyCallError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyCallError(err)
	}

	if resp.StatusCode != http.StatusOK {
		kind := KindStatus
		if resp.StatusCode == http.StatusTooManyRequests {
			kind = KindRateLimit
		}
		return "", transient(kind, fmt.Errorf("local: %s: %s", resp.Status, strings.TrimSpace(string(raw))))
	}

	var out localGenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", transient(KindRequest, fmt.Errorf("local: decode response: %w", err))
	}

	// Completion-style servers echo the prompt; keep only the new suffix.
	text := out.Response
	if strings.HasPrefix(text, req.Input) {
		text = text[len(req.Input):]
	}
	return strings.TrimSpace(text), nil
}
