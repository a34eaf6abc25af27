// Package responder abstracts the backends a benchmark run can send
// prompts to: OpenAI-compatible APIs, the Anthropic API, and local
// inference servers. All variants satisfy the same Generate contract so
// the retry and pipeline layers never know which backend is in play.
package responder

import "context"

// Request is one generation call. The per-call deadline comes from ctx.
// A negative Temperature leaves the backend's default in place.
type Request struct {
	Input       string
	MaxTokens   int
	Temperature float64
	JSONOnly    bool // ask the backend for a bare JSON object reply
}

// Responder is the capability seam every backend satisfies. A responder
// is constructed once per run; Generate is invoked once per attempt.
type Responder interface {
	Name() string
	Generate(ctx context.Context, req *Request) (string, error)
}
