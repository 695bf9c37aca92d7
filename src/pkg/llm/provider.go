/*
Package llm is the seam between the dashboard and whichever hosted model
answers its questions. Providers live in their own packages (openai, gemini)
and satisfy Provider.
*/
package llm

import (
	"context"

	"github.com/tuumbleweed/xerr"
)

// Request is one single-turn prompt.
type Request struct {
	System          string   `json:"system,omitempty"`
	Prompt          string   `json:"prompt"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
}

type Response struct {
	Text string      `json:"text"`
	Meta RunMetadata `json:"meta"`
}

type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, request Request) (response Response, e *xerr.Error)
}

// RunMetadata captures how a response was generated, for logs and exports.
type RunMetadata struct {
	Provider      string `json:"provider"`
	ResponseID    string `json:"response_id,omitempty"`
	ResponseURL   string `json:"response_url,omitempty"`
	Model         string `json:"model"`
	ModelSnapshot string `json:"model_snapshot,omitempty"` // "2025-08-07" when the model name carries one
	Status        string `json:"status,omitempty"`

	Temperature float64 `json:"temperature"`

	TokensIn        int `json:"tokens_in"`
	TokensCached    int `json:"tokens_cached"`
	TokensOut       int `json:"tokens_out"`
	TokensReasoning int `json:"tokens_reasoning"`
	TokensTotal     int `json:"tokens_total"`

	StartedAt  int64 `json:"started_at"`
	FinishedAt int64 `json:"finished_at"`
	Elapsed    int64 `json:"elapsed"` // milliseconds
}
