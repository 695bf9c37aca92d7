package openai

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/llm"
)

var errMissingKey = errors.New(EnvAPIKey + " is not set")

/*
ExtractRunMetadata turns the final response object into llm.RunMetadata
(ids, model snapshot, token usage and timing).
*/
func ExtractRunMetadata(resp responseObject, startTime time.Time) (meta llm.RunMetadata) {
	tl.Log(tl.Verbose, palette.Blue, "%s for response_id='%s' status='%s'", "Building run metadata", resp.ID, resp.Status)

	meta.Provider = "openai"
	meta.ResponseID = resp.ID
	meta.Status = resp.Status
	meta.Model, meta.ModelSnapshot = ParseModelSnapshot(resp.Model)
	meta.Temperature = resp.Temperature

	if resp.Usage != nil {
		meta.TokensIn = resp.Usage.InputTokens
		meta.TokensOut = resp.Usage.OutputTokens
		meta.TokensTotal = resp.Usage.TotalTokens

		if resp.Usage.InputTokensDetails != nil {
			meta.TokensCached = resp.Usage.InputTokensDetails.CachedTokens
		}
		if resp.Usage.OutputTokensDetails != nil {
			meta.TokensReasoning = resp.Usage.OutputTokensDetails.ReasoningTokens
		}
	}

	// Timing: use startTime instead of CreatedAt (they truncate milliseconds) FinishedAt is "now".
	meta.StartedAt = startTime.UnixMilli()
	meta.FinishedAt = time.Now().UnixMilli()
	meta.Elapsed = meta.FinishedAt - meta.StartedAt

	if meta.ResponseID != "" {
		meta.ResponseURL = fmt.Sprintf("https://platform.openai.com/logs/%s", meta.ResponseID)
	}
	return meta
}

/*
ParseModelSnapshot splits a full model string into (base, snapshot).

Behavior:
  - If the string ends with a valid YYYY-MM-DD snapshot (e.g., "gpt-4o-mini-2024-07-18"),
    it returns ("gpt-4o-mini", "2024-07-18").
  - If no valid snapshot is found, it returns (model, "").

Examples:

	"gpt-4o-mini-2024-07-18" -> ("gpt-4o-mini", "2024-07-18")
	"gpt-4o-mini"            -> ("gpt-4o-mini", "")
	"gpt-4o-mini-rc1"        -> ("gpt-4o-mini-rc1", "")
*/
func ParseModelSnapshot(model string) (base string, snapshot string) {
	m := strings.TrimSpace(model)
	if len(m) < 11 || m[len(m)-11] != '-' {
		return m, ""
	}
	tail := m[len(m)-10:]
	if _, err := time.Parse(time.DateOnly, tail); err != nil {
		return m, ""
	}
	return m[:len(m)-11], tail
}
