package openai

import (
	"context"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/llm"
	"erp-dashboard/src/pkg/util"
)

/*
Generate sends request via the Responses API and returns the assistant text.

Behavior:
1) POST /v1/responses
2) If status is not terminal, poll GET /v1/responses/{id} until it is:
  - "completed" -> success (green)
  - "failed"|"cancelled"|"expired" -> purple, returns *xerr.Error

3) Log token usage (when available).
The full text is not logged here; callers print it if they want to.
*/
func (c *Client) Generate(ctx context.Context, request llm.Request) (response llm.Response, e *xerr.Error) {
	if c.apiKey == "" {
		return llm.Response{}, xerr.NewError(errMissingKey, "OpenAI request refused", c.cfg.Model)
	}
	tl.Log(tl.Info, palette.Blue, "%s %s to %s with model '%s'", "Sending", "prompt", "OpenAI Responses API", c.cfg.Model)
	startTime := time.Now()

	payload := requestPayload{
		Model:        c.cfg.Model,
		Instructions: request.System,
		Input:        []InputItem{{Role: RoleUser, Content: request.Prompt}},
		Temperature:  request.Temperature,
		Background:   c.cfg.Background,
		Text:         util.Ptr(TextAsPlain(TextVerbosityMedium)),
	}
	if request.MaxOutputTokens > 0 {
		payload.MaxOutputTokens = util.Ptr(request.MaxOutputTokens)
	}
	if c.cfg.ReasoningEffort != "" {
		payload.Reasoning = &Reasoning{Effort: util.Ptr(c.cfg.ReasoningEffort)}
		payload.Temperature = nil
	}

	initial, e := c.createResponse(ctx, payload)
	if e != nil {
		return llm.Response{}, e
	}

	var finalResp responseObject
	switch initial.Status {
	case "", StatusCompleted, StatusIncomplete:
		finalResp = initial
	default:
		tl.Log(tl.Info, palette.Cyan, "%s current status is '%s' id - '%s' (polling every %s)...", "Waiting for completion,", initial.Status, initial.ID, c.pollInterval)
		finalResp, e = c.waitForResponseCompletion(ctx, initial.ID)
		if e != nil {
			return llm.Response{Meta: llm.RunMetadata{Provider: c.Name(), ResponseID: initial.ID}}, e
		}
	}

	response.Text = extractOutputText(&finalResp)
	response.Meta = ExtractRunMetadata(finalResp, startTime)

	if finalResp.Usage != nil {
		tl.Log(
			tl.Detailed, palette.CyanDim,
			"Tokens in: %v (cached: %v), out: %v (reasoning: %v), total: %v",
			response.Meta.TokensIn, response.Meta.TokensCached, response.Meta.TokensOut,
			response.Meta.TokensReasoning, response.Meta.TokensTotal,
		)
	} else {
		tl.Log(tl.Detailed, palette.PurpleDim, "Usage data is %s", "not available")
	}

	tl.Log(tl.Info1, palette.Green, "%s in %s for the response '%s'", "Response completed", time.Since(startTime), finalResp.ID)
	return response, nil
}
