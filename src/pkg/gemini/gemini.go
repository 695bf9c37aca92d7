/*
Package gemini answers llm.Request prompts with Google's Gemini models
through the genai SDK.
*/
package gemini

import (
	"context"
	"errors"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"google.golang.org/genai"

	"erp-dashboard/src/pkg/llm"
)

type Client struct {
	client *genai.Client
	model  string
}

// NewClient fails when apiKey is empty or the SDK refuses the configuration.
func NewClient(ctx context.Context, cfg Config, apiKey string) (client *Client, e *xerr.Error) {
	if apiKey == "" {
		return nil, xerr.NewError(errors.New(EnvAPIKey+" is not set"), "create Gemini client", cfg.Model)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	genaiClient, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, xerr.NewError(err, "create Gemini client", cfg.Model)
	}
	tl.Log(tl.Info, palette.Blue, "%s initialized with model '%s'", "Gemini client", cfg.Model)
	return &Client{client: genaiClient, model: cfg.Model}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, request llm.Request) (response llm.Response, e *xerr.Error) {
	tl.Log(tl.Info, palette.Blue, "%s %s to %s with model '%s'", "Sending", "prompt", "Gemini", c.model)
	startTime := time.Now()

	generateConfig := &genai.GenerateContentConfig{}
	if request.Temperature != nil {
		generateConfig.Temperature = genai.Ptr(float32(*request.Temperature))
	}
	if request.MaxOutputTokens > 0 {
		generateConfig.MaxOutputTokens = int32(request.MaxOutputTokens)
	}
	if request.System != "" {
		generateConfig.SystemInstruction = genai.NewContentFromText(request.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(request.Prompt), generateConfig)
	if err != nil {
		return llm.Response{}, xerr.NewError(err, "Gemini generateContent failed", c.model)
	}

	response.Text = result.Text()
	response.Meta = runMetadata(result, c.model, startTime)
	if request.Temperature != nil {
		response.Meta.Temperature = *request.Temperature
	}
	if response.Text == "" {
		tl.Log(tl.Warning, palette.Yellow, "Gemini returned %s (finish reason: %s)", "no text", finishReason(result))
	}

	tl.Log(
		tl.Detailed, palette.CyanDim, "Tokens in: %v (cached: %v), out: %v (thinking: %v), total: %v",
		response.Meta.TokensIn, response.Meta.TokensCached, response.Meta.TokensOut,
		response.Meta.TokensReasoning, response.Meta.TokensTotal,
	)
	tl.Log(tl.Info1, palette.Green, "%s in %s", "Gemini response completed", time.Since(startTime))
	return response, nil
}

func runMetadata(result *genai.GenerateContentResponse, model string, startTime time.Time) (meta llm.RunMetadata) {
	meta.Provider = "gemini"
	meta.Model = model
	meta.ResponseID = result.ResponseID
	if result.ModelVersion != "" {
		meta.Model = result.ModelVersion
	}
	meta.Status = finishReason(result)

	if usage := result.UsageMetadata; usage != nil {
		meta.TokensIn = int(usage.PromptTokenCount)
		meta.TokensCached = int(usage.CachedContentTokenCount)
		meta.TokensOut = int(usage.CandidatesTokenCount)
		meta.TokensReasoning = int(usage.ThoughtsTokenCount)
		meta.TokensTotal = int(usage.TotalTokenCount)
	}

	meta.StartedAt = startTime.UnixMilli()
	meta.FinishedAt = time.Now().UnixMilli()
	meta.Elapsed = meta.FinishedAt - meta.StartedAt
	return meta
}

func finishReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 || result.Candidates[0] == nil {
		return ""
	}
	return string(result.Candidates[0].FinishReason)
}
