/*
Package insights asks the configured model about a company's financial data
and turns the markdown it answers with into typed sections.
*/
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/llm"
	"erp-dashboard/src/pkg/report"
	"erp-dashboard/src/pkg/util"
)

const truncationMarker = "\n... (truncated)"

type Service struct {
	provider        llm.Provider
	maxContextBytes int
	timeout         time.Duration
}

func NewService(provider llm.Provider, cfg llm.Config) *Service {
	return &Service{
		provider:        provider,
		maxContextBytes: cfg.MaxContextBytes,
		timeout:         time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Provider is the model backend in use, nil when none is configured.
func (s *Service) Provider() llm.Provider {
	return s.provider
}

func (s *Service) generate(ctx context.Context, prompt string, g generation) (text string, e *xerr.Error) {
	if s.provider == nil {
		return "", xerr.NewError(fmt.Errorf("no LLM provider configured"), "generate", nil)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, e := s.provider.Generate(ctx, llm.Request{
		System:          systemPrompt,
		Prompt:          prompt,
		Temperature:     util.Ptr(g.temperature),
		MaxOutputTokens: g.maxOutputTokens,
	})
	if e != nil {
		return "", e
	}
	return strings.TrimSpace(response.Text), nil
}

// FinancialInsights is the five-section analysis shown on the insights view.
func (s *Service) FinancialInsights(ctx context.Context, company string, data any) (text string, e *xerr.Error) {
	tl.Log(tl.Notice, palette.BlueBold, "%s for '%s' with %s", "Generating financial insights", company, s.providerName())
	text, e = s.generate(ctx, fmt.Sprintf(insightsPrompt, company, s.DataContext(data)), insightsGeneration)
	if e != nil {
		return "", e
	}
	tl.Log(tl.Notice1, palette.GreenBold, "%s for '%s' (%s chars)", "Generated financial insights", company, len(text))
	return text, nil
}

// ExecutiveSummary never fails; the fallback sentence is returned instead.
func (s *Service) ExecutiveSummary(ctx context.Context, data any) string {
	text, e := s.generate(ctx, fmt.Sprintf(summaryPrompt, s.DataContext(data)), summaryGeneration)
	if e != nil || text == "" {
		tl.Log(tl.Warning, palette.Yellow, "Executive summary %s: %v", "failed", e)
		return FallbackSummary
	}
	return text
}

func (s *Service) RevenueTrends(ctx context.Context, revenue map[string]float64) string {
	text, e := s.generate(ctx, fmt.Sprintf(revenuePrompt, s.DataContext(revenue)), trendGeneration)
	if e != nil || text == "" {
		tl.Log(tl.Warning, palette.Yellow, "Revenue trend analysis %s: %v", "failed", e)
		return FallbackTrends
	}
	return text
}

func (s *Service) CashPosition(ctx context.Context, cash map[string]float64) string {
	text, e := s.generate(ctx, fmt.Sprintf(cashPrompt, s.DataContext(cash)), cashGeneration)
	if e != nil || text == "" {
		tl.Log(tl.Warning, palette.Yellow, "Cash position analysis %s: %v", "failed", e)
		return FallbackCash
	}
	return text
}

// Chat answers one free-form question about data.
func (s *Service) Chat(ctx context.Context, data any, question, company string) (text string, e *xerr.Error) {
	tl.Log(tl.Info, palette.Blue, "%s for '%s': %s", "Answering question", company, question)
	return s.generate(ctx, fmt.Sprintf(chatPrompt, company, s.DataContext(data), question), chatGeneration)
}

/*
DataContext is data as indented JSON, cut to the configured size so a large
ledger cannot blow the model's context window. A string is used as-is.
*/
func (s *Service) DataContext(data any) string {
	var dataContext string
	switch v := data.(type) {
	case string:
		dataContext = v
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err == nil {
			data = decoded
		}
		dataContext = marshalIndent(data)
	default:
		dataContext = marshalIndent(data)
	}
	return truncate(dataContext, s.maxContextBytes)
}

func marshalIndent(data any) string {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprint(data)
	}
	return string(encoded)
}

func truncate(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}

func (s *Service) providerName() string {
	if s.provider == nil {
		return "no provider"
	}
	return s.provider.Name() + "/" + s.provider.Model()
}

/*
Series reads a label -> value map off an overview card, the input
RevenueTrends and CashPosition expect. Duplicate labels are summed.
*/
func Series(bundle *erp.Bundle, id report.ID) map[string]float64 {
	series := map[string]float64{}
	for _, card := range report.Overview(bundle) {
		if card.ID != id {
			continue
		}
		for i, value := range card.Values {
			label := fmt.Sprintf("#%d", i+1)
			if i < len(card.Labels) && card.Labels[i] != "" {
				label = card.Labels[i]
			}
			series[label] += value
		}
	}
	return series
}
