package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"golang.org/x/sync/errgroup"

	"erp-dashboard/src/pkg/dashboard"
	"erp-dashboard/src/pkg/insights"
	"erp-dashboard/src/pkg/report"
)

type rangeRequest struct {
	Company   string `json:"company"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type chatRequest struct {
	Prompt        string          `json:"prompt"`
	FinancialData json.RawMessage `json:"financialData"`
	Company       string          `json:"company"`
}

func (s *Server) insights(c echo.Context) error {
	var request rangeRequest
	if err := c.Bind(&request); err != nil {
		tl.Log(tl.Warning, palette.Yellow, "Insights API error: %s", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate insights")
	}
	if strings.TrimSpace(request.Company) == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing company parameter")
	}

	ctx := c.Request().Context()
	q := dashboard.DefaultQuery(strings.TrimSpace(request.Company), request.StartDate, request.EndDate, s.now())
	result := s.deps.Dashboard.Load(ctx, q)

	text, e := s.deps.Insights.FinancialInsights(ctx, q.Company, result.Bundle)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Insights API error: %s", e)
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate insights")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"insights": text,
		"sections": insights.ParseSections(text),
	})
}

/*
summary answers with the executive summary plus the revenue trend and cash
position reads, generated in parallel. Each falls back to its canned text on
its own, so the response is always 200 once the company is known.
*/
func (s *Server) summary(c echo.Context) error {
	var request rangeRequest
	if err := c.Bind(&request); err != nil {
		tl.Log(tl.Warning, palette.Yellow, "Summary API error: %s", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate summary")
	}
	if strings.TrimSpace(request.Company) == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing company parameter")
	}

	ctx := c.Request().Context()
	q := dashboard.DefaultQuery(strings.TrimSpace(request.Company), request.StartDate, request.EndDate, s.now())
	result := s.deps.Dashboard.Load(ctx, q)

	var summary, trends, cash string
	var group errgroup.Group
	group.Go(func() error {
		summary = s.deps.Insights.ExecutiveSummary(ctx, result.Bundle)
		return nil
	})
	group.Go(func() error {
		trends = s.deps.Insights.RevenueTrends(ctx, insights.Series(result.Bundle, report.IDPL))
		return nil
	})
	group.Go(func() error {
		cash = s.deps.Insights.CashPosition(ctx, insights.Series(result.Bundle, report.IDCashFlow))
		return nil
	})
	_ = group.Wait()

	return c.JSON(http.StatusOK, map[string]string{"summary": summary, "trends": trends, "cash": cash})
}

func (s *Server) chat(c echo.Context) error {
	var request chatRequest
	if err := c.Bind(&request); err != nil {
		tl.Log(tl.Warning, palette.Yellow, "Chat API error: %s", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate response")
	}
	if strings.TrimSpace(request.Prompt) == "" || emptyJSON(request.FinancialData) {
		return errorJSON(c, http.StatusBadRequest, "Missing prompt or financial data")
	}

	text, e := s.deps.Insights.Chat(c.Request().Context(), request.FinancialData, strings.TrimSpace(request.Prompt), request.Company)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Chat API error: %s", e)
		return errorJSON(c, http.StatusInternalServerError, "Failed to generate response")
	}
	return c.JSON(http.StatusOK, map[string]string{"response": text})
}

// emptyJSON is true for a missing value and for the falsy JSON literals.
func emptyJSON(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", `""`, "0":
		return true
	}
	return false
}
