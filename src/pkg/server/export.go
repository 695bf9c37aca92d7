package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/chartimg"
	"erp-dashboard/src/pkg/export"
	"erp-dashboard/src/pkg/report"
)

func (s *Server) export(c echo.Context) error {
	format, ok := export.ParseFormat(c.QueryParam("format"))
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Unsupported export format")
	}
	q, ok := s.loadQuery(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Missing company parameter")
	}

	ctx := c.Request().Context()
	view := s.deps.Dashboard.LoadView(ctx, q)
	data := export.Data{
		Company:     q.Company,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		Bundle:      view.Bundle,
		Reports:     view.Reports,
		GeneratedAt: s.now(),
	}
	if wantsInsights(c.QueryParam("insights")) {
		text, e := s.deps.Insights.FinancialInsights(ctx, q.Company, view.Bundle)
		if e != nil {
			tl.Log(tl.Warning, palette.Yellow, "Export without insights: %s", e)
		} else {
			data.Insights = text
		}
	}

	content, e := export.Render(format, data)
	if e != nil {
		tl.Log(tl.Error, palette.Red, "Export failed: %s", e)
		return errorJSON(c, http.StatusInternalServerError, "Failed to export report")
	}

	filename := export.Filename(q.Company, format, data.GeneratedAt)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, format.ContentType(), content)
}

func wantsInsights(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// chart serves /api/charts/<id>.png.
func (s *Server) chart(c echo.Context) error {
	name, found := strings.CutSuffix(c.Param("file"), ".png")
	if !found {
		return errorJSON(c, http.StatusNotFound, "Unknown chart")
	}
	id, ok := report.ParseID(name)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Unknown chart")
	}
	q, ok := s.loadQuery(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Missing company parameter")
	}

	view := s.deps.Dashboard.LoadView(c.Request().Context(), q)
	normalized := view.Reports[id]
	if normalized == nil {
		return errorJSON(c, http.StatusNotFound, "Report not available")
	}

	var buffer bytes.Buffer
	if e := chartimg.WritePNG(&buffer, normalized.Chart2DData, chartimg.DefaultOptions()); e != nil {
		tl.Log(tl.Error, palette.Red, "Chart render failed: %s", e)
		return errorJSON(c, http.StatusInternalServerError, "Failed to render chart")
	}
	return c.Blob(http.StatusOK, "image/png", buffer.Bytes())
}
