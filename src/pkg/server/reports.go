package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"erp-dashboard/src/pkg/dashboard"
	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/report"
)

// loadQuery reads company and dates from the query string, filling missing dates.
func (s *Server) loadQuery(c echo.Context) (erp.Query, bool) {
	q := queryParams(c)
	if q.Company == "" {
		return q, false
	}
	return dashboard.DefaultQuery(q.Company, q.StartDate, q.EndDate, s.now()), true
}

func (s *Server) report(c echo.Context) error {
	id, ok := report.ParseID(c.Param("id"))
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Unknown report")
	}
	q, ok := s.loadQuery(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Missing company parameter")
	}

	view := s.deps.Dashboard.LoadView(c.Request().Context(), q)
	if id == report.IDOverview {
		return c.JSON(http.StatusOK, map[string]any{"overview": view.Overview, "errors": view.Errors})
	}
	normalized := view.Reports[id]
	if normalized == nil {
		return errorJSON(c, http.StatusNotFound, "Report not available")
	}
	return c.JSON(http.StatusOK, normalized)
}

func (s *Server) dashboard(c echo.Context) error {
	q, ok := s.loadQuery(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Missing company parameter")
	}
	return c.JSON(http.StatusOK, s.deps.Dashboard.LoadView(c.Request().Context(), q))
}
