package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/erp"
)

func (s *Server) companies(c echo.Context) error {
	companies, e := s.deps.ERP.Companies(c.Request().Context())
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Companies %s: %s", "failed", e)
		return c.JSON(http.StatusInternalServerError, []erp.Company{})
	}
	if companies == nil {
		companies = []erp.Company{}
	}
	return c.JSON(http.StatusOK, companies)
}

// statement serves one of the date-ranged reports as the ERP returned it.
func (s *Server) statement(kind erp.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := queryParams(c)
		if q.Company == "" || q.StartDate == "" || q.EndDate == "" {
			return errorJSON(c, http.StatusBadRequest, "Missing required parameters")
		}
		return s.passthrough(c, kind, q)
	}
}

// aging serves receivables or payables; only the company is required.
func (s *Server) aging(kind erp.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := queryParams(c)
		if q.Company == "" {
			return errorJSON(c, http.StatusBadRequest, "Missing company parameter")
		}
		return s.passthrough(c, kind, q)
	}
}

func (s *Server) passthrough(c echo.Context, kind erp.Kind, q erp.Query) error {
	fetched, e := s.deps.ERP.Fetch(c.Request().Context(), kind, q)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "%s API error: %s", kind.Label(), e)
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch "+kind.Label()+" data")
	}
	if fetched == nil {
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, fetched)
}

func queryParams(c echo.Context) erp.Query {
	return erp.Query{
		Company:   strings.TrimSpace(c.QueryParam("company")),
		StartDate: strings.TrimSpace(c.QueryParam("startDate")),
		EndDate:   strings.TrimSpace(c.QueryParam("endDate")),
	}
}
