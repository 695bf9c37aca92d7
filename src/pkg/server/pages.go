package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"erp-dashboard/src/pkg/dashboard"
	echomw "erp-dashboard/src/pkg/echo-middleware"
	"erp-dashboard/src/pkg/web"
)

func (s *Server) loginPage(c echo.Context) error {
	return c.Render(http.StatusOK, web.PageLogin, web.PageData{Title: s.deps.Title})
}

func (s *Server) dashboardPage(c echo.Context) error {
	q := dashboard.DefaultQuery("", "", "", s.now())
	data := web.PageData{
		Title:          s.deps.Title,
		RefreshMinutes: dashboard.Cfg.RefreshMinutes,
		DefaultStart:   q.StartDate,
		DefaultEnd:     q.EndDate,
		Nav:            web.Navigation(),
		ConfigProblems: s.deps.ConfigProblems,
	}
	if session, ok := c.Get(echomw.SessionContextKey).(echomw.Session); ok {
		data.User = session.User
	}
	return c.Render(http.StatusOK, web.PageDashboard, data)
}
