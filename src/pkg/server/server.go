/*
Package server is the dashboard's HTTP surface: the session-gated pages, the
ERP passthrough and report API, AI endpoints, exports and chart images.
*/
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"golang.org/x/time/rate"

	"erp-dashboard/src/pkg/dashboard"
	echomw "erp-dashboard/src/pkg/echo-middleware"
	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/insights"
	"erp-dashboard/src/pkg/llm"
	"erp-dashboard/src/pkg/web"
)

// ERP is the part of erp.Client the server calls.
type ERP interface {
	dashboard.Fetcher
	Companies(ctx context.Context) ([]erp.Company, *xerr.Error)
}

type Deps struct {
	ERP            ERP
	Dashboard      *dashboard.Service
	Insights       *insights.Service
	Credentials    echomw.Credentials
	Sessions       *echomw.SessionStore
	ConfigProblems []string
	Title          string
}

type Server struct {
	echo     *echo.Echo
	deps     Deps
	gate     *echomw.Gate
	renderer *web.Renderer
	now      func() time.Time
}

const shutdownTimeout = 10 * time.Second

func New(deps Deps) (s *Server, e *xerr.Error) {
	if deps.Sessions == nil {
		deps.Sessions = echomw.NewSessionStore(time.Duration(echomw.Cfg.SessionTTLMinutes) * time.Minute)
	}
	if deps.Dashboard == nil {
		deps.Dashboard = dashboard.NewService(deps.ERP, dashboard.Cfg)
	}
	if deps.Insights == nil {
		deps.Insights = insights.NewService(nil, llm.Cfg)
	}
	if deps.Title == "" {
		deps.Title = "ERP Financial Dashboard"
	}

	renderer, e := web.NewRenderer()
	if e != nil {
		return nil, e
	}

	s = &Server{
		echo:     echo.New(),
		deps:     deps,
		gate:     echomw.NewGate(deps.Sessions, echomw.Cfg),
		renderer: renderer,
		now:      time.Now,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Renderer = renderer
	s.routes()
	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() {
	e := s.echo
	general := echomw.NewRateLimiter(rate.Limit(echomw.Cfg.MiddlewareRateLimit), echomw.Cfg.MiddlewareBurst)
	login := echomw.NewRateLimiter(rate.Limit(float64(echomw.Cfg.LoginRateLimit)/60), echomw.Cfg.LoginBurst)

	e.Use(echomw.RouteAccessLoggerMiddleware)
	e.Use(general.Middleware)

	e.GET("/healthz", s.healthz)
	e.StaticFS("/static", web.Static())

	e.GET("/", s.loginPage, s.gate.RedirectIfAuthenticated)
	e.GET("/login", s.loginPage, s.gate.RedirectIfAuthenticated)
	e.GET("/dashboard", s.dashboardPage, s.gate.RequirePageAuth)

	auth := e.Group("/api/auth")
	auth.POST("/login", s.login, login.Middleware)
	auth.POST("/logout", s.logout)

	api := e.Group("/api", s.gate.RequireAPIAuth)

	api.GET("/erp/companies", s.companies)
	api.GET("/erp/profit-loss", s.statement(erp.KindProfitAndLoss))
	api.GET("/erp/balance-sheet", s.statement(erp.KindBalanceSheet))
	api.GET("/erp/cash-flow", s.statement(erp.KindCashFlow))
	api.GET("/erp/receivables", s.aging(erp.KindReceivables))
	api.GET("/erp/payables", s.aging(erp.KindPayables))

	api.GET("/reports/:id", s.report)
	api.GET("/dashboard", s.dashboard)

	api.POST("/ai/insights", s.insights)
	api.POST("/ai/summary", s.summary)
	api.POST("/ai/chat", s.chat)

	api.GET("/export", s.export)
	api.GET("/charts/:file", s.chart)
}

/*
Run serves on address until ctx is cancelled, then shuts down gracefully,
letting in-flight requests finish for up to shutdownTimeout.
*/
func (s *Server) Run(ctx context.Context, address string) (e *xerr.Error) {
	serveErr := make(chan error, 1)
	go func() {
		tl.Log(tl.Notice, palette.BlueBold, "Listening on '%s'", address)
		serveErr <- s.echo.Start(address)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return xerr.NewError(err, "start server", address)
		}
		return nil
	case <-ctx.Done():
	}

	tl.Log(tl.Notice, palette.Yellow, "%s, draining requests", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return xerr.NewError(err, "shutdown server", address)
	}
	<-serveErr
	tl.Log(tl.Notice1, palette.GreenBold, "%s", "Server stopped")
	return nil
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"problems": s.deps.ConfigProblems,
	})
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
