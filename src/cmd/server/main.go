package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/app"
	echomw "erp-dashboard/src/pkg/echo-middleware"
	"erp-dashboard/src/pkg/server"
)

func main() {
	// common flags
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	// program's custom flags
	address := flag.String("address", "", "Listen address host:port (default from echo_middleware config)")
	title := flag.String("title", "", "Dashboard title shown in the browser")
	// parse and init config
	flag.Parse()
	app.InitializeConfig(*configPath)

	tl.Log(
		tl.Notice, palette.BlueBold, "%s dashboard server. Config path: '%s'",
		"Starting", *configPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, e := app.New(ctx)
	e.QuitIf("error")

	credentials := echomw.CredentialsFromEnv()
	if !credentials.Configured() {
		tl.Log(tl.Warning, palette.YellowBold, "%s and %s are not set, every login will be refused", echomw.EnvDashboardUsername, echomw.EnvDashboardPassword)
	}

	srv, e := server.New(server.Deps{
		ERP:            application.ERP,
		Dashboard:      application.Dashboard,
		Insights:       application.Insights,
		Credentials:    credentials,
		ConfigProblems: application.Problems,
		Title:          *title,
	})
	e.QuitIf("error")

	listenAddress := *address
	if listenAddress == "" {
		listenAddress = echomw.Cfg.ListenAddress()
	}
	e = srv.Run(ctx, listenAddress)
	e.QuitIf("error")
}
