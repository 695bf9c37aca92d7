/*
Package app wires the configured pieces together: it hands every package its
config section, builds the ERP client and the LLM provider and reports what
is missing from the environment.
*/
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/config"
	"erp-dashboard/src/pkg/dashboard"
	"erp-dashboard/src/pkg/digest"
	echomw "erp-dashboard/src/pkg/echo-middleware"
	"erp-dashboard/src/pkg/email"
	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/gemini"
	"erp-dashboard/src/pkg/insights"
	"erp-dashboard/src/pkg/llm"
	"erp-dashboard/src/pkg/openai"
	"erp-dashboard/src/pkg/report"
)

type App struct {
	ERP       *erp.Client
	Provider  llm.Provider // nil when the selected provider has no API key
	Insights  *insights.Service
	Dashboard *dashboard.Service
	Problems  []string
}

/*
InitializeConfig loads the file at configPath and initializes every package
from its own section. Missing sections keep package defaults.
*/
func InitializeConfig(configPath string) {
	config.InitializeConfig(configPath)
	InitializeSections()
}

// InitializeSections re-reads every section from the loaded config.
func InitializeSections() {
	echomw.InitializeConfig(config.Section[echomw.Config]("echo_middleware"))
	erp.InitializeConfig(config.Section[erp.Config]("erp"))
	llm.InitializeConfig(config.Section[llm.Config]("llm"))
	openai.InitializeConfig(config.Section[openai.Config]("openai"))
	gemini.InitializeConfig(config.Section[gemini.Config]("gemini"))
	report.InitializeConfig(config.Section[report.Config]("report"))
	dashboard.InitializeConfig(config.Section[dashboard.Config]("dashboard"))
	email.InitializeConfig(config.Section[email.Config]("email"))
	digest.InitializeConfig(config.Section[digest.Config]("digest"))
}

/*
Validate returns human readable configuration problems: a missing API key for
the selected LLM provider and missing ERP credentials. Never fatal; the
server starts anyway and shows them on the dashboard.
*/
func Validate() (problems []string) {
	switch strings.ToLower(llm.Cfg.Provider) {
	case llm.ProviderOpenAI:
		if strings.TrimSpace(os.Getenv(openai.EnvAPIKey)) == "" {
			problems = append(problems, openai.EnvAPIKey+" environment variable is not set")
		}
	case llm.ProviderGemini:
		if strings.TrimSpace(os.Getenv(gemini.EnvAPIKey)) == "" {
			problems = append(problems, gemini.EnvAPIKey+" environment variable is not set")
		}
	default:
		problems = append(problems, fmt.Sprintf("Unknown LLM provider '%s'", llm.Cfg.Provider))
	}
	problems = append(problems, erp.CredentialsFromEnv().Problems()...)
	return problems
}

/*
NewProvider builds the LLM backend named by llm.Cfg.Provider. A missing API
key is not an error: the provider is nil and every AI call fails with a
clear message while the rest of the dashboard keeps working.
*/
func NewProvider(ctx context.Context) (provider llm.Provider, e *xerr.Error) {
	switch strings.ToLower(llm.Cfg.Provider) {
	case llm.ProviderOpenAI:
		apiKey := strings.TrimSpace(os.Getenv(openai.EnvAPIKey))
		if apiKey == "" {
			return nil, nil
		}
		return openai.NewClient(openai.Cfg, apiKey), nil
	case llm.ProviderGemini:
		apiKey := strings.TrimSpace(os.Getenv(gemini.EnvAPIKey))
		if apiKey == "" {
			return nil, nil
		}
		client, clientErr := gemini.NewClient(ctx, gemini.Cfg, apiKey)
		if clientErr != nil {
			return nil, clientErr
		}
		return client, nil
	}
	return nil, xerr.NewError(fmt.Errorf("unknown provider '%s'", llm.Cfg.Provider), "pick LLM provider", llm.Cfg.Provider)
}

// New builds the application from the already initialized package configs.
func New(ctx context.Context) (a *App, e *xerr.Error) {
	a = &App{Problems: Validate()}
	for _, problem := range a.Problems {
		tl.Log(tl.Warning, palette.YellowBold, "Configuration problem: %s", problem)
	}

	a.ERP = erp.NewClient(erp.Cfg, erp.CredentialsFromEnv())
	a.Provider, e = NewProvider(ctx)
	if e != nil {
		return nil, e
	}
	if a.Provider != nil {
		tl.Log(tl.Info1, palette.Green, "Using %s model '%s'", a.Provider.Name(), a.Provider.Model())
	}

	a.Insights = insights.NewService(a.Provider, llm.Cfg)
	a.Dashboard = dashboard.NewService(a.ERP, dashboard.Cfg)
	return a, nil
}
