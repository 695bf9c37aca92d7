// dashctl is the operator CLI: the same reports, exports and AI analysis the
// dashboard serves, from a terminal or a cron job.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/app"
	"erp-dashboard/src/pkg/dashboard"
	"erp-dashboard/src/pkg/erp"
)

type rangeFlags struct {
	company   string
	startDate string
	endDate   string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.company, "company", "", "ERPNext company name (required)")
	cmd.Flags().StringVar(&r.startDate, "start", "", "Period start YYYY-MM-DD (default: dashboard.default_range_months before the end)")
	cmd.Flags().StringVar(&r.endDate, "end", "", "Period end YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("company")
}

func (r *rangeFlags) query() erp.Query {
	return dashboard.DefaultQuery(r.company, r.startDate, r.endDate, time.Now())
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "dashctl",
		Short: "ERP financial dashboard from the command line",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.InitializeConfig(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./cfg/config.json", "Path to your configuration file.")

	rootCmd.AddCommand(
		newCompaniesCommand(),
		newFetchCommand(),
		newInsightsCommand(),
		newExportCommand(),
		newDigestCommand(),
		newTestEmailCommand(),
	)
	return rootCmd
}

// buildApp is app.New for commands; configuration problems are only logged.
func buildApp(ctx context.Context) *app.App {
	application, e := app.New(ctx)
	e.QuitIf("error")
	return application
}

func printJSON(value any) (e *xerr.Error) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return xerr.NewError(err, "write JSON to stdout", nil)
	}
	return nil
}

func newCompaniesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List the companies the ERP API key can see",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application := buildApp(cmd.Context())
			if user := application.ERP.WhoAmI(cmd.Context()); user != "" {
				tl.Log(tl.Info, palette.Cyan, "Connected to %s as '%s'", application.ERP.BaseURL(), user)
			}
			companies, e := application.ERP.Companies(cmd.Context())
			if e != nil {
				return fmt.Errorf("list companies: %s", e)
			}
			for _, company := range companies {
				fmt.Printf("%s\t%s\n", company.Name, company.CompanyName)
			}
			tl.Log(tl.Info1, palette.Green, "Found %s companies", len(companies))
			return nil
		},
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		tl.Log(tl.Error, palette.Red, "%s", err)
		os.Exit(1)
	}
}
