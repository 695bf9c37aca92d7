package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/export"
	"erp-dashboard/src/pkg/insights"
	"erp-dashboard/src/pkg/report"
)

func newFetchCommand() *cobra.Command {
	var r rangeFlags
	var raw bool

	cmd := &cobra.Command{
		Use:   "fetch <report-id>",
		Short: "Print one normalized report (pl, balance, cashflow, receivables, payables, overview)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := report.ParseID(args[0])
			if !ok || id == report.IDInsights {
				return fmt.Errorf("unknown report '%s'", args[0])
			}

			application := buildApp(cmd.Context())
			view := application.Dashboard.LoadView(cmd.Context(), r.query())
			for key, message := range view.Errors {
				tl.Log(tl.Warning, palette.Yellow, "%s: %s", key, message)
			}

			var e *xerr.Error
			switch {
			case id == report.IDOverview:
				e = printJSON(view.Overview)
			case raw:
				kind, _ := id.Kind()
				e = printJSON(view.Bundle.Get(kind))
			default:
				normalized := view.Reports[id]
				if normalized == nil {
					return fmt.Errorf("report '%s' is not available", id)
				}
				normalized.RawReport = nil
				e = printJSON(normalized)
			}
			if e != nil {
				return fmt.Errorf("%s", e)
			}
			return nil
		},
	}
	r.register(cmd)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the ERP payload instead of the normalized report")
	return cmd
}

func newInsightsCommand() *cobra.Command {
	var r rangeFlags
	var plain bool
	var summaryOnly bool
	var trends bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Generate AI insights for a company and render them in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application := buildApp(cmd.Context())
			if application.Provider == nil {
				return fmt.Errorf("no LLM provider configured, see the problems above")
			}
			q := r.query()
			result := application.Dashboard.Load(cmd.Context(), q)

			var text string
			switch {
			case trends:
				text = fmt.Sprintf("## Revenue Trends\n\n%s\n\n## Cash Position\n\n%s\n",
					application.Insights.RevenueTrends(cmd.Context(), insights.Series(result.Bundle, report.IDPL)),
					application.Insights.CashPosition(cmd.Context(), insights.Series(result.Bundle, report.IDCashFlow)),
				)
			case summaryOnly:
				text = application.Insights.ExecutiveSummary(cmd.Context(), result.Bundle)
			default:
				var e *xerr.Error
				text, e = application.Insights.FinancialInsights(cmd.Context(), q.Company, result.Bundle)
				if e != nil {
					return fmt.Errorf("generate insights: %s", e)
				}
			}

			if plain {
				fmt.Println(text)
				return nil
			}
			return renderMarkdown(text, insights.ParseSections(text))
		},
	}
	r.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the raw markdown")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Only the two or three sentence executive summary")
	cmd.Flags().BoolVar(&trends, "trends", false, "Revenue trend and cash position reads instead of the full analysis")
	cmd.MarkFlagsMutuallyExclusive("summary", "trends")
	return cmd
}

// renderMarkdown pretty prints the answer, headed by a one line count per section type.
func renderMarkdown(text string, sections []insights.Section) error {
	counts := map[insights.SectionType]int{}
	for _, section := range sections {
		counts[section.Type]++
	}
	header := fmt.Sprintf(
		"> %d sections: %d warnings, %d positive, %d insights\n\n",
		len(sections), counts[insights.SectionWarning], counts[insights.SectionPositive], counts[insights.SectionInsight],
	)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(header + text)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}

func newExportCommand() *cobra.Command {
	var r rangeFlags
	var formatName string
	var outPath string
	var withInsights bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the CSV, JSON or text export to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := export.ParseFormat(formatName)
			if !ok {
				return fmt.Errorf("unsupported format '%s'", formatName)
			}

			application := buildApp(cmd.Context())
			q := r.query()
			view := application.Dashboard.LoadView(cmd.Context(), q)
			data := export.Data{
				Company:   q.Company,
				StartDate: q.StartDate,
				EndDate:   q.EndDate,
				Bundle:    view.Bundle,
				Reports:   view.Reports,
			}
			data.GeneratedAt = view.LoadedAt
			if withInsights {
				text, e := application.Insights.FinancialInsights(cmd.Context(), q.Company, view.Bundle)
				if e != nil {
					tl.Log(tl.Warning, palette.Yellow, "Exporting without insights: %s", e)
				}
				data.Insights = text
			}

			content, e := export.Render(format, data)
			if e != nil {
				return fmt.Errorf("%s", e)
			}
			if outPath == "" {
				outPath = export.Filename(q.Company, format, data.GeneratedAt)
			}
			if outPath == "-" {
				_, err := os.Stdout.Write(content)
				return err
			}
			if err := os.WriteFile(outPath, content, 0o644); err != nil {
				return fmt.Errorf("write '%s': %w", outPath, err)
			}
			tl.Log(tl.Info1, palette.Green, "Saved %s export to '%s'", strings.ToUpper(string(format)), outPath)
			return nil
		},
	}
	r.register(cmd)
	cmd.Flags().StringVar(&formatName, "format", "csv", "csv, json or txt")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path, - for stdout (default: financial-report-<company>-<date>.<ext>)")
	cmd.Flags().BoolVar(&withInsights, "insights", false, "Include the AI analysis")
	return cmd
}
