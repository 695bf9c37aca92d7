package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"erp-dashboard/src/pkg/report"
)

var txtHeadings = map[report.ID]string{
	report.IDPL:          "PROFIT & LOSS",
	report.IDBalance:     "BALANCE SHEET",
	report.IDCashFlow:    "CASH FLOW",
	report.IDReceivables: "RECEIVABLES",
	report.IDPayables:    "PAYABLES",
}

// WriteTXT writes a sectioned plain text report with aligned tables.
func WriteTXT(w io.Writer, data Data) error {
	var b strings.Builder
	b.WriteString("FINANCIAL REPORT\n")
	fmt.Fprintf(&b, "Company: %s\n", data.Company)
	fmt.Fprintf(&b, "Period: %s\n", period(data))
	fmt.Fprintf(&b, "Generated: %s\n", data.GeneratedAt.UTC().Format(time.RFC3339))

	for _, id := range report.DataIDs {
		b.WriteString("\n" + txtHeadings[id] + "\n")
		normalized := data.Reports[id]
		if normalized == nil || len(normalized.Rows) == 0 {
			b.WriteString("No data available\n")
			continue
		}

		table := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		labels := make([]string, 0, len(normalized.Columns))
		for _, column := range normalized.Columns {
			labels = append(labels, column.Label)
		}
		fmt.Fprintln(table, strings.Join(labels, "\t")+"\t")
		for _, row := range normalized.Rows {
			cells := make([]string, 0, len(normalized.Columns))
			for _, column := range normalized.Columns {
				cells = append(cells, cell(row[column.Key], column.IsNumeric))
			}
			fmt.Fprintln(table, strings.Join(cells, "\t")+"\t")
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}

	b.WriteString("\nAI INSIGHTS\n")
	if strings.TrimSpace(data.Insights) == "" {
		b.WriteString("No insights available\n")
	} else {
		b.WriteString(strings.TrimSpace(data.Insights) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
