package export

import (
	"encoding/json"
	"io"
	"time"

	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/report"
)

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type metadata struct {
	ExportDate string    `json:"exportDate"`
	Company    string    `json:"company"`
	DateRange  dateRange `json:"dateRange"`
}

type jsonReport struct {
	Company       string                           `json:"company"`
	DateRange     dateRange                        `json:"dateRange"`
	ProfitAndLoss *erp.Report                      `json:"profitAndLoss,omitempty"`
	BalanceSheet  *erp.Report                      `json:"balanceSheet,omitempty"`
	CashFlow      *erp.Report                      `json:"cashFlow,omitempty"`
	Receivables   *erp.Report                      `json:"receivables,omitempty"`
	Payables      *erp.Report                      `json:"payables,omitempty"`
	Normalized    map[report.ID]*report.Normalized `json:"normalized,omitempty"`
	Insights      string                           `json:"insights,omitempty"`
}

// WriteJSON writes {metadata: {...}, report: {...}} indented by two spaces.
func WriteJSON(w io.Writer, data Data) error {
	span := dateRange{Start: data.StartDate, End: data.EndDate}
	document := struct {
		Metadata metadata   `json:"metadata"`
		Report   jsonReport `json:"report"`
	}{
		Metadata: metadata{
			ExportDate: data.GeneratedAt.UTC().Format(time.RFC3339),
			Company:    data.Company,
			DateRange:  span,
		},
		Report: jsonReport{
			Company:    data.Company,
			DateRange:  span,
			Normalized: withoutRaw(data.Reports),
			Insights:   data.Insights,
		},
	}
	if data.Bundle != nil {
		document.Report.ProfitAndLoss = data.Bundle.ProfitAndLoss
		document.Report.BalanceSheet = data.Bundle.BalanceSheet
		document.Report.CashFlow = data.Bundle.CashFlow
		document.Report.Receivables = data.Bundle.Receivables
		document.Report.Payables = data.Bundle.Payables
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(document)
}

// withoutRaw drops rawReport from each view; the raw reports are already in the document.
func withoutRaw(reports map[report.ID]*report.Normalized) map[report.ID]*report.Normalized {
	if len(reports) == 0 {
		return nil
	}
	out := make(map[report.ID]*report.Normalized, len(reports))
	for id, normalized := range reports {
		if normalized == nil {
			continue
		}
		stripped := *normalized
		stripped.RawReport = nil
		out[id] = &stripped
	}
	return out
}
