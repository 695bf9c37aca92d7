/*
Package report turns raw ERPNext report payloads into the one table/chart
shape every dashboard view consumes.

Statements (pl, balance, cashflow) become account/amount/percentage tables
with a chart series; aging reports (receivables, payables) become party rows
with five aging buckets.
*/
package report

import (
	"erp-dashboard/src/pkg/erp"
)

// ID is a dashboard view.
type ID string

const (
	IDOverview    ID = "overview"
	IDPL          ID = "pl"
	IDBalance     ID = "balance"
	IDCashFlow    ID = "cashflow"
	IDReceivables ID = "receivables"
	IDPayables    ID = "payables"
	IDInsights    ID = "insights"
)

// IDs in sidebar order.
var IDs = []ID{IDOverview, IDPL, IDBalance, IDCashFlow, IDReceivables, IDPayables, IDInsights}

// DataIDs are the views backed by an ERP report.
var DataIDs = []ID{IDPL, IDBalance, IDCashFlow, IDReceivables, IDPayables}

type viewInfo struct {
	title       string
	description string
	chartType   string
	kind        erp.Kind
}

var views = map[ID]viewInfo{
	IDOverview:    {title: "Dashboard Overview", description: "Complete financial overview and key metrics"},
	IDPL:          {title: "Profit & Loss Statement", description: "Revenue, expenses, and profit analysis", chartType: "bar", kind: erp.KindProfitAndLoss},
	IDBalance:     {title: "Balance Sheet", description: "Assets, liabilities, and equity snapshot", chartType: "pie", kind: erp.KindBalanceSheet},
	IDCashFlow:    {title: "Cash Flow Analysis", description: "Cash inflows and outflows tracking", chartType: "line", kind: erp.KindCashFlow},
	IDReceivables: {title: "Accounts Receivable Aging", description: "Customer payment aging analysis", chartType: "column", kind: erp.KindReceivables},
	IDPayables:    {title: "Accounts Payable Aging", description: "Vendor payment aging analysis", chartType: "column", kind: erp.KindPayables},
	IDInsights:    {title: "AI Insights", description: "AI-powered financial insights"},
}

// ParseID accepts any known view id.
func ParseID(s string) (ID, bool) {
	id := ID(s)
	_, ok := views[id]
	return id, ok
}

func (id ID) Title() string { return views[id].title }

func (id ID) Description() string { return views[id].description }

// ChartType defaults to bar for views that have no chart of their own.
func (id ID) ChartType() string {
	if chartType := views[id].chartType; chartType != "" {
		return chartType
	}
	return "bar"
}

// Kind is the ERP report behind the view; false for overview and insights.
func (id ID) Kind() (erp.Kind, bool) {
	kind := views[id].kind
	return kind, kind != ""
}

func (id ID) isStatement() bool {
	return id == IDPL || id == IDBalance || id == IDCashFlow
}

func (id ID) isAging() bool {
	return id == IDReceivables || id == IDPayables
}
