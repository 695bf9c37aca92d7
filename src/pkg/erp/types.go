package erp

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind names the five statements the dashboard pulls.
type Kind string

const (
	KindProfitAndLoss Kind = "profit_and_loss"
	KindBalanceSheet  Kind = "balance_sheet"
	KindCashFlow      Kind = "cash_flow"
	KindReceivables   Kind = "receivables"
	KindPayables      Kind = "payables"
)

// Kinds in dashboard order.
var Kinds = []Kind{KindProfitAndLoss, KindBalanceSheet, KindCashFlow, KindReceivables, KindPayables}

// BundleKey is the camelCase key the browser and the LLM prompt see.
func (k Kind) BundleKey() string {
	switch k {
	case KindProfitAndLoss:
		return "profitAndLoss"
	case KindBalanceSheet:
		return "balanceSheet"
	case KindCashFlow:
		return "cashFlow"
	case KindReceivables:
		return "receivables"
	case KindPayables:
		return "payables"
	}
	return string(k)
}

// Label is used in error messages, "Failed to fetch <Label> data".
func (k Kind) Label() string {
	switch k {
	case KindProfitAndLoss:
		return "P&L"
	case KindBalanceSheet:
		return "Balance Sheet"
	case KindCashFlow:
		return "Cash Flow"
	case KindReceivables:
		return "receivables"
	case KindPayables:
		return "payables"
	}
	return string(k)
}

// Query is what the operator picked in the header bar.
type Query struct {
	Company   string `json:"company"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (q Query) CacheKey() string {
	return q.Company + "|" + q.StartDate + "|" + q.EndDate
}

type Company struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

/*
Report is a query_report.run payload (or a resource list dressed up as one).
Everything in it is loosely typed: columns come as strings or objects, rows as
arrays or objects, numbers as numbers or formatted strings.
*/
type Report struct {
	Kind          Kind            `json:"kind,omitempty"`
	Source        string          `json:"source,omitempty"` // "query_report" or "resource:<Doctype>"
	Columns       []Column        `json:"columns,omitempty"`
	Result        []Row           `json:"result"`
	Chart         *Chart          `json:"chart,omitempty"`
	ReportSummary json.RawMessage `json:"report_summary,omitempty"`
}

const (
	SourceQueryReport    = "query_report"
	SourceResourcePrefix = "resource:"
)

// FromResource is true when the report came from a fallback list query.
func (r *Report) FromResource() bool {
	return r != nil && strings.HasPrefix(r.Source, SourceResourcePrefix)
}

// Doctype of a resource-backed report, "" otherwise.
func (r *Report) Doctype() string {
	if !r.FromResource() {
		return ""
	}
	return strings.TrimPrefix(r.Source, SourceResourcePrefix)
}

// Column accepts both the "Label:Fieldtype/Options:Width" string form and the object form.
type Column struct {
	Fieldname string `json:"fieldname,omitempty"`
	Label     string `json:"label,omitempty"`
	Fieldtype string `json:"fieldtype,omitempty"`
	Options   string `json:"options,omitempty"`
}

func (c *Column) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var spec string
		if err := json.Unmarshal(trimmed, &spec); err != nil {
			return err
		}
		*c = parseColumnSpec(spec)
		return nil
	}

	type plain Column
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*c = Column(decoded)
	if c.Fieldname == "" {
		c.Fieldname = scrub(c.Label)
	}
	return nil
}

// IsNumeric reports whether values in this column are amounts.
func (c Column) IsNumeric() bool {
	switch c.Fieldtype {
	case "Currency", "Float", "Int", "Percent":
		return true
	}
	return false
}

func parseColumnSpec(spec string) Column {
	parts := strings.Split(spec, ":")
	column := Column{Label: strings.TrimSpace(parts[0]), Fieldtype: "Data"}
	if len(parts) > 1 {
		typeAndOptions := strings.SplitN(parts[1], "/", 2)
		if typeAndOptions[0] != "" {
			column.Fieldtype = typeAndOptions[0]
		}
		if len(typeAndOptions) == 2 {
			column.Options = typeAndOptions[1]
		}
	}
	column.Fieldname = scrub(column.Label)
	return column
}

// scrub turns a label into a fieldname the way frappe does ("Opening Balance" -> "opening_balance").
func scrub(label string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), " ", "_"))
}

/*
Row is one entry of result: either a positional array (Cells) or an object
keyed by fieldname (Fields). Marshalling writes back whichever shape came in.
*/
type Row struct {
	Cells  []any
	Fields map[string]any
}

func (r *Row) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = Row{}
		return nil
	}
	switch trimmed[0] {
	case '[':
		var cells []any
		if err := json.Unmarshal(trimmed, &cells); err != nil {
			return err
		}
		*r = Row{Cells: cells}
	case '{':
		var fields map[string]any
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*r = Row{Fields: fields}
	default:
		// a bare scalar row; keep it as a single cell
		var scalar any
		if err := json.Unmarshal(trimmed, &scalar); err != nil {
			return err
		}
		*r = Row{Cells: []any{scalar}}
	}
	return nil
}

func (r Row) MarshalJSON() ([]byte, error) {
	if r.Fields != nil {
		return json.Marshal(r.Fields)
	}
	if r.Cells != nil {
		return json.Marshal(r.Cells)
	}
	return []byte("null"), nil
}

func (r Row) IsArray() bool { return r.Cells != nil }

func (r Row) IsEmpty() bool { return len(r.Cells) == 0 && len(r.Fields) == 0 }

// Cell returns the i-th positional value, nil when out of range or not an array row.
func (r Row) Cell(i int) any {
	if i < 0 || i >= len(r.Cells) {
		return nil
	}
	return r.Cells[i]
}

// Field returns the first present, non-nil value among keys.
func (r Row) Field(keys ...string) any {
	for _, key := range keys {
		if value, ok := r.Fields[key]; ok && value != nil {
			if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return value
		}
	}
	return nil
}

type Chart struct {
	Type string    `json:"type,omitempty"`
	Data ChartData `json:"data"`
}

type ChartData struct {
	Labels   []any     `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Name   string `json:"name,omitempty"`
	Values []any  `json:"values"`
}

// FirstDataset returns datasets[0] when there is one.
func (c *Chart) FirstDataset() (Dataset, bool) {
	if c == nil || len(c.Data.Datasets) == 0 {
		return Dataset{}, false
	}
	return c.Data.Datasets[0], true
}

/*
Bundle is the "financialData" object: all five reports for one company and
period. A nil entry means that report failed and was nulled out.
*/
type Bundle struct {
	ProfitAndLoss *Report `json:"profitAndLoss"`
	BalanceSheet  *Report `json:"balanceSheet"`
	CashFlow      *Report `json:"cashFlow"`
	Receivables   *Report `json:"receivables"`
	Payables      *Report `json:"payables"`
}

func (b *Bundle) Get(kind Kind) *Report {
	if b == nil {
		return nil
	}
	switch kind {
	case KindProfitAndLoss:
		return b.ProfitAndLoss
	case KindBalanceSheet:
		return b.BalanceSheet
	case KindCashFlow:
		return b.CashFlow
	case KindReceivables:
		return b.Receivables
	case KindPayables:
		return b.Payables
	}
	return nil
}

func (b *Bundle) Set(kind Kind, report *Report) {
	switch kind {
	case KindProfitAndLoss:
		b.ProfitAndLoss = report
	case KindBalanceSheet:
		b.BalanceSheet = report
	case KindCashFlow:
		b.CashFlow = report
	case KindReceivables:
		b.Receivables = report
	case KindPayables:
		b.Payables = report
	}
}
