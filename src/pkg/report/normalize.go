package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/erp"
)

type Column struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	IsNumeric     bool   `json:"isNumeric"`
	IsAccountName bool   `json:"isAccountName"`
}

type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Normalized is the shape every table, chart and export reads.
type Normalized struct {
	ID            ID               `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Company       string           `json:"company"`
	Currency      string           `json:"currency"`
	ChartType     string           `json:"chartType"`
	Columns       []Column         `json:"columns"`
	Rows          []map[string]any `json:"rows"`
	Chart2DData   []ChartPoint     `json:"chart2DData"`
	Chart3DData   []float64        `json:"chart3DData"`
	Chart3DLabels []string         `json:"chart3DLabels"`
	Source        string           `json:"source,omitempty"`
	RawReport     *erp.Report      `json:"rawReport"`
}

// AgingLabels are the bucket names, in range1..range5 order.
var AgingLabels = []string{"0-30", "30-60", "60-90", "90-120", "120+"}

var agingKeys = []string{"aging_0_30", "aging_30_60", "aging_60_90", "aging_90_120", "aging_120_plus"}

// first cell of the five aging buckets in a positional aging row
const agingFirstCell = 11

var statementColumns = []Column{
	{Key: "account_name", Label: "Account", IsAccountName: true},
	{Key: "amount", Label: "Amount", IsNumeric: true},
	{Key: "percentage", Label: "%", IsNumeric: true},
}

func agingColumns(id ID) []Column {
	party := "Customer"
	if id == IDPayables {
		party = "Supplier"
	}
	columns := []Column{
		{Key: "name", Label: party, IsAccountName: true},
		{Key: "amount", Label: "Amount", IsNumeric: true},
	}
	for i, key := range agingKeys {
		columns = append(columns, Column{Key: key, Label: AgingLabels[i] + " Days", IsNumeric: true})
	}
	return columns
}

/*
Normalize builds the view for id out of bundle.

Returns nil for overview and insights (no single report behind them), for
unknown ids and when the report is missing from the bundle.
*/
func Normalize(id ID, bundle *erp.Bundle, company string) *Normalized {
	kind, ok := id.Kind()
	if !ok {
		return nil
	}
	raw := bundle.Get(kind)
	if raw == nil {
		tl.Log(tl.Verbose, palette.Yellow, "No %s report in bundle for '%s'", id, company)
		return nil
	}

	normalized := &Normalized{
		ID:            id,
		Title:         id.Title(),
		Description:   id.Description(),
		Company:       company,
		Currency:      currencyOf(raw),
		ChartType:     id.ChartType(),
		Columns:       []Column{},
		Rows:          []map[string]any{},
		Chart2DData:   []ChartPoint{},
		Chart3DData:   []float64{},
		Chart3DLabels: []string{},
		Source:        raw.Source,
		RawReport:     raw,
	}

	switch {
	case id.isStatement():
		processStatement(normalized, raw)
	case id.isAging():
		processAging(normalized, id, raw)
	}
	tl.Log(
		tl.Verbose1, palette.Cyan, "Normalized %s: %s rows, %s chart points",
		id, len(normalized.Rows), len(normalized.Chart2DData),
	)
	return normalized
}

// NormalizeAll runs Normalize for every data view, skipping the missing ones.
func NormalizeAll(bundle *erp.Bundle, company string) map[ID]*Normalized {
	out := map[ID]*Normalized{}
	for _, id := range DataIDs {
		if normalized := Normalize(id, bundle, company); normalized != nil {
			out[id] = normalized
		}
	}
	return out
}

func currencyOf(raw *erp.Report) string {
	for _, row := range raw.Result {
		if currency, ok := row.Field("currency").(string); ok {
			return strings.TrimSpace(currency)
		}
	}
	return Cfg.DefaultCurrency
}

func processStatement(n *Normalized, raw *erp.Report) {
	if dataset, ok := raw.Chart.FirstDataset(); ok {
		chartLabels := raw.Chart.Data.Labels
		for i, label := range chartLabels {
			var value any
			if i < len(dataset.Values) {
				value = dataset.Values[i]
			}
			n.Chart2DData = append(n.Chart2DData, ChartPoint{Name: text(label), Value: float(number(value).Abs())})
		}
		for _, value := range dataset.Values {
			n.Chart3DData = append(n.Chart3DData, float(number(value).Abs()))
		}
		n.Chart3DLabels = labels(chartLabels)
	}

	n.Columns = statementColumns

	amountField := lastNumericField(raw.Columns)
	limit := min(Cfg.StatementRowLimit, len(raw.Result))

	type line struct {
		name       string
		amount     decimal.Decimal
		percentage decimal.Decimal
		hasPercent bool
	}
	var lines []line
	for _, row := range raw.Result[:limit] {
		if row.IsEmpty() {
			continue
		}
		var l line
		if row.IsArray() {
			l = line{name: text(row.Cell(0)), amount: number(row.Cell(1)), percentage: number(row.Cell(2)), hasPercent: true}
		} else {
			l.name = text(row.Field("account_name", "account", "name"))
			l.amount = statementAmount(raw, row, amountField)
			l.percentage, l.hasPercent = toDecimal(row.Field("percentage"))
		}
		if excluded(l.name) {
			continue
		}
		l.name = SanitizeName(l.name)
		lines = append(lines, l)
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.amount.Abs())
	}
	for _, l := range lines {
		percentage := l.percentage
		if !l.hasPercent && !total.IsZero() {
			percentage = l.amount.Abs().Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		n.Rows = append(n.Rows, map[string]any{
			"account_name": l.name,
			"amount":       float(l.amount),
			"percentage":   float(percentage),
		})
	}

	if raw.Chart == nil || len(raw.Chart.Data.Datasets) == 0 {
		for _, l := range lines {
			value := float(l.amount.Abs())
			n.Chart2DData = append(n.Chart2DData, ChartPoint{Name: l.name, Value: value})
			n.Chart3DData = append(n.Chart3DData, value)
			n.Chart3DLabels = append(n.Chart3DLabels, l.name)
		}
	}
}

func excluded(name string) bool {
	for _, pattern := range Cfg.ExcludePatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// lastNumericField is the fieldname of the right-most Currency/Float column.
func lastNumericField(columns []erp.Column) string {
	for i := len(columns) - 1; i >= 0; i-- {
		if columns[i].Fieldtype == "Currency" || columns[i].Fieldtype == "Float" {
			return columns[i].Fieldname
		}
	}
	return ""
}

/*
statementAmount picks the amount of an object row. Rows that came from a
fallback list query have no report columns worth trusting, so GL entries
use credit minus debit and payment entries use paid_amount, negative when
money went out.
*/
func statementAmount(raw *erp.Report, row erp.Row, amountField string) decimal.Decimal {
	if raw.FromResource() {
		switch raw.Doctype() {
		case "GL Entry":
			return number(row.Field("credit")).Sub(number(row.Field("debit")))
		case "Payment Entry":
			amount := number(row.Field("paid_amount"))
			if text(row.Field("payment_type")) == "Pay" {
				return amount.Neg()
			}
			return amount
		}
	}
	if total, ok := toDecimal(row.Field("total")); ok {
		return total
	}
	if amountField != "" {
		return number(row.Field(amountField))
	}
	return decimal.Zero
}

type agingLine struct {
	name       string
	amount     decimal.Decimal
	buckets    [5]decimal.Decimal
	hasBuckets bool
}

// isTotal reports whether the line is the summary row ERPNext appends to aging reports.
func (l agingLine) isTotal() bool {
	return strings.TrimSpace(l.name) == "Total"
}

func readAgingLine(row erp.Row) agingLine {
	var l agingLine
	if row.IsArray() {
		l.name = text(row.Cell(0))
		l.amount = number(row.Cell(1))
		for i := range l.buckets {
			l.buckets[i] = number(row.Cell(agingFirstCell + i))
		}
		l.hasBuckets = len(row.Cells) > agingFirstCell
		return l
	}
	l.name = text(row.Field("party_name", "party", "customer", "supplier", "name"))
	l.amount = number(row.Field("outstanding", "total_outstanding", "outstanding_amount", "total", "grand_total"))
	for i := range l.buckets {
		bucket, ok := toDecimal(row.Field("range" + strconv.Itoa(i+1)))
		l.buckets[i] = bucket
		l.hasBuckets = l.hasBuckets || ok
	}
	return l
}

func processAging(n *Normalized, id ID, raw *erp.Report) {
	n.Columns = agingColumns(id)
	if len(raw.Result) == 0 {
		return
	}

	limit := min(Cfg.AgingRowLimit, len(raw.Result))
	for _, row := range raw.Result[:limit] {
		l := readAgingLine(row)
		normalizedRow := map[string]any{
			"name":   SanitizeName(l.name),
			"amount": float(l.amount),
		}
		for i, key := range agingKeys {
			normalizedRow[key] = float(l.buckets[i])
		}
		n.Rows = append(n.Rows, normalizedRow)
	}

	buckets, ok := agingTotals(raw.Result)
	if !ok {
		return
	}
	for i, bucket := range buckets {
		value := float(bucket)
		n.Chart3DData = append(n.Chart3DData, value)
		n.Chart2DData = append(n.Chart2DData, ChartPoint{Name: AgingLabels[i], Value: value})
	}
	n.Chart3DLabels = append([]string(nil), AgingLabels...)
}

/*
agingTotals returns the five bucket totals: the Total row's buckets when the
report ends with one, otherwise the sum over every row. ok is false when no
row carries bucket data at all.
*/
func agingTotals(rows []erp.Row) (totals [5]decimal.Decimal, ok bool) {
	if last := readAgingLine(rows[len(rows)-1]); last.isTotal() {
		return last.buckets, last.hasBuckets
	}
	for _, row := range rows {
		l := readAgingLine(row)
		if !l.hasBuckets {
			continue
		}
		ok = true
		for i := range totals {
			totals[i] = totals[i].Add(l.buckets[i])
		}
	}
	return totals, ok
}
