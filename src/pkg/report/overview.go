package report

import (
	"erp-dashboard/src/pkg/erp"
)

// Card is one tile of the overview grid.
type Card struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	ChartType string    `json:"chartType"`
	Labels    []string  `json:"labels"`
	Values    []float64 `json:"values"`
}

var overviewCards = []struct {
	id    ID
	title string
}{
	{IDPL, "Profit & Loss Overview"},
	{IDBalance, "Balance Sheet Summary"},
	{IDCashFlow, "Cash Flow Movement"},
	{IDReceivables, "Accounts Receivable Aging"},
	{IDPayables, "Accounts Payable Aging"},
}

/*
Overview builds the five chart cards. Statements keep the sign of their
chart values; aging cards read the buckets of the trailing Total row. A card
with nothing to draw has empty Values and the browser shows a placeholder.
*/
func Overview(bundle *erp.Bundle) []Card {
	cards := make([]Card, 0, len(overviewCards))
	for _, entry := range overviewCards {
		card := Card{ID: entry.id, Title: entry.title, ChartType: entry.id.ChartType(), Labels: []string{}, Values: []float64{}}
		kind, _ := entry.id.Kind()
		raw := bundle.Get(kind)

		switch {
		case raw == nil:
		case entry.id.isStatement():
			if dataset, ok := raw.Chart.FirstDataset(); ok {
				for _, value := range dataset.Values {
					card.Values = append(card.Values, float(number(value)))
				}
				card.Labels = labels(raw.Chart.Data.Labels)
			}
		case entry.id.isAging():
			if len(raw.Result) == 0 {
				break
			}
			last := readAgingLine(raw.Result[len(raw.Result)-1])
			if last.isTotal() && last.hasBuckets {
				for _, bucket := range last.buckets {
					card.Values = append(card.Values, float(bucket))
				}
				card.Labels = append(card.Labels, AgingLabels...)
			}
		}
		cards = append(cards, card)
	}
	return cards
}
