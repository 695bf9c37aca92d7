package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// reportSpec ties a Kind to its ERPNext report and to the list query used when the report fails.
type reportSpec struct {
	reportName      string
	dated           bool // statement filtered by period, aging reports are not
	fallbackDoctype string
	fallbackFields  []string
	fallbackDated   bool
}

var reportSpecs = map[Kind]reportSpec{
	KindProfitAndLoss: {
		reportName:      "Profit and Loss Statement",
		dated:           true,
		fallbackDoctype: "GL Entry",
		fallbackFields:  []string{"posting_date", "account", "debit", "credit"},
		fallbackDated:   true,
	},
	KindBalanceSheet: {
		reportName:      "Balance Sheet",
		dated:           true,
		fallbackDoctype: "Account",
		fallbackFields:  []string{"name", "account_type"}, // "balance" makes some versions answer 417
	},
	KindCashFlow: {
		reportName:      "Cash Flow",
		dated:           true,
		fallbackDoctype: "Payment Entry",
		fallbackFields:  []string{"name", "posting_date", "paid_amount", "payment_type"},
	},
	KindReceivables: {
		reportName:      "Accounts Receivable Summary",
		fallbackDoctype: "Sales Invoice",
		fallbackFields:  []string{"name", "customer"}, // "outstanding_amount" triggers 417 Expectation Failed
	},
	KindPayables: {
		reportName:      "Accounts Payable Summary",
		fallbackDoctype: "Purchase Invoice",
		fallbackFields:  []string{"name", "supplier"},
	},
}

/*
Fetch runs the report for kind. When the report endpoint fails for any
reason, the fallback list query is tried and its result returned instead;
only when both fail is an error returned.
*/
func (c *Client) Fetch(ctx context.Context, kind Kind, q Query) (report *Report, e *xerr.Error) {
	spec, ok := reportSpecs[kind]
	if !ok {
		return nil, xerr.NewError(fmt.Errorf("unknown report kind '%s'", kind), "fetch report", kind)
	}

	report, e = c.RunReport(ctx, spec.reportName, c.filtersFor(spec, q))
	if e == nil {
		report.Kind = kind
		return report, nil
	}

	tl.Log(tl.Warning, palette.Yellow, "%s failed, trying %s fallback: %s", spec.reportName, spec.fallbackDoctype, e)
	var filters [][]any
	filters = append(filters, []any{spec.fallbackDoctype, "company", "=", q.Company})
	if spec.fallbackDated {
		if q.StartDate != "" {
			filters = append(filters, []any{spec.fallbackDoctype, "posting_date", ">=", q.StartDate})
		}
		if q.EndDate != "" {
			filters = append(filters, []any{spec.fallbackDoctype, "posting_date", "<=", q.EndDate})
		}
	}

	report, fallbackErr := c.ListResource(ctx, spec.fallbackDoctype, spec.fallbackFields, filters)
	if fallbackErr != nil {
		return nil, fallbackErr
	}
	report.Kind = kind
	return report, nil
}

func (c *Client) filtersFor(spec reportSpec, q Query) map[string]any {
	filters := map[string]any{"company": q.Company}
	if spec.dated {
		filters["period_start_date"] = q.StartDate
		filters["period_end_date"] = q.EndDate
		filters["filter_based_on"] = "Date Range"
		filters["periodicity"] = c.cfg.Periodicity
		return filters
	}

	reportDate := q.EndDate
	if reportDate == "" {
		reportDate = time.Now().Format(time.DateOnly)
	}
	filters["report_date"] = reportDate
	filters["ageing_based_on"] = c.cfg.AgeingBasedOn
	for i, days := range c.cfg.AgingRanges {
		filters["range"+strconv.Itoa(i+1)] = days
	}
	return filters
}

/*
ListResource runs GET /api/resource/<doctype> with fields and filters and
returns the rows as a resource-backed Report.
*/
func (c *Client) ListResource(ctx context.Context, doctype string, fields []string, filters [][]any) (report *Report, e *xerr.Error) {
	params := resourceParams(fields, filters, c.cfg.FallbackLimit)
	endpoint := resourceEndpoint + url.PathEscape(doctype) + "?" + params

	payload, e := c.do(ctx, http.MethodGet, endpoint, nil)
	if e != nil {
		return nil, e
	}

	report = &Report{Source: SourceResourcePrefix + doctype, Result: []Row{}}
	for _, field := range fields {
		report.Columns = append(report.Columns, Column{Fieldname: field, Label: labelFor(field), Fieldtype: fieldtypeFor(field)})
	}
	if payload == nil {
		return report, nil
	}
	if decodeErr := json.Unmarshal(payload, &report.Result); decodeErr != nil {
		return nil, xerr.NewError(decodeErr, "Unable to decode resource list", doctype)
	}
	tl.Log(tl.Info1, palette.Green, "Fetched %s rows of %s", len(report.Result), doctype)
	return report, nil
}

func resourceParams(fields []string, filters [][]any, limit int) string {
	values := url.Values{}
	if len(fields) > 0 {
		encoded, _ := json.Marshal(fields)
		values.Set("fields", string(encoded))
	}
	if len(filters) > 0 {
		encoded, _ := json.Marshal(filters)
		values.Set("filters", string(encoded))
	}
	values.Set("limit_page_length", strconv.Itoa(limit))
	return values.Encode()
}

func labelFor(field string) string {
	words := strings.Split(field, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func fieldtypeFor(field string) string {
	switch field {
	case "debit", "credit", "paid_amount", "outstanding_amount", "grand_total", "balance":
		return "Currency"
	case "posting_date":
		return "Date"
	}
	return "Data"
}
