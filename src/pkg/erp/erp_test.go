package erp

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// fakeERP answers query_report.run from reports and resource lists from resources.
type fakeERP struct {
	mu        sync.Mutex
	requests  []recordedRequest
	reports   map[string]string // report_name -> message JSON, missing = 500
	resources map[string]string // doctype -> data JSON
	gzip      bool
}

func (f *fakeERP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	var body string
	switch {
	case r.URL.Path == "/api/method/frappe.desk.query_report.run":
		name, _ := rec.Body["report_name"].(string)
		message, ok := f.reports[name]
		if !ok {
			http.Error(w, `{"exc_type":"PermissionError"}`, http.StatusInternalServerError)
			return
		}
		body = `{"message":` + message + `}`
	case strings.HasPrefix(r.URL.Path, "/api/resource/"):
		doctype := strings.TrimPrefix(r.URL.Path, "/api/resource/")
		data, ok := f.resources[doctype]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		body = `{"data":` + data + `}`
	case r.URL.Path == "/api/method/frappe.auth.get_logged_user":
		body = `{"message":"Administrator"}`
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if f.gzip {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(body))
		_ = gz.Close()
		return
	}
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, fake *fakeERP) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := DefaultValueConfig()
	cfg.URL = server.URL + "/"
	return NewClient(cfg, Credentials{APIKey: "key", APISecret: "secret"})
}

func TestResolve(t *testing.T) {
	client := NewClient(Config{URL: "https://erp.example.com/"}, Credentials{})
	assert.Equal(t, "https://erp.example.com/api/resource/Company", client.resolve("/resource/Company"))
	assert.Equal(t, "https://erp.example.com/api/method/x", client.resolve("/api/method/x"))
	assert.Equal(t, "https://erp.example.com/api/method/x", client.resolve("method/x"))
}

func TestRunReportSendsFiltersAndToken(t *testing.T) {
	fake := &fakeERP{reports: map[string]string{
		"Profit and Loss Statement": `{"columns":["Account:Link/Account:200",{"fieldname":"total","label":"Total","fieldtype":"Currency"}],
			"result":[["Income", 1000, 100],{"account_name":"Sales","total":"1,250.50"}],
			"chart":{"type":"bar","data":{"labels":["Income","Expense"],"datasets":[{"name":"2025","values":[1000,-400]}]}}}`,
	}}
	client := newTestClient(t, fake)

	report, e := client.Fetch(context.Background(), KindProfitAndLoss, Query{Company: "Acme", StartDate: "2025-01-01", EndDate: "2025-03-31"})
	require.Nil(t, e)
	require.NotNil(t, report)

	assert.Equal(t, KindProfitAndLoss, report.Kind)
	assert.Equal(t, SourceQueryReport, report.Source)
	require.Len(t, report.Columns, 2)
	assert.Equal(t, Column{Fieldname: "account", Label: "Account", Fieldtype: "Link", Options: "Account"}, report.Columns[0])
	assert.True(t, report.Columns[1].IsNumeric())

	require.Len(t, report.Result, 2)
	assert.True(t, report.Result[0].IsArray())
	assert.Equal(t, "Income", report.Result[0].Cell(0))
	assert.False(t, report.Result[1].IsArray())
	assert.Equal(t, "1,250.50", report.Result[1].Field("total"))

	dataset, ok := report.Chart.FirstDataset()
	require.True(t, ok)
	assert.Len(t, dataset.Values, 2)

	require.Len(t, fake.requests, 1)
	sent := fake.requests[0]
	assert.Equal(t, http.MethodPost, sent.Method)
	assert.Equal(t, "token key:secret", sent.Auth)
	assert.Equal(t, "Profit and Loss Statement", sent.Body["report_name"])
	filters := sent.Body["filters"].(map[string]any)
	assert.Equal(t, "Acme", filters["company"])
	assert.Equal(t, "2025-01-01", filters["period_start_date"])
	assert.Equal(t, "2025-03-31", filters["period_end_date"])
	assert.Equal(t, "Date Range", filters["filter_based_on"])
}

func TestAgingReportFilters(t *testing.T) {
	fake := &fakeERP{reports: map[string]string{"Accounts Receivable Summary": `{"result":[]}`}}
	client := newTestClient(t, fake)

	_, e := client.Fetch(context.Background(), KindReceivables, Query{Company: "Acme", EndDate: "2025-03-31"})
	require.Nil(t, e)

	filters := fake.requests[0].Body["filters"].(map[string]any)
	assert.Equal(t, "2025-03-31", filters["report_date"])
	assert.Equal(t, "Due Date", filters["ageing_based_on"])
	assert.EqualValues(t, 30, filters["range1"])
	assert.EqualValues(t, 120, filters["range4"])
	_, dated := filters["period_start_date"]
	assert.False(t, dated)
}

func TestFetchFallsBackToResourceList(t *testing.T) {
	fake := &fakeERP{
		reports: map[string]string{},
		resources: map[string]string{
			"GL Entry": `[{"posting_date":"2025-01-05","account":"Sales - A","debit":0,"credit":500}]`,
		},
		gzip: true,
	}
	client := newTestClient(t, fake)

	report, e := client.Fetch(context.Background(), KindProfitAndLoss, Query{Company: "Acme", StartDate: "2025-01-01", EndDate: "2025-01-31"})
	require.Nil(t, e)
	assert.Equal(t, "resource:GL Entry", report.Source)
	assert.Equal(t, "GL Entry", report.Doctype())
	assert.True(t, report.FromResource())
	require.Len(t, report.Result, 1)
	assert.Equal(t, "Sales - A", report.Result[0].Field("account"))
	assert.Equal(t, "Credit", report.Columns[3].Label)

	require.Len(t, fake.requests, 2)
	fallback := fake.requests[1]
	assert.Equal(t, "/api/resource/GL Entry", fallback.Path)
	assert.Contains(t, fallback.Query, "posting_date")
	assert.Contains(t, fallback.Query, "fields=")
}

func TestFetchFailsWhenBothPathsFail(t *testing.T) {
	client := newTestClient(t, &fakeERP{reports: map[string]string{}, resources: map[string]string{}})
	report, e := client.Fetch(context.Background(), KindBalanceSheet, Query{Company: "Acme"})
	assert.Nil(t, report)
	assert.NotNil(t, e)
}

func TestUnconfiguredClientRefuses(t *testing.T) {
	fake := &fakeERP{}
	server := httptest.NewServer(fake)
	defer server.Close()

	client := NewClient(Config{URL: server.URL}, Credentials{APIKey: "only-key"})
	assert.False(t, client.Configured())
	_, e := client.RunReport(context.Background(), "Balance Sheet", nil)
	assert.NotNil(t, e)
	assert.Empty(t, fake.requests, "no network call without credentials")
}

func TestCompaniesAndWhoAmI(t *testing.T) {
	fake := &fakeERP{resources: map[string]string{
		"Company": `[{"name":"Acme","company_name":"Acme Ltd"}]`,
	}}
	client := newTestClient(t, fake)

	companies, e := client.Companies(context.Background())
	require.Nil(t, e)
	assert.Equal(t, []Company{{Name: "Acme", CompanyName: "Acme Ltd"}}, companies)
	assert.Contains(t, fake.requests[0].Query, "limit_page_length=0")

	assert.Equal(t, "Administrator", client.WhoAmI(context.Background()))
}

func TestCompaniesErrorReturnsEmptyList(t *testing.T) {
	client := newTestClient(t, &fakeERP{resources: map[string]string{}})
	companies, e := client.Companies(context.Background())
	assert.Nil(t, e)
	assert.NotNil(t, companies)
	assert.Empty(t, companies)
}

func TestCompaniesServerErrorIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"exc":"boom"}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL}, Credentials{APIKey: "k", APISecret: "s"})
	companies, e := client.Companies(context.Background())
	assert.Nil(t, e)
	assert.Equal(t, []Company{}, companies)
}

func TestCompaniesWithoutCredentialsIsAnError(t *testing.T) {
	client := NewClient(Config{URL: "http://erp.invalid"}, Credentials{})
	companies, e := client.Companies(context.Background())
	assert.NotNil(t, e)
	assert.Equal(t, []Company{}, companies)
}

func TestInvalidJSONIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL}, Credentials{APIKey: "k", APISecret: "s"})
	_, e := client.RunReport(context.Background(), "Cash Flow", nil)
	assert.NotNil(t, e)
}

func TestRowShapes(t *testing.T) {
	var rows []Row
	require.NoError(t, json.Unmarshal([]byte(`[["a",1],{"b":2},null,[],"x"]`), &rows))
	require.Len(t, rows, 5)
	assert.True(t, rows[0].IsArray())
	assert.Equal(t, float64(2), rows[1].Field("b"))
	assert.True(t, rows[2].IsEmpty())
	assert.True(t, rows[3].IsEmpty())
	assert.Equal(t, "x", rows[4].Cell(0))
	assert.Nil(t, rows[0].Cell(7))

	encoded, err := json.Marshal(rows[:2])
	require.NoError(t, err)
	assert.JSONEq(t, `[["a",1],{"b":2}]`, string(encoded))
}

func TestFieldSkipsBlankValues(t *testing.T) {
	row := Row{Fields: map[string]any{"party_name": "  ", "party": "CUST-1"}}
	assert.Equal(t, "CUST-1", row.Field("party_name", "party"))
	assert.Nil(t, row.Field("missing"))
}

func TestBundleGetSet(t *testing.T) {
	var bundle Bundle
	for _, kind := range Kinds {
		bundle.Set(kind, &Report{Kind: kind})
	}
	for _, kind := range Kinds {
		assert.Equal(t, kind, bundle.Get(kind).Kind)
	}
	assert.Equal(t, "profitAndLoss", KindProfitAndLoss.BundleKey())
	var nilBundle *Bundle
	assert.Nil(t, nilBundle.Get(KindPayables))
}
