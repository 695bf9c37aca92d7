/*
Package erp is a small REST client for the ERPNext (Frappe) API.

It knows how to run the five financial reports the dashboard shows, how to
fall back to plain resource list queries when a report endpoint refuses, and
how to read the Frappe {"message": ...} / {"data": ...} envelopes.
*/
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/util"
)

const (
	runReportEndpoint  = "/method/frappe.desk.query_report.run"
	loggedUserEndpoint = "/method/frappe.auth.get_logged_user"
	resourceEndpoint   = "/resource/"
)

type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
	timeout     time.Duration
	cfg         Config
}

// NewClient builds a client for cfg.URL. Credentials usually come from CredentialsFromEnv.
func NewClient(cfg Config, credentials Credentials) *Client {
	tl.Log(tl.Info, palette.Blue, "%s initialized with URL '%s'", "ERP client", cfg.URL)
	if len(credentials.Problems()) > 0 {
		tl.Log(tl.Warning, palette.Yellow, "%s or %s %s. API calls will fail.", EnvAPIKey, EnvAPISecret, "not set")
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		credentials: credentials,
		httpClient:  &http.Client{},
		timeout:     cfg.Timeout(),
		cfg:         cfg,
	}
}

// Configured reports whether url, key and secret are all present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.credentials.APIKey != "" && c.credentials.APISecret != ""
}

// BaseURL is the ERP origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

/*
resolve joins endpoint to the base url. Endpoints that already start with
/api are used as-is, everything else gets /api prefixed.
*/
func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "/api") {
		return c.baseURL + endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + "/api" + endpoint
}

// envelope is the outer object of every Frappe response.
type envelope struct {
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// payload prefers message (methods) over data (resources).
func (env envelope) payload() json.RawMessage {
	if len(env.Message) > 0 && string(env.Message) != "null" {
		return env.Message
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return nil
}

/*
do performs one request and returns the unwrapped payload.

Non-2xx answers become an error carrying the status and body. A body that is
not JSON is an error too. A JSON body without message/data returns nil payload.
*/
func (c *Client) do(ctx context.Context, method, endpoint string, body any) (payload json.RawMessage, e *xerr.Error) {
	if !c.Configured() {
		return nil, xerr.NewError(fmt.Errorf("ERPNext credentials not configured"), "ERP request refused", endpoint)
	}

	url := c.resolve(endpoint)
	var bodyReader *bytes.Reader
	if body != nil {
		encoded, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, xerr.NewError(marshalErr, "Failed to marshal ERP request body", endpoint)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var req *http.Request
	var newReqErr error
	if bodyReader != nil {
		req, newReqErr = http.NewRequestWithContext(ctx, method, url, bodyReader)
	} else {
		req, newReqErr = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if newReqErr != nil {
		return nil, xerr.NewError(newReqErr, "Failed to create ERP request", url)
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.credentials.APIKey, c.credentials.APISecret))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	tl.Log(tl.Verbose, palette.Blue, "%s %s '%s'", "Fetching", method, url)
	resp, httpErr := c.httpClient.Do(req)
	if httpErr != nil {
		return nil, xerr.NewError(httpErr, "HTTP error during ERP request", map[string]any{"url": url})
	}
	defer resp.Body.Close()

	respBody, e := util.GetBody(resp, url)
	if e != nil {
		return nil, e
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tl.Log(tl.Warning, palette.PurpleBright, "ERP API error %s for '%s'", resp.StatusCode, url)
		return nil, xerr.NewError(fmt.Errorf("ERPNext API error: %d", resp.StatusCode), "ERP request failed", string(respBody))
	}

	var env envelope
	if decodeErr := json.Unmarshal(respBody, &env); decodeErr != nil {
		return nil, xerr.NewError(decodeErr, "Invalid JSON response from ERPNext API", url)
	}
	tl.Log(tl.Verbose5, palette.GreenDim, "Got ERP payload of %s bytes from '%s'", len(respBody), url)
	return env.payload(), nil
}

/*
RunReport calls frappe.desk.query_report.run for reportName with filters and
decodes the message into a Report.
*/
func (c *Client) RunReport(ctx context.Context, reportName string, filters map[string]any) (report *Report, e *xerr.Error) {
	body := map[string]any{"report_name": reportName, "filters": filters}
	payload, e := c.do(ctx, http.MethodPost, runReportEndpoint, body)
	if e != nil {
		return nil, e
	}
	if payload == nil {
		return &Report{Source: SourceQueryReport}, nil
	}

	report = &Report{}
	if decodeErr := json.Unmarshal(payload, report); decodeErr != nil {
		return nil, xerr.NewError(decodeErr, "Unable to decode report payload", reportName)
	}
	report.Source = SourceQueryReport
	return report, nil
}

/*
Companies lists every company the API user can see. A failed or undecodable
request is logged and yields an empty list; only a client without
credentials returns an error.
*/
func (c *Client) Companies(ctx context.Context) (companies []Company, e *xerr.Error) {
	if !c.Configured() {
		return []Company{}, xerr.NewError(fmt.Errorf("ERPNext credentials not configured"), "list companies", c.baseURL)
	}

	params := resourceParams([]string{"name", "company_name"}, nil, 0)
	payload, e := c.do(ctx, http.MethodGet, resourceEndpoint+"Company?"+params, nil)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Error fetching companies: %s", e)
		return []Company{}, nil
	}

	companies = []Company{}
	if payload == nil {
		return companies, nil
	}
	if decodeErr := json.Unmarshal(payload, &companies); decodeErr != nil {
		tl.Log(tl.Warning, palette.Yellow, "Unable to decode companies: %s", decodeErr)
		return []Company{}, nil
	}
	tl.Log(tl.Info1, palette.Green, "Fetched %s companies", len(companies))
	return companies, nil
}

// WhoAmI returns the user the API key belongs to, "" when the ERP will not say.
func (c *Client) WhoAmI(ctx context.Context) string {
	payload, e := c.do(ctx, http.MethodGet, loggedUserEndpoint, nil)
	if e != nil || payload == nil {
		tl.Log(tl.Warning, palette.Yellow, "whoAmI %s: %v", "failed", e)
		return ""
	}
	var user string
	if err := json.Unmarshal(payload, &user); err != nil {
		return strings.Trim(string(payload), `"`)
	}
	return user
}
