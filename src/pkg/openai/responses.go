package openai

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

/*
This file contains a tiny REST client for the OpenAI Responses API.

Key pieces:
- POST /v1/responses (createResponse): synchronous or may return an in-progress response
- GET  /v1/responses/{id} (getResponseByID): fetch status/output/usage
*/

const GetResponseTimeout = 30 * time.Second // metadata fetch should be fast

type Client struct {
	apiKey       string
	baseURL      string
	cfg          Config
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewClient talks to cfg.BaseURL with apiKey (usually os.Getenv(EnvAPIKey)).
func NewClient(cfg Config, apiKey string) *Client {
	return &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		pollInterval: cfg.pollInterval(),
		pollTimeout:  cfg.pollTimeout(),
	}
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Model() string { return c.cfg.Model }

/*
createResponse performs POST /v1/responses and returns the parsed response object.
It may return a "completed" response immediately, or an "in_progress" one when
background mode is on.
*/
func (c *Client) createResponse(ctx context.Context, payload requestPayload) (response responseObject, e *xerr.Error) {
	url := c.baseURL + "/responses"
	tl.Log(tl.Info, palette.Blue, "%s %s to '%s'", "Creating", "response", url)

	encoded, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return responseObject{}, xerr.NewError(marshalErr, "Failed to marshal request payload", payload.Model)
	}

	req, newReqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if newReqErr != nil {
		return responseObject{}, xerr.NewError(newReqErr, "Failed to create HTTP request", nil)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, "createResponse")
}

/*
getResponseByID performs GET /v1/responses/{id} and returns the parsed response object.
*/
func (c *Client) getResponseByID(ctx context.Context, responseID string) (response responseObject, e *xerr.Error) {
	url := fmt.Sprintf("%s/responses/%s", c.baseURL, responseID)

	ctx, cancel := context.WithTimeout(ctx, GetResponseTimeout)
	defer cancel()

	req, newReqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if newReqErr != nil {
		return responseObject{}, xerr.NewError(newReqErr, "Failed to create HTTP request", map[string]any{"response_id": responseID})
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.send(req, "getResponseByID")
}

func (c *Client) send(req *http.Request, operation string) (response responseObject, e *xerr.Error) {
	url := req.URL.String()
	resp, httpErr := c.httpClient.Do(req)
	if httpErr != nil {
		return responseObject{}, xerr.NewError(httpErr, "HTTP error during "+operation, map[string]any{"url": url})
	}
	defer resp.Body.Close()

	respBody, e := util.GetBody(resp, url)
	if e != nil {
		return responseObject{}, e
	}
	if resp.StatusCode != http.StatusOK {
		return responseObject{}, xerr.NewError(fmt.Errorf("status is '%s'", resp.Status), "API error from "+operation, string(respBody))
	}
	tl.Log(tl.Debug, palette.CyanDim, "openai response body: %s", string(respBody))

	var parsed responseObject
	if decodeErr := json.Unmarshal(respBody, &parsed); decodeErr != nil {
		return responseObject{}, xerr.NewError(decodeErr, "Failed to decode response body", nil)
	}
	return parsed, nil
}

/*
extractOutputText collects all "output_text" fragments from the response into a single string.
*/
func extractOutputText(resp *responseObject) string {
	var builder strings.Builder
	for _, out := range resp.Output {
		if out.Type != "message" {
			continue
		}
		for _, c := range out.Content {
			if c.Type == "output_text" && c.Text != "" {
				builder.WriteString(c.Text)
			}
		}
	}
	return builder.String()
}

/*
waitForResponseCompletion polls GET /v1/responses/{id} every interval until a
terminal state, until c.pollTimeout passes or until ctx ends. On success,
returns the final response object. On failure/cancel/expire/timeout, returns
a *xerr.Error carrying the API's error payload where available.
*/
func (c *Client) waitForResponseCompletion(ctx context.Context, responseID string) (final responseObject, e *xerr.Error) {
	previousStatus := ""
	poll := 0

	if c.pollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.pollTimeout)
		defer cancel()
	}

	var lastResp responseObject
	for {
		poll += 1

		resp, getErr := c.getResponseByID(ctx, responseID)
		if getErr != nil {
			return lastResp, getErr
		}
		lastResp = resp

		if resp.Status != previousStatus {
			tl.Log(tl.Verbose, palette.Cyan, "Response status changed: '%s'", resp.Status)
			previousStatus = resp.Status
		}
		tl.Log(tl.Verbose1, palette.Cyan, "Poll #%v: status is '%s'", poll, resp.Status)

		switch resp.Status {
		case StatusCompleted, StatusIncomplete, "":
			return resp, nil
		case StatusFailed, StatusCancelled, StatusExpired:
			msg := fmt.Sprintf("Response ended with status '%s'", resp.Status)
			tl.Log(tl.Info1, palette.Purple, "%s id is '%s'", msg, responseID)
			return resp, xerr.NewError(fmt.Errorf("%s", resp.Status), msg, resp.Error)
		}

		if waitErr := util.WaitForSeconds(ctx, c.pollInterval.Seconds()); waitErr != nil {
			tl.Log(tl.Info1, palette.Purple, "Response polling %s; last known id='%s'", "stopped", responseID)
			lastResp.Status = "timeout"
			return lastResp, waitErr
		}
	}
}
