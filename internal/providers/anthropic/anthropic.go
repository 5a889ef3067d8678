// Package anthropic provides the Anthropic Messages API client and the
// translation between gateway and upstream payloads.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"llmgateway/internal/core"
	"llmgateway/internal/httpclient"
)

const (
	// DefaultBaseURL is the public Anthropic API root
	DefaultBaseURL      = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
	messagesEndpoint    = "/messages"
)

// Hooks observes the outcome of every upstream call
type Hooks interface {
	OnUpstreamResult(model string, duration time.Duration, err error)
}

// Client sends Messages API requests to Anthropic
type Client struct {
	httpClient *http.Client
	baseURL    string
	hooks      Hooks
}

// New creates a new Anthropic client over a transport built from cfg
func New(cfg httpclient.ClientConfig) *Client {
	return NewWithHTTPClient(httpclient.NewHTTPClient(cfg))
}

// NewWithHTTPClient creates a new Anthropic client with a custom HTTP client
func NewWithHTTPClient(client *http.Client) *Client {
	return &Client{
		httpClient: client,
		baseURL:    DefaultBaseURL,
	}
}

// SetBaseURL allows configuring a custom base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetHooks registers an observer for upstream call outcomes
func (c *Client) SetHooks(hooks Hooks) {
	c.hooks = hooks
}

// Send performs one authenticated POST to the messages endpoint.
// There is no retry: the first outcome is the final one.
//
// Hooks receive the model reported by upstream, never the one the caller
// asked for; failed calls report an empty model.
func (c *Client) Send(ctx context.Context, req *MessagesRequest, apiKey string) (resp *MessagesResponse, err error) {
	if c.hooks != nil {
		start := time.Now()
		defer func() {
			model := ""
			if err == nil && resp != nil {
				model = resp.Model
			}
			c.hooks.OnUpstreamResult(model, time.Since(start), err)
		}()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, core.NewTransportError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, core.NewTransportError(err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewTransportError(err)
	}
	defer func() {
		_ = httpResp.Body.Close() //nolint:errcheck
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, core.NewTransportError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		slog.Warn("upstream rejected request",
			"status", httpResp.StatusCode,
			"model", req.Model,
			"error_type", upstreamErrorType(respBody),
			"request_id", core.RequestID(ctx),
		)
		return nil, core.NewUpstreamError(httpResp.StatusCode, respBody)
	}

	var messagesResp MessagesResponse
	if err := json.Unmarshal(respBody, &messagesResp); err != nil {
		return nil, core.NewDecodeError(err)
	}

	return &messagesResp, nil
}

// upstreamErrorType reads error.type from an Anthropic error body, if any.
func upstreamErrorType(body []byte) string {
	if !gjson.ValidBytes(body) {
		return "unknown"
	}
	if t := gjson.GetBytes(body, "error.type"); t.Exists() {
		return t.String()
	}
	return "unknown"
}
