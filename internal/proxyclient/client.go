// Package proxyclient calls the compass backend's /api/proxy endpoint.
package proxyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout is longer than the server's upstream timeout so the
	// server's own error normally arrives first.
	DefaultTimeout = 90 * time.Second

	proxyPath = "/api/proxy"

	unknownServerError = "Unknown server error"
	configIncompleteID = "API配置不完整"
)

// ProxyError is the single error type returned by Client. Status is zero
// for transport failures.
type ProxyError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
	Err     error
}

func (e *ProxyError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("proxy unreachable: %s", e.Message)
	}
	return e.Message
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

// ConfigIncomplete reports whether the server rejected the call because its
// API settings are missing.
func (e *ProxyError) ConfigIncomplete() bool {
	return e != nil && strings.Contains(e.Message, configIncompleteID)
}

// Client issues exactly one request per call and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type proxyRequest struct {
	Prompt     string `json:"prompt"`
	IsJSONMode bool   `json:"isJsonMode"`
}

type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// Complete posts prompt and returns the raw JSON body: a JSON string in text
// mode, the model's JSON value in JSON mode.
func (c *Client) Complete(ctx context.Context, prompt string, jsonMode bool) (json.RawMessage, error) {
	payload, err := json.Marshal(proxyRequest{Prompt: prompt, IsJSONMode: jsonMode})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+proxyPath, bytes.NewReader(payload))
	if err != nil {
		return nil, &ProxyError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProxyError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProxyError{Status: resp.StatusCode, Message: unknownServerError, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, body)
	}
	if !json.Valid(body) {
		return nil, &ProxyError{Status: resp.StatusCode, Message: "invalid proxy response body"}
	}
	return json.RawMessage(body), nil
}

// CompleteText is Complete in text mode, decoding the JSON string reply.
func (c *Client) CompleteText(ctx context.Context, prompt string) (string, error) {
	raw, err := c.Complete(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", &ProxyError{Status: http.StatusOK, Message: "proxy reply is not a string", Details: raw, Err: err}
	}
	return text, nil
}

func decodeError(status int, body []byte) *ProxyError {
	out := &ProxyError{Status: status, Message: unknownServerError}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return out
	}
	if strings.TrimSpace(eb.Message) != "" {
		out.Message = eb.Message
	}
	out.Code = eb.Code
	if len(eb.Details) > 0 && string(eb.Details) != "null" {
		out.Details = eb.Details
	}
	return out
}
