package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ostglass/squire"
)

const (
	defaultFetchTimeoutSec = 30
	maxFetchBytes          = 512_000
)

// WebFetchInput defines the input for the web_fetch tool.
type WebFetchInput struct {
	URL     string            `json:"url" jsonschema:"required,description=The URL to fetch content from"`
	Method  string            `json:"method,omitempty" jsonschema:"description=HTTP method to use. Default is GET"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"description=Optional HTTP headers to include in the request"`
	Body    string            `json:"body,omitempty" jsonschema:"description=Optional request body for POST/PUT requests"`
	Timeout *int              `json:"timeout,omitempty" jsonschema:"description=Request timeout in seconds. Default is 30"`
}

// WebFetchTool performs an HTTP request and returns the status, final URL,
// and body as text. Client overrides the transport for tests; nil builds one
// per call with the requested timeout.
type WebFetchTool struct {
	Client *http.Client
}

var _ squire.Tool[WebFetchInput] = (*WebFetchTool)(nil)

func (t *WebFetchTool) Name() string { return "web_fetch" }
func (t *WebFetchTool) Description() string {
	return "Fetch content from a URL. Supports various HTTP methods, custom headers, and timeouts. Returns the response body as text."
}

var supportedMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodDelete: true, http.MethodPatch: true, http.MethodHead: true,
}

func (t *WebFetchTool) Execute(ctx context.Context, input WebFetchInput) (*squire.ToolResult, error) {
	if input.URL == "" {
		return squire.ErrorResult("url is required"), nil
	}

	method := http.MethodGet
	if input.Method != "" {
		method = strings.ToUpper(input.Method)
		if !supportedMethods[method] {
			return squire.ErrorResult(fmt.Sprintf("unsupported HTTP method: %s", input.Method)), nil
		}
	}

	timeout := defaultFetchTimeoutSec * time.Second
	if input.Timeout != nil && *input.Timeout > 0 {
		timeout = time.Duration(*input.Timeout) * time.Second
	}
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	var body io.Reader
	if input.Body != "" {
		body = strings.NewReader(input.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, input.URL, body)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("invalid request: %s", err.Error())), nil
	}
	for key, value := range input.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("request failed: %s", err.Error())), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("failed to read response body: %s", err.Error())), nil
	}
	text := string(data)
	if len(text) > maxFetchBytes {
		text = text[:maxFetchBytes] + "\n... [content truncated]"
	}

	return squire.TextResult(fmt.Sprintf("Status: %s\nURL: %s\n\n%s", resp.Status, resp.Request.URL, text)), nil
}
