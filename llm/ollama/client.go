// Package ollama implements the squire.ChatClient contract against an Ollama
// chat endpoint, including the incremental NDJSON stream decoder.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ostglass/squire"
)

// Client posts conversations to one chat endpoint and decodes the reply.
// Configuration is fixed at construction; a Client is stateless across calls
// and safe to share. Call sites that need different settings (a tool-less
// subagent client, say) construct a fresh Client instead of mutating one.
type Client struct {
	httpc    *http.Client
	baseURL  string
	model    string
	stream   bool
	think    bool
	tools    []squire.ToolDefinition
	observer squire.EventSink
	logger   *slog.Logger
}

var _ squire.ChatClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The default has no
// timeout, since a streamed generation legitimately runs for minutes.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithBaseURL sets the endpoint base URL. Trailing slashes are trimmed.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithModel sets the model identifier sent with every request.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithStream toggles streaming. Non-streaming calls return the same
// aggregated response but feed no observer.
func WithStream(stream bool) Option {
	return func(c *Client) { c.stream = stream }
}

// WithThink toggles the endpoint's reasoning mode.
func WithThink(think bool) Option {
	return func(c *Client) { c.think = think }
}

// WithToolDefs attaches the tool definitions advertised on every request.
// A client built without definitions yields a model that cannot request
// tools at all.
func WithToolDefs(defs []squire.ToolDefinition) Option {
	return func(c *Client) { c.tools = defs }
}

// WithObserver sets the sink that receives reasoning and content fragments
// as they stream.
func WithObserver(obs squire.EventSink) Option {
	return func(c *Client) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Client. Defaults: the well-known local endpoint, streaming
// and reasoning on, no tools.
func New(opts ...Option) *Client {
	c := &Client{
		httpc:    &http.Client{},
		baseURL:  squire.DefaultBaseURL,
		model:    squire.DefaultModel,
		stream:   true,
		think:    true,
		observer: squire.NopSink{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Chat sends the conversation in one POST and blocks until the full response
// has been decoded. Transport failures and non-2xx statuses are fatal for
// the call; malformed individual stream chunks are not.
func (c *Client) Chat(ctx context.Context, messages []squire.Message) (*squire.Response, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   c.stream,
		Think:    c.think,
		Tools:    c.tools,
	}
	c.logger.Debug("chat request",
		"model", c.model, "messages", len(messages), "tools", len(c.tools), "stream", c.stream)

	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, readAPIError(resp)
	}

	if c.stream {
		return decodeStream(ctx, resp.Body, c.observer)
	}
	return decodeSingle(resp.Body)
}

func (c *Client) doRequest(ctx context.Context, payload chatRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ollama api status %d: %w", resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var apiErr errorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
}
