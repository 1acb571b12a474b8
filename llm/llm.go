// Package llm constructs chat clients from resolved settings.
//
// The provider adapters live in sub-packages (ollama, openai, anthropic) and
// all satisfy squire.ChatClient; this package only maps a settings value onto
// the right constructor. Callers that need a second client with different
// knobs (a tool-less subagent client, say) call New again rather than
// mutating the first.
package llm

import (
	"fmt"
	"log/slog"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/ostglass/squire"
	"github.com/ostglass/squire/config"
	"github.com/ostglass/squire/llm/anthropic"
	"github.com/ostglass/squire/llm/ollama"
	"github.com/ostglass/squire/llm/openai"
)

// Options carries the per-client knobs that vary between the top-level agent
// and its subagents. Stream and Think are honored by the ollama provider
// only; the hosted providers are request-response.
type Options struct {
	Tools    []squire.ToolDefinition
	Stream   bool
	Think    bool
	Observer squire.EventSink
	Logger   *slog.Logger
}

// New builds a chat client for the provider named in the settings. An empty
// provider means ollama.
func New(s *config.Settings, o Options) (squire.ChatClient, error) {
	switch s.Provider {
	case config.ProviderOllama, "":
		opts := []ollama.Option{
			ollama.WithBaseURL(s.BaseURL),
			ollama.WithModel(s.Model),
			ollama.WithStream(o.Stream),
			ollama.WithThink(o.Think),
			ollama.WithToolDefs(o.Tools),
			ollama.WithObserver(o.Observer),
		}
		if o.Logger != nil {
			opts = append(opts, ollama.WithLogger(o.Logger))
		}
		return ollama.New(opts...), nil

	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithModel(s.Model),
			openai.WithToolDefs(o.Tools),
			openai.WithObserver(o.Observer),
		}
		if s.BaseURL != "" {
			opts = append(opts, openai.WithClientOptions(openaiopt.WithBaseURL(s.BaseURL)))
		}
		if o.Logger != nil {
			opts = append(opts, openai.WithLogger(o.Logger))
		}
		return openai.New(opts...), nil

	case config.ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithModel(s.Model),
			anthropic.WithToolDefs(o.Tools),
			anthropic.WithObserver(o.Observer),
		}
		if s.BaseURL != "" {
			opts = append(opts, anthropic.WithClientOptions(anthropicopt.WithBaseURL(s.BaseURL)))
		}
		if o.Logger != nil {
			opts = append(opts, anthropic.WithLogger(o.Logger))
		}
		return anthropic.New(opts...), nil

	default:
		return nil, fmt.Errorf("llm: unknown provider %q", s.Provider)
	}
}
