package squire

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/ostglass/squire/internal/schema"
)

// Tool is the generic interface for agent tools. The type parameter T defines
// the input struct that will be automatically deserialized from JSON; its
// schema is derived from struct tags at registration time.
type Tool[T any] interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input T) (*ToolResult, error)
}

// ToolResult is the output of a tool execution. IsError marks a
// tool-domain failure whose Content describes what went wrong; the dispatch
// policy of the calling loop decides whether that fails the turn or is shown
// to the model.
type ToolResult struct {
	Content  string
	IsError  bool
	Metadata map[string]any
}

// TextResult is a convenience constructor for a successful text result.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: text}
}

// ErrorResult is a convenience constructor for an error tool result.
func ErrorResult(text string) *ToolResult {
	return &ToolResult{Content: text, IsError: true}
}

// toolEntry is the type-erased wrapper stored in the registry.
type toolEntry struct {
	definition ToolDefinition
	execute    func(ctx context.Context, raw json.RawMessage) (*ToolResult, error)
}

// ToolRegistry manages registered tools in registration order. It is
// concurrent-safe; definitions it hands out are shared read-only across every
// agent in the process.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]*toolEntry
	order []string // preserve registration order
}

// NewToolRegistry creates a new empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]*toolEntry),
	}
}

// RegisterTool registers a generic tool into the registry.
// The input type T is used to auto-generate a JSON Schema.
func RegisterTool[T any](r *ToolRegistry, tool Tool[T]) {
	s := schema.Generate[T]()
	def := NewToolDefinition(tool.Name(), tool.Description(), ParametersSchema{
		Type:       s.Type,
		Properties: s.Properties,
		Required:   s.Required,
	})
	r.register(&toolEntry{
		definition: def,
		execute: func(ctx context.Context, raw json.RawMessage) (*ToolResult, error) {
			var input T
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &input); err != nil {
					return ErrorResult(fmt.Sprintf("invalid input: %s", err.Error())), nil
				}
			}
			return tool.Execute(ctx, input)
		},
	})
}

// RegisterRaw registers a tool with a pre-built definition and execute
// function. This is the escape hatch for dynamic tool sources that don't use
// the generic Tool[T] interface.
func (r *ToolRegistry) RegisterRaw(
	def ToolDefinition,
	execute func(ctx context.Context, raw json.RawMessage) (*ToolResult, error),
) {
	r.register(&toolEntry{definition: def, execute: execute})
}

func (r *ToolRegistry) register(entry *toolEntry) {
	name := entry.definition.Function.Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = entry
}

// Execute runs a tool by name with the given raw JSON input.
func (r *ToolRegistry) Execute(ctx context.Context, name string, input json.RawMessage) (*ToolResult, error) {
	r.mu.RLock()
	entry, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return entry.execute(ctx, input)
}

// Definitions returns the registered tool definitions in registration order.
func (r *ToolRegistry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(name string, _ int) ToolDefinition {
		return r.tools[name].definition
	})
}

// Names returns the names of all registered tools in registration order.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
