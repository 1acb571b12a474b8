// Package budget tracks cumulative token usage and API cost across chat calls.
package budget

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Usage holds cumulative token counts.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Tracker accumulates token usage and cost across chat calls. Models without
// a pricing entry (all local models) accumulate tokens at zero cost. It is
// safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	totalUsage Usage
	totalCost  decimal.Decimal
	calls      int
	pricing    map[string]ModelPricing
}

// NewTracker creates a tracker priced from the given table. A nil table uses
// DefaultPricing.
func NewTracker(pricing map[string]ModelPricing) *Tracker {
	if pricing == nil {
		pricing = DefaultPricing
	}
	return &Tracker{
		totalCost: decimal.Zero,
		pricing:   pricing,
	}
}

// Record adds the token counts of a single chat call and updates the
// cumulative cost.
func (t *Tracker) Record(model string, promptTokens, completionTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls++
	t.totalUsage.PromptTokens += promptTokens
	t.totalUsage.CompletionTokens += completionTokens

	pricing, ok := t.pricing[model]
	if !ok {
		return // unknown model: tokens counted, no cost added
	}
	t.totalCost = t.totalCost.
		Add(pricing.CostForInput(promptTokens)).
		Add(pricing.CostForOutput(completionTokens))
}

// TotalUsage returns the cumulative token usage across all recorded calls.
func (t *Tracker) TotalUsage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalUsage
}

// TotalCost returns the cumulative cost across all recorded calls.
func (t *Tracker) TotalCost() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCost
}

// Calls returns the number of recorded chat calls.
func (t *Tracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
