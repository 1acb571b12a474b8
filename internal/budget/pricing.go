package budget

import "github.com/shopspring/decimal"

var million = decimal.NewFromInt(1_000_000)

// ModelPricing holds per-million-token prices in USD for one model.
type ModelPricing struct {
	InputPerMTok  decimal.Decimal
	OutputPerMTok decimal.Decimal
}

// CostForInput returns the cost of the given number of prompt tokens.
func (p ModelPricing) CostForInput(tokens int64) decimal.Decimal {
	return p.InputPerMTok.Mul(decimal.NewFromInt(tokens)).Div(million)
}

// CostForOutput returns the cost of the given number of completion tokens.
func (p ModelPricing) CostForOutput(tokens int64) decimal.Decimal {
	return p.OutputPerMTok.Mul(decimal.NewFromInt(tokens)).Div(million)
}

// DefaultPricing lists per-million-token prices for hosted models. Local
// models served through Ollama are intentionally absent and cost nothing.
var DefaultPricing = map[string]ModelPricing{
	"claude-sonnet-4-5": {
		InputPerMTok:  decimal.NewFromInt(3),
		OutputPerMTok: decimal.NewFromInt(15),
	},
	"claude-haiku-4-5": {
		InputPerMTok:  decimal.NewFromInt(1),
		OutputPerMTok: decimal.NewFromInt(5),
	},
	"claude-opus-4-1": {
		InputPerMTok:  decimal.NewFromInt(15),
		OutputPerMTok: decimal.NewFromInt(75),
	},
	"gpt-4o": {
		InputPerMTok:  decimal.RequireFromString("2.5"),
		OutputPerMTok: decimal.NewFromInt(10),
	},
	"gpt-4o-mini": {
		InputPerMTok:  decimal.RequireFromString("0.15"),
		OutputPerMTok: decimal.RequireFromString("0.6"),
	},
}
