package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ostglass/squire"
)

// CalcInput defines the input for the calc tool.
type CalcInput struct {
	Expression string `json:"expression" jsonschema:"required,description=Mathematical expression to evaluate (e.g. '2 + 3 * 4' or '(1 + 2) / 3')"`
}

// CalcTool evaluates arithmetic expressions with the four basic operators,
// parentheses, and standard precedence. It is not registered by default;
// callers opt in where a deterministic side-effect-free tool is useful.
type CalcTool struct{}

var _ squire.Tool[CalcInput] = (*CalcTool)(nil)

func (t *CalcTool) Name() string        { return "calc" }
func (t *CalcTool) Description() string { return "Perform basic mathematical calculations (+, -, *, /)" }

func (t *CalcTool) Execute(_ context.Context, input CalcInput) (*squire.ToolResult, error) {
	value, err := evaluate(input.Expression)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("evaluation error: %s", err.Error())), nil
	}
	return squire.TextResult(strconv.FormatFloat(value, 'f', -1, 64)), nil
}

// evaluate parses and computes expr by recursive descent:
//
//	expr   = term (('+' | '-') term)*
//	term   = factor (('*' | '/') factor)*
//	factor = number | '-' factor | '(' expr ')'
func evaluate(expr string) (float64, error) {
	p := &exprParser{input: strings.ReplaceAll(expr, " ", "")}
	if p.input == "" {
		return 0, errors.New("empty expression")
	}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q", p.input[p.pos])
	}
	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.pos < len(p.input) {
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			break
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for p.pos < len(p.input) {
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			break
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, errors.New("division by zero")
			}
			left /= right
		}
	}
	return left, nil
}

func (p *exprParser) parseFactor() (float64, error) {
	if p.pos >= len(p.input) {
		return 0, errors.New("unexpected end of expression")
	}
	switch c := p.input[p.pos]; {
	case c == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	case c == '-':
		p.pos++
		value, err := p.parseFactor()
		return -value, err
	default:
		return p.parseNumber()
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("unexpected character %q", p.input[p.pos])
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", p.input[start:p.pos])
	}
	return value, nil
}
