// Package calculator provides the evaluate_expression tool: arithmetic on
// numbers, a fixed set of math functions and named constants. Variables,
// strings, comparisons and logical operators are rejected.
package calculator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// Args is the expression to evaluate.
type Args struct {
	Expression string `json:"expression" description:"math expression, e.g. '545.38*74.62/6.83' or 'sqrt(2)*pi'" validate:"required"`
}

var allowedTokens = map[govaluate.TokenKind]bool{
	govaluate.NUMERIC:      true,
	govaluate.VARIABLE:     true,
	govaluate.FUNCTION:     true,
	govaluate.SEPARATOR:    true,
	govaluate.MODIFIER:     true,
	govaluate.PREFIX:       true,
	govaluate.CLAUSE:       true,
	govaluate.CLAUSE_CLOSE: true,
}

// MODIFIER and PREFIX also cover bitwise and logical operators.
var allowedOperators = map[govaluate.TokenKind]map[string]bool{
	govaluate.MODIFIER: {"+": true, "-": true, "*": true, "/": true, "%": true, "**": true},
	govaluate.PREFIX:   {"-": true},
}

// Evaluate computes expression. Invalid or disallowed input yields a retry
// error so the model can correct it.
func Evaluate(expression string) (float64, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, functions)
	if err != nil {
		return 0, tool.Retry("invalid expression %q: %v", expression, err)
	}

	for _, tok := range expr.Tokens() {
		ops, isOperator := allowedOperators[tok.Kind]
		if !allowedTokens[tok.Kind] || (isOperator && !ops[fmt.Sprint(tok.Value)]) {
			return 0, tool.Retry("unsupported token %v in %q; only numbers, + - * / %% ** and %s are allowed",
				tok.Value, expression, allowedNames())
		}
		if tok.Kind == govaluate.VARIABLE {
			name, _ := tok.Value.(string)
			if _, ok := constParams[name]; !ok {
				return 0, tool.Retry("unknown name %q; available constants: %s", name, constNames())
			}
		}
	}

	v, err := expr.Evaluate(constParams)
	if err != nil {
		return 0, tool.Retry("cannot evaluate %q: %v", expression, err)
	}

	f, ok := v.(float64)
	if !ok {
		return 0, tool.Retry("expression %q did not produce a number", expression)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, tool.Retry("expression %q is not finite", expression)
	}

	return f, nil
}

// New returns the evaluate_expression tool.
func New() tool.Tool {
	return tool.NewTypedTool("evaluate_expression", "Evaluates a basic math expression and returns the number.",
		func(_ *core.ToolContext, in Args) (float64, error) {
			return Evaluate(in.Expression)
		})
}

func allowedNames() string {
	names := make([]string, 0, len(functions))
	for n := range functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func constNames() string {
	names := make([]string, 0, len(constParams))
	for n := range constParams {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
