package calculator

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects a number", name)
		}
		return fn(x), nil
	}
}

func variadic(name string, fn func(a, b float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("%s expects at least 2 arguments, got %d", name, len(args))
		}
		acc, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s expects numbers", name)
		}
		for _, a := range args[1:] {
			x, ok := a.(float64)
			if !ok {
				return nil, fmt.Errorf("%s expects numbers", name)
			}
			acc = fn(acc, x)
		}
		return acc, nil
	}
}

// functions is the whitelist of callable functions.
var functions = map[string]govaluate.ExpressionFunction{
	"sqrt":  unary("sqrt", math.Sqrt),
	"abs":   unary("abs", math.Abs),
	"round": unary("round", math.Round),
	"floor": unary("floor", math.Floor),
	"ceil":  unary("ceil", math.Ceil),
	"log":   unary("log", math.Log),
	"sin":   unary("sin", math.Sin),
	"cos":   unary("cos", math.Cos),
	"tan":   unary("tan", math.Tan),
	"min":   variadic("min", math.Min),
	"max":   variadic("max", math.Max),
	"pow": func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		x, ok1 := args[0].(float64)
		y, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("pow expects numbers")
		}
		return math.Pow(x, y), nil
	},
}
