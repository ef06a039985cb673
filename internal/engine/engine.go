package engine

import (
	"fmt"
	"math"

	"github.com/san-kum/extrema/internal/calculus"
	"github.com/san-kum/extrema/internal/expr"
)

// DefaultScope binds the auxiliary symbols a function may mention besides x.
func DefaultScope() map[string]float64 {
	return map[string]float64{
		"y": 0,
		"z": math.Pi,
	}
}

// Engine implements calculus.Engine over the expr kernel with a fixed
// constant scope. Call bindings take precedence over the scope.
type Engine struct {
	scope map[string]float64
}

func New(scope map[string]float64) *Engine {
	s := DefaultScope()
	for k, v := range scope {
		s[k] = v
	}
	return &Engine{scope: s}
}

func (e *Engine) Scope() map[string]float64 {
	out := make(map[string]float64, len(e.scope))
	for k, v := range e.scope {
		out[k] = v
	}
	return out
}

func (e *Engine) Parse(src string) (expr.Expr, error) {
	return expr.Parse(src)
}

func (e *Engine) Evaluate(ex calculus.Expression, bindings map[string]float64) (float64, error) {
	node, err := e.node(ex)
	if err != nil {
		return 0, err
	}
	merged := make(map[string]float64, len(e.scope)+len(bindings))
	for k, v := range e.scope {
		merged[k] = v
	}
	for k, v := range bindings {
		merged[k] = v
	}
	return node.Eval(merged)
}

func (e *Engine) Differentiate(ex calculus.Expression, variable string) (calculus.Expression, error) {
	node, err := e.node(ex)
	if err != nil {
		return nil, err
	}
	return expr.Diff(node, variable), nil
}

// Func returns f as a plain float function of variable, NaN where f cannot
// be evaluated.
func (e *Engine) Func(ex calculus.Expression, variable string) func(float64) float64 {
	return func(x float64) float64 {
		v, err := e.Evaluate(ex, map[string]float64{variable: x})
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// node accepts foreign Expression values by reparsing their rendering.
func (e *Engine) node(ex calculus.Expression) (expr.Expr, error) {
	if ex == nil {
		return nil, fmt.Errorf("engine: nil expression")
	}
	if n, ok := ex.(expr.Expr); ok {
		return n, nil
	}
	return expr.Parse(ex.String())
}
