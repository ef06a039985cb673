package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/extrema/internal/expr"
)

type rendered string

func (r rendered) String() string { return string(r) }

func TestEngine_Scope(t *testing.T) {
	eng := New(nil)

	tests := []struct {
		src      string
		x        float64
		expected float64
	}{
		{"x + y", 2, 2},
		{"z", 0, math.Pi},
		{"x * z", 2, 2 * math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := eng.Parse(tt.src)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			got, err := eng.Evaluate(e, map[string]float64{"x": tt.x})
			if err != nil {
				t.Fatalf("evaluate failed: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestEngine_ScopeOverride(t *testing.T) {
	eng := New(map[string]float64{"y": 3})
	got, err := eng.Evaluate(rendered("x + y"), map[string]float64{"x": 1})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %v", got)
	}

	// call bindings win over the scope
	got, _ = eng.Evaluate(rendered("y"), map[string]float64{"y": 10})
	if got != 10 {
		t.Errorf("expected binding to win, got %v", got)
	}
}

func TestEngine_Differentiate(t *testing.T) {
	eng := New(nil)
	d, err := eng.Differentiate(rendered("x^2 - 4x"), "x")
	if err != nil {
		t.Fatalf("differentiate failed: %v", err)
	}
	if d.String() != "2 * x - 4" {
		t.Errorf("expected 2 * x - 4, got %s", d)
	}

	dd, _ := eng.Differentiate(d, "x")
	if dd.String() != "2" {
		t.Errorf("expected 2, got %s", dd)
	}
}

func TestEngine_Errors(t *testing.T) {
	eng := New(nil)

	if _, err := eng.Evaluate(rendered("x +"), nil); err == nil {
		t.Error("expected syntax error for malformed rendering")
	}
	if _, err := eng.Evaluate(rendered("w"), nil); !errors.Is(err, expr.ErrUndefinedSymbol) {
		t.Errorf("expected undefined symbol, got %v", err)
	}
	if _, err := eng.Differentiate(nil, "x"); err == nil {
		t.Error("expected error for nil expression")
	}
}

func TestEngine_Func(t *testing.T) {
	eng := New(nil)
	f := eng.Func(expr.MustParse("sqrt(x)"), "x")
	if f(4) != 2 {
		t.Errorf("expected 2, got %v", f(4))
	}
	if !math.IsNaN(f(-1)) {
		t.Error("expected NaN outside the domain")
	}
}
