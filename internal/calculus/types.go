package calculus

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultStep          = 0.1
	DefaultTolerance     = 0.001
	DefaultMaxIterations = 100
	DefaultVariable      = "x"
	DefaultLo            = -10.0
	DefaultHi            = 10.0
)

// Expression is an opaque caller-owned function representation.
type Expression interface {
	String() string
}

// Engine evaluates and differentiates expressions.
type Engine interface {
	Evaluate(e Expression, bindings map[string]float64) (float64, error)
	Differentiate(e Expression, variable string) (Expression, error)
}

type Interval struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

func DefaultInterval() Interval {
	return Interval{Lo: DefaultLo, Hi: DefaultHi}
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s]", formatValue(iv.Lo), formatValue(iv.Hi))
}

type Config struct {
	Step                 float64
	Tolerance            float64
	ConvergenceTolerance float64
	MaxIterations        int
	Variable             string
}

func DefaultConfig() Config {
	return Config{
		Step:                 DefaultStep,
		Tolerance:            DefaultTolerance,
		ConvergenceTolerance: DefaultTolerance,
		MaxIterations:        DefaultMaxIterations,
		Variable:             DefaultVariable,
	}
}

// withDefaults fills zero fields so partially populated configs behave.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Step == 0 {
		c.Step = d.Step
	}
	if c.Tolerance == 0 {
		c.Tolerance = d.Tolerance
	}
	if c.ConvergenceTolerance == 0 {
		c.ConvergenceTolerance = c.Tolerance
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Variable == "" {
		c.Variable = d.Variable
	}
	return c
}

func (c Config) validate() error {
	if !(c.Step > 0) || math.IsInf(c.Step, 0) {
		return fmt.Errorf("%w: step must be positive, got %v", ErrInvalidConfig, c.Step)
	}
	if !(c.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance must be positive, got %v", ErrInvalidConfig, c.Tolerance)
	}
	if !(c.ConvergenceTolerance > 0) {
		return fmt.Errorf("%w: convergence tolerance must be positive, got %v", ErrInvalidConfig, c.ConvergenceTolerance)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	return nil
}

// Result holds one search. Points interleaves each accepted candidate with
// its refined root in scan order; Candidates and Roots hold the same values
// split apart.
type Result struct {
	Interval   Interval
	Points     []float64
	Candidates []float64
	Roots      []float64
	Failures   []Failure
	Samples    int
}

// Empty reports whether no critical point was found. This is a valid
// outcome, distinct from a degenerate derivative.
func (r *Result) Empty() bool { return len(r.Roots) == 0 }

type Failure struct {
	Candidate  float64
	Iterations int
	Err        error
}

// Log is an append-only calculation narrative owned by the caller.
type Log struct {
	lines []string
}

func (l *Log) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *Log) Lines() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.lines)
}

func (l *Log) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(l.lines, "\n")
}

func formatValue(v float64) string {
	if v == 0 {
		return "0"
	}
	if a := math.Abs(v); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
