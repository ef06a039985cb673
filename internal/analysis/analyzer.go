package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/extrema/internal/calculus"
	"github.com/san-kum/extrema/internal/engine"
	"github.com/san-kum/extrema/internal/expr"
)

var (
	// ErrDegenerateDerivative is returned when the derivative has no variable
	// term. It is distinct from a search that simply finds nothing.
	ErrDegenerateDerivative = errors.New("analysis: the derivative is a constant or zero, there are no critical points")

	ErrInvalidExpression = errors.New("analysis: invalid expression")
)

// DefaultCurveStep matches the finder's scan step so the plotted curve and
// the scanned samples line up.
const DefaultCurveStep = calculus.DefaultStep

// curvatureEpsilon separates a real minimum or maximum from a flat point.
const curvatureEpsilon = 1e-9

type Kind string

const (
	Minimum Kind = "minimum"
	Maximum Kind = "maximum"
	Flat    Kind = "flat"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type StationaryPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Curvature float64 `json:"curvature"`
	Kind      Kind    `json:"kind"`
}

// Extrema are the largest and smallest function values over the critical
// points and the interval endpoints.
type Extrema struct {
	Maximum Point `json:"maximum"`
	Minimum Point `json:"minimum"`
}

type FailureReport struct {
	Candidate  float64 `json:"candidate"`
	Iterations int     `json:"iterations"`
	Reason     string  `json:"reason"`
}

type Request struct {
	Function string
	// Interval defaults to [-10, 10] when nil.
	Interval        *calculus.Interval
	CurveStep       float64
	CheckDerivative bool
}

type Report struct {
	Function   string            `json:"function"`
	Derivative string            `json:"derivative"`
	Interval   calculus.Interval `json:"interval"`
	Points     []float64         `json:"points"`
	Candidates []float64         `json:"candidates"`
	Roots      []float64         `json:"roots"`
	Failures   []FailureReport   `json:"failures,omitempty"`
	Stationary []StationaryPoint `json:"stationary"`
	Extrema    *Extrema          `json:"extrema,omitempty"`
	Curve      []Point           `json:"curve,omitempty"`
	CurveMean  float64           `json:"curve_mean"`
	Check      *DerivativeCheck  `json:"check,omitempty"`
	Log        []string          `json:"log"`
	Degenerate bool              `json:"degenerate,omitempty"`
	Elapsed    time.Duration     `json:"elapsed"`
}

type Option func(*Analyzer)

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// Analyzer runs the full pipeline: parse, derive, classify, search, then
// evaluate the function at everything the search produced.
type Analyzer struct {
	engine *engine.Engine
	finder *calculus.Finder
	logger *zap.Logger
}

func New(eng *engine.Engine, cfg calculus.Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		engine: eng,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.finder = calculus.NewFinder(eng, cfg, calculus.WithLogger(a.logger.Named("finder")))
	return a
}

func (a *Analyzer) Finder() *calculus.Finder { return a.finder }

// Run analyzes req.Function. On ErrDegenerateDerivative the returned report
// still carries the function and its derivative.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	iv := calculus.DefaultInterval()
	if req.Interval != nil {
		iv = *req.Interval
	}
	curveStep := req.CurveStep
	if curveStep == 0 {
		curveStep = DefaultCurveStep
	}
	if !(curveStep > 0) || math.IsInf(curveStep, 0) {
		return nil, fmt.Errorf("analysis: curve step must be positive, got %v", curveStep)
	}

	f, err := a.engine.Parse(req.Function)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}
	variable := a.finder.Config().Variable

	d, err := a.engine.Differentiate(f, variable)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Function:   f.String(),
		Derivative: d.String(),
		Interval:   iv,
	}

	if calculus.IsConstantOrZero(report.Derivative) {
		report.Degenerate = true
		report.Log = []string{"The derivative is a constant or zero. There are no critical points. Please try a different function."}
		report.Elapsed = time.Since(start)
		return report, ErrDegenerateDerivative
	}

	var log calculus.Log
	res, err := a.finder.Find(ctx, d, iv, &log)
	if err != nil {
		return nil, err
	}
	report.Points = res.Points
	report.Candidates = res.Candidates
	report.Roots = res.Roots
	for _, fl := range res.Failures {
		report.Failures = append(report.Failures, FailureReport{
			Candidate:  fl.Candidate,
			Iterations: fl.Iterations,
			Reason:     fl.Err.Error(),
		})
	}

	fx := a.engine.Func(f, variable)
	report.Extrema = extrema(fx, append(append([]float64{}, res.Points...), iv.Lo, iv.Hi))
	report.Stationary, err = a.stationary(f, d, variable, res.Roots)
	if err != nil {
		return nil, err
	}
	report.Curve = SampleCurve(fx, iv, curveStep)
	if len(report.Curve) > 0 {
		ys := make([]float64, len(report.Curve))
		for i, p := range report.Curve {
			ys[i] = p.Y
		}
		report.CurveMean = stat.Mean(ys, nil)
	}

	if req.CheckDerivative {
		xs := append([]float64{}, res.Roots...)
		for _, p := range report.Curve {
			xs = append(xs, p.X)
		}
		report.Check = CheckDerivative(fx, a.engine.Func(d, variable), xs)
	}

	log.Printf("Critical points: %s", formatList(res.Points))
	if report.Extrema != nil {
		log.Printf("Maximum value: %s", expr.FormatNumber(report.Extrema.Maximum.Y))
		log.Printf("Minimum value: %s", expr.FormatNumber(report.Extrema.Minimum.Y))
	}
	report.Log = log.Lines()
	report.Elapsed = time.Since(start)

	a.logger.Info("analysis complete",
		zap.String("function", report.Function),
		zap.String("derivative", report.Derivative),
		zap.Stringer("interval", iv),
		zap.Int("critical_points", len(report.Roots)),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// stationary labels each distinct root by the sign of the second derivative.
func (a *Analyzer) stationary(f, d calculus.Expression, variable string, roots []float64) ([]StationaryPoint, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	second, err := a.engine.Differentiate(d, variable)
	if err != nil {
		return nil, err
	}
	fx := a.engine.Func(f, variable)
	sx := a.engine.Func(second, variable)
	tol := a.finder.Config().Tolerance

	var out []StationaryPoint
	for _, r := range roots {
		if n := len(out); n > 0 && math.Abs(out[n-1].X-r) < tol {
			continue
		}
		y := fx(r)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		c := sx(r)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			c = 0
		}
		kind := Flat
		switch {
		case c > curvatureEpsilon:
			kind = Minimum
		case c < -curvatureEpsilon:
			kind = Maximum
		}
		out = append(out, StationaryPoint{X: r, Y: y, Curvature: c, Kind: kind})
	}
	return out, nil
}

// extrema skips points where f is undefined or infinite; nil means there was
// no finite value at all.
func extrema(f func(float64) float64, xs []float64) *Extrema {
	var px, py []float64
	for _, x := range xs {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		px = append(px, x)
		py = append(py, y)
	}
	if len(py) == 0 {
		return nil
	}
	hi, lo := floats.MaxIdx(py), floats.MinIdx(py)
	return &Extrema{
		Maximum: Point{X: px[hi], Y: py[hi]},
		Minimum: Point{X: px[lo], Y: py[lo]},
	}
}

// SampleCurve evaluates f from iv.Lo to iv.Hi in fixed steps, dropping
// non-finite values.
func SampleCurve(f func(float64) float64, iv calculus.Interval, step float64) []Point {
	if iv.Lo+step == iv.Lo || iv.Hi+step == iv.Hi {
		return nil
	}
	var pts []Point
	for x := iv.Lo; x <= iv.Hi; x += step {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts
}

func formatList(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = expr.FormatNumber(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
