package calculus

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// ErrInvalidInterval indicates bounds the scan cannot step through.
var ErrInvalidInterval = errors.New("calculus: interval bounds cannot be scanned")

type Option func(*Finder)

// WithLogger attaches a structured logger for per-candidate diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// Finder scans an interval for near-zeros of a derivative and refines each
// with Newton-Raphson.
type Finder struct {
	engine Engine
	cfg    Config
	logger *zap.Logger
}

func NewFinder(engine Engine, cfg Config, opts ...Option) *Finder {
	f := &Finder{
		engine: engine,
		cfg:    cfg.withDefaults(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Finder) Config() Config { return f.cfg }

// FindDefault searches the default [-10, 10] interval.
func (f *Finder) FindDefault(ctx context.Context, derivative Expression, log *Log) (*Result, error) {
	return f.Find(ctx, derivative, DefaultInterval(), log)
}

// Find walks x from iv.Lo to iv.Hi inclusive in fixed steps. Every sample
// with |derivative(x)| < Tolerance becomes a candidate; each converged
// candidate contributes the pair (candidate, root) to Result.Points and one
// line to log. The step is accumulated naively, so the last sample may land
// slightly short of or past Hi.
//
// An interval with Lo > Hi yields an empty result. Evaluator failures abort
// with *EvaluationError; refinement failures are recorded and skipped.
func (f *Finder) Find(ctx context.Context, derivative Expression, iv Interval, log *Log) (*Result, error) {
	if err := f.cfg.validate(); err != nil {
		return nil, err
	}
	if err := f.checkInterval(iv); err != nil {
		return nil, err
	}

	res := &Result{Interval: iv}
	v := f.cfg.Variable
	var second Expression

	for x := iv.Lo; x <= iv.Hi; x += f.cfg.Step {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		res.Samples++
		d, err := f.engine.Evaluate(derivative, map[string]float64{v: x})
		if err != nil {
			return nil, &EvaluationError{Input: derivative.String(), X: x, Wrapped: err}
		}
		if !(math.Abs(d) < f.cfg.Tolerance) {
			continue
		}

		// second derivative is invariant for the whole call
		if second == nil {
			second, err = f.engine.Differentiate(derivative, v)
			if err != nil {
				return nil, &EvaluationError{Input: derivative.String(), X: x, Wrapped: err}
			}
		}

		ref, err := Refine(f.engine, derivative, second, x, f.cfg)
		if err != nil {
			return nil, err
		}
		if !ref.Converged() {
			res.Failures = append(res.Failures, Failure{Candidate: x, Iterations: ref.Iterations, Err: ref.Err})
			log.Printf("Refinement failed at x = %s: %v", formatValue(x), ref.Err)
			f.logger.Warn("refinement failed",
				zap.Float64("candidate", x),
				zap.Int("iterations", ref.Iterations),
				zap.Error(ref.Err),
			)
			continue
		}

		res.Candidates = append(res.Candidates, x)
		res.Roots = append(res.Roots, ref.Value)
		res.Points = append(res.Points, x, ref.Value)
		log.Printf("Critical point found at x = %s", formatValue(ref.Value))
		f.logger.Debug("critical point",
			zap.Float64("candidate", x),
			zap.Float64("root", ref.Value),
			zap.Float64("residual", ref.Residual),
			zap.Int("iterations", ref.Iterations),
		)
	}

	f.logger.Debug("scan complete",
		zap.Stringer("interval", iv),
		zap.Int("samples", res.Samples),
		zap.Int("roots", len(res.Roots)),
		zap.Int("failures", len(res.Failures)),
	)
	return res, nil
}

func (f *Finder) checkInterval(iv Interval) error {
	if math.IsNaN(iv.Lo) || math.IsNaN(iv.Hi) || math.IsInf(iv.Lo, 0) || math.IsInf(iv.Hi, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidInterval, iv)
	}
	if iv.Lo > iv.Hi {
		return nil
	}
	// x += step must make progress everywhere on the interval
	for _, b := range []float64{iv.Lo, iv.Hi} {
		if b+f.cfg.Step == b {
			return fmt.Errorf("%w: step %v vanishes at %s", ErrInvalidInterval, f.cfg.Step, formatValue(b))
		}
	}
	return nil
}
