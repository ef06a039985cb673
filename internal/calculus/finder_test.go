package calculus_test

import (
	"context"
	"errors"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/extrema/internal/calculus"
	"github.com/san-kum/extrema/internal/engine"
	"github.com/san-kum/extrema/internal/expr"
)

var _ = Describe("Finder", func() {
	var (
		ctx context.Context
		eng *engine.Engine
		log *calculus.Log
	)

	derive := func(src string) calculus.Expression {
		d, err := eng.Differentiate(expr.MustParse(src), "x")
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	BeforeEach(func() {
		ctx = context.Background()
		eng = engine.New(nil)
		log = &calculus.Log{}
	})

	Context("with the default configuration", func() {
		var finder *calculus.Finder

		BeforeEach(func() {
			finder = calculus.NewFinder(eng, calculus.DefaultConfig())
		})

		It("finds the vertex of x^2 - 4x", func() {
			d := derive("x^2 - 4x")
			Expect(d.String()).To(Equal("2 * x - 4"))

			res, err := finder.Find(ctx, d, calculus.DefaultInterval(), log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Points).To(HaveLen(2))
			Expect(res.Candidates[0]).To(BeNumerically("~", 2.0, 1e-9))
			Expect(res.Roots[0]).To(BeNumerically("~", 2.0, 1e-9))

			f, err := eng.Evaluate(expr.MustParse("x^2 - 4x"), map[string]float64{"x": res.Roots[0]})
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNumerically("~", -4.0, 1e-9))
		})

		It("locates the zero of 2*x within tolerance", func() {
			res, err := finder.Find(ctx, expr.MustParse("2*x"), calculus.DefaultInterval(), log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Roots).To(HaveLen(1))
			Expect(res.Roots[0]).To(BeNumerically("~", 0, 0.001))
			Expect(log.Lines()).To(HaveLen(1))
			Expect(log.Lines()[0]).To(HavePrefix("Critical point found at x = "))
		})

		It("keeps every root inside the tolerance band", func() {
			d := derive("x^4/4 - x^2/2")
			res, err := finder.Find(ctx, d, calculus.Interval{Lo: -2, Hi: 2}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Roots).NotTo(BeEmpty())
			for _, r := range res.Roots {
				v, err := eng.Evaluate(d, map[string]float64{"x": r})
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Abs(v)).To(BeNumerically("<", calculus.DefaultTolerance))
			}
		})

		It("interleaves candidates with their roots in scan order", func() {
			res, err := finder.Find(ctx, expr.MustParse("x^3 - x"), calculus.Interval{Lo: -2, Hi: 2}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Roots).To(HaveLen(3))
			for i := range res.Roots {
				Expect(res.Points[2*i]).To(Equal(res.Candidates[i]))
				Expect(res.Points[2*i+1]).To(Equal(res.Roots[i]))
			}
			Expect(res.Roots[0]).To(BeNumerically("<", res.Roots[1]))
			Expect(res.Roots[1]).To(BeNumerically("<", res.Roots[2]))
		})

		It("returns an empty result for a reversed interval", func() {
			res, err := finder.Find(ctx, expr.MustParse("2*x"), calculus.Interval{Lo: 5, Hi: -5}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Points).To(BeEmpty())
			Expect(res.Samples).To(BeZero())
			Expect(log.Len()).To(BeZero())
		})

		It("treats no crossings as a valid empty outcome", func() {
			res, err := finder.Find(ctx, expr.MustParse("2*x + 100"), calculus.DefaultInterval(), log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Empty()).To(BeTrue())
			Expect(res.Samples).To(BeNumerically(">=", 200))
		})

		It("is idempotent across calls", func() {
			d := derive("x^3 - 3x")
			first, err := finder.Find(ctx, d, calculus.DefaultInterval(), &calculus.Log{})
			Expect(err).NotTo(HaveOccurred())
			secondLog := &calculus.Log{}
			second, err := finder.Find(ctx, d, calculus.DefaultInterval(), secondLog)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Points).To(Equal(first.Points))
			Expect(secondLog.Len()).To(Equal(len(first.Roots)))
		})

		It("uses the default interval in FindDefault", func() {
			d := derive("x^2 - 4x")
			a, err := finder.FindDefault(ctx, d, nil)
			Expect(err).NotTo(HaveOccurred())
			b, err := finder.Find(ctx, d, calculus.DefaultInterval(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Points).To(Equal(b.Points))
			Expect(a.Interval).To(Equal(calculus.DefaultInterval()))
		})

		It("propagates evaluator failures with the offending input", func() {
			_, err := finder.Find(ctx, expr.MustParse("x + w"), calculus.DefaultInterval(), log)
			var evalErr *calculus.EvaluationError
			Expect(errors.As(err, &evalErr)).To(BeTrue())
			Expect(evalErr.Input).To(Equal("x + w"))
			Expect(evalErr.X).To(Equal(-10.0))
			Expect(err).To(MatchError(expr.ErrUndefinedSymbol))
		})

		It("stops on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := finder.Find(canceled, expr.MustParse("2*x"), calculus.DefaultInterval(), log)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("rejects non-finite bounds", func() {
			_, err := finder.Find(ctx, expr.MustParse("2*x"), calculus.Interval{Lo: math.Inf(-1), Hi: 0}, log)
			Expect(err).To(MatchError(calculus.ErrInvalidInterval))
		})
	})

	Context("with a wide detection band", func() {
		It("refines a coarse seed with Newton-Raphson", func() {
			cfg := calculus.DefaultConfig()
			cfg.Tolerance = 0.1
			cfg.ConvergenceTolerance = 1e-9
			finder := calculus.NewFinder(eng, cfg)

			res, err := finder.Find(ctx, expr.MustParse("x^2 - 2"), calculus.Interval{Lo: 0, Hi: 3}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Candidates).To(HaveLen(1))
			Expect(res.Candidates[0]).To(BeNumerically("~", 1.4, 1e-9))
			Expect(res.Roots[0]).To(BeNumerically("~", math.Sqrt2, 1e-9))
		})

		It("reports a cycling refinement as a timeout", func() {
			cfg := calculus.Config{Tolerance: 2.5, ConvergenceTolerance: 1e-6, MaxIterations: 10}
			finder := calculus.NewFinder(eng, cfg)

			res, err := finder.Find(ctx, expr.MustParse("x^3 - 2x + 2"), calculus.Interval{Lo: 0, Hi: 0}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Points).To(BeEmpty())
			Expect(res.Failures).To(HaveLen(1))
			Expect(res.Failures[0].Err).To(MatchError(calculus.ErrRefinementTimeout))
			Expect(res.Failures[0].Iterations).To(Equal(10))
			Expect(log.Lines()[0]).To(HavePrefix("Refinement failed at x = 0"))
		})
	})

	Context("with a fake engine", func() {
		var fake *fakeEngine

		BeforeEach(func() {
			fake = &fakeEngine{
				funcs: map[string]func(float64) float64{
					"flat":   func(float64) float64 { return 0.0005 },
					"zero":   func(float64) float64 { return 0 },
					"linear": func(x float64) float64 { return x - 0.5 },
					"one":    func(float64) float64 { return 1 },
					"mixed": func(x float64) float64 {
						if x < 0.05 {
							return 0.0005
						}
						return x - 0.5
					},
					"mixed2": func(x float64) float64 {
						if x < 0.05 {
							return 0
						}
						return 1
					},
				},
				derivs: map[string]string{
					"flat":   "zero",
					"linear": "one",
					"mixed":  "mixed2",
				},
			}
		})

		It("skips candidates whose second derivative vanishes", func() {
			cfg := calculus.DefaultConfig()
			cfg.ConvergenceTolerance = 1e-6
			finder := calculus.NewFinder(fake, cfg)

			res, err := finder.Find(ctx, fn("flat"), calculus.Interval{Lo: 0, Hi: 1}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Points).To(BeEmpty())
			Expect(res.Failures).To(HaveLen(res.Samples))
			for _, f := range res.Failures {
				Expect(f.Err).To(MatchError(calculus.ErrDivergentRefinement))
			}
			for _, line := range log.Lines() {
				Expect(strings.HasPrefix(line, "Refinement failed")).To(BeTrue())
			}
		})

		It("continues scanning after a failed candidate", func() {
			cfg := calculus.DefaultConfig()
			cfg.ConvergenceTolerance = 1e-6
			finder := calculus.NewFinder(fake, cfg)

			res, err := finder.Find(ctx, fn("mixed"), calculus.Interval{Lo: 0, Hi: 1}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Failures).To(HaveLen(1))
			Expect(res.Failures[0].Candidate).To(Equal(0.0))
			Expect(res.Roots).To(HaveLen(1))
			Expect(res.Roots[0]).To(BeNumerically("~", 0.5, 1e-6))
			Expect(log.Len()).To(Equal(2))
		})

		It("derives the second derivative once per call", func() {
			finder := calculus.NewFinder(fake, calculus.Config{Tolerance: 0.25})
			res, err := finder.Find(ctx, fn("linear"), calculus.Interval{Lo: 0, Hi: 1}, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(res.Roots)).To(BeNumerically(">", 1))
			Expect(fake.diffs).To(Equal(1))
		})

		It("never derives when nothing is found", func() {
			finder := calculus.NewFinder(fake, calculus.DefaultConfig())
			_, err := finder.Find(ctx, fn("one"), calculus.DefaultInterval(), log)
			Expect(err).NotTo(HaveOccurred())
			Expect(fake.diffs).To(BeZero())
		})

		It("wraps differentiation failures", func() {
			finder := calculus.NewFinder(fake, calculus.DefaultConfig())
			_, err := finder.Find(ctx, fn("zero"), calculus.DefaultInterval(), log)
			var evalErr *calculus.EvaluationError
			Expect(errors.As(err, &evalErr)).To(BeTrue())
			Expect(evalErr.Input).To(Equal("zero"))
		})
	})

	It("rejects a non-positive step", func() {
		finder := calculus.NewFinder(eng, calculus.Config{Step: -0.1})
		_, err := finder.Find(ctx, expr.MustParse("2*x"), calculus.DefaultInterval(), log)
		Expect(err).To(MatchError(calculus.ErrInvalidConfig))
	})
})

var _ = Describe("Refine", func() {
	It("returns a converged tagged result", func() {
		eng := engine.New(nil)
		d := expr.MustParse("x^2 - 2")
		second, _ := eng.Differentiate(d, "x")

		cfg := calculus.DefaultConfig()
		cfg.ConvergenceTolerance = 1e-12
		r, err := calculus.Refine(eng, d, second, 1.0, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Converged()).To(BeTrue())
		Expect(r.Value).To(BeNumerically("~", math.Sqrt2, 1e-12))
		Expect(r.Iterations).To(BeNumerically(">", 0))
		Expect(r.Seed).To(Equal(1.0))
	})

	It("fails immediately on an unevaluable seed", func() {
		eng := engine.New(nil)
		_, err := calculus.Refine(eng, expr.MustParse("sqrt(x)"), expr.MustParse("1"), -1, calculus.DefaultConfig())
		Expect(err).To(MatchError(expr.ErrNonReal))
	})
})
