package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expr is an immutable node of an expression tree.
type Expr interface {
	String() string
	Eval(bindings map[string]float64) (float64, error)
	Diff(varName string) Expr
	Simplify() Expr
	prec() int
}

// printing precedence, lowest binds loosest
const (
	precAdd = iota + 1
	precMul
	precUnary
	precPow
	precAtom
)

// Constants resolved when a symbol has no binding.
var Constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// ============================================================
// Num
// ============================================================

type Num struct{ v float64 }

func N(v float64) *Num {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return &Num{v: v}
}

func (n *Num) Value() float64                          { return n.v }
func (n *Num) String() string                          { return FormatNumber(n.v) }
func (n *Num) Eval(map[string]float64) (float64, error) { return n.v, nil }
func (n *Num) Diff(string) Expr                        { return N(0) }
func (n *Num) Simplify() Expr                          { return n }

func (n *Num) prec() int {
	if n.v < 0 {
		return precUnary
	}
	return precAtom
}

// ============================================================
// Sym
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Name() string   { return s.name }
func (s *Sym) String() string { return s.name }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) prec() int      { return precAtom }

func (s *Sym) Eval(bindings map[string]float64) (float64, error) {
	if v, ok := bindings[s.name]; ok {
		return v, nil
	}
	if v, ok := Constants[s.name]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUndefinedSymbol, s.name)
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Add
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Terms() []Expr { return a.terms }
func (a *Add) prec() int     { return precAdd }

func (a *Add) Eval(bindings map[string]float64) (float64, error) {
	sum := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(bindings)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func (a *Add) Diff(varName string) Expr {
	d := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		d[i] = t.Diff(varName)
	}
	return AddOf(d...)
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		s := abs.String()
		if neg && abs.prec() <= precAdd {
			s = "(" + s + ")"
		}
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + s)
		case i == 0:
			sb.WriteString(s)
		case neg:
			sb.WriteString(" - " + s)
		default:
			sb.WriteString(" + " + s)
		}
	}
	return sb.String()
}

// splitSign separates a leading negative coefficient so sums print as
// subtraction.
func splitSign(e Expr) (bool, Expr) {
	switch v := e.(type) {
	case *Num:
		if v.v < 0 {
			return true, N(-v.v)
		}
	case *Mul:
		if len(v.factors) == 0 {
			break
		}
		n, ok := v.factors[0].(*Num)
		if !ok || n.v >= 0 {
			break
		}
		rest := v.factors[1:]
		if n.v != -1 {
			rest = append([]Expr{N(-n.v)}, rest...)
		}
		switch len(rest) {
		case 0:
			return true, N(1)
		case 1:
			return true, rest[0]
		default:
			return true, &Mul{factors: rest}
		}
	}
	return false, e
}

// ============================================================
// Mul
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Factors() []Expr { return m.factors }
func (m *Mul) prec() int       { return precMul }

func (m *Mul) Eval(bindings map[string]float64) (float64, error) {
	prod := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(bindings)
		if err != nil {
			return 0, err
		}
		prod *= v
	}
	return prod, nil
}

// Diff applies the product rule over every factor.
func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, 0, len(m.factors))
	for i, fi := range m.factors {
		if !DependsOn(fi, varName) {
			continue
		}
		parts := make([]Expr, 0, len(m.factors))
		parts = append(parts, fi.Diff(varName))
		for j, fj := range m.factors {
			if j != i {
				parts = append(parts, fj)
			}
		}
		terms = append(terms, MulOf(parts...))
	}
	return AddOf(terms...)
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	factors := m.factors
	neg := false
	if n, ok := factors[0].(*Num); ok && n.v < 0 && len(factors) > 1 {
		neg = true
		if n.v == -1 {
			factors = factors[1:]
		} else {
			factors = append([]Expr{N(-n.v)}, factors[1:]...)
		}
	}

	var num, den []Expr
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.v < 0 {
				if e.v == -1 {
					den = append(den, p.base)
				} else {
					den = append(den, &Pow{base: p.base, exp: N(-e.v)})
				}
				continue
			}
		}
		num = append(num, f)
	}

	s := "1"
	if len(num) > 0 {
		parts := make([]string, len(num))
		for i, f := range num {
			parts[i] = f.String()
			if f.prec() < precMul || (i > 0 && f.prec() == precUnary) {
				parts[i] = "(" + parts[i] + ")"
			}
		}
		s = strings.Join(parts, " * ")
	}
	if len(den) > 0 {
		s += " / " + denominator(den)
	}
	if neg {
		return "-" + s
	}
	return s
}

func denominator(den []Expr) string {
	if len(den) == 1 {
		d := den[0]
		if d.prec() <= precMul || d.prec() == precUnary {
			return "(" + d.String() + ")"
		}
		return d.String()
	}
	parts := make([]string, len(den))
	for i, d := range den {
		parts[i] = d.String()
		if d.prec() < precMul {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

// ============================================================
// Pow
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

func (p *Pow) prec() int {
	if e, ok := p.exp.(*Num); ok && e.v < 0 {
		return precMul
	}
	return precPow
}

func (p *Pow) Eval(bindings map[string]float64) (float64, error) {
	b, err := p.base.Eval(bindings)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(bindings)
	if err != nil {
		return 0, err
	}
	if b == 0 && e < 0 {
		return 0, fmt.Errorf("%w: %s", ErrDivisionByZero, p.String())
	}
	if b < 0 && e != math.Trunc(e) {
		return 0, fmt.Errorf("%w: %s at base %s", ErrNonReal, p.String(), FormatNumber(b))
	}
	r := math.Pow(b, e)
	if math.IsNaN(r) {
		return 0, fmt.Errorf("%w: %s", ErrNonReal, p.String())
	}
	return r, nil
}

func (p *Pow) Diff(varName string) Expr {
	db := p.base.Diff(varName)
	if !DependsOn(p.exp, varName) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), db)
	}
	de := p.exp.Diff(varName)
	if !DependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), FuncOf("log", p.base), de)
	}
	logTerm := MulOf(de, FuncOf("log", p.base))
	divTerm := MulOf(p.exp, db, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok && e.v < 0 {
		if e.v == -1 {
			return "1 / " + denominator([]Expr{p.base})
		}
		return "1 / " + denominator([]Expr{&Pow{base: p.base, exp: N(-e.v)}})
	}
	b := p.base.String()
	if p.base.prec() <= precPow {
		b = "(" + b + ")"
	}
	e := p.exp.String()
	if p.exp.prec() < precUnary {
		e = "(" + e + ")"
	}
	return b + " ^ " + e
}

// ============================================================
// Func
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// FuncOf applies a named function; aliases such as ln resolve to their
// canonical name.
func FuncOf(name string, arg Expr) Expr {
	return (&Func{name: canonicalFunc(name), arg: arg}).Simplify()
}

func (f *Func) Name() string   { return f.name }
func (f *Func) Arg() Expr      { return f.arg }
func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }
func (f *Func) prec() int      { return precAtom }

func (f *Func) Eval(bindings map[string]float64) (float64, error) {
	a, err := f.arg.Eval(bindings)
	if err != nil {
		return 0, err
	}
	return applyFunc(f.name, a)
}

// Diff applies the chain rule.
func (f *Func) Diff(varName string) Expr {
	if !DependsOn(f.arg, varName) {
		return N(0)
	}
	u := f.arg
	var outer Expr
	switch f.name {
	case "sin":
		outer = FuncOf("cos", u)
	case "cos":
		outer = MulOf(N(-1), FuncOf("sin", u))
	case "tan":
		outer = PowOf(FuncOf("cos", u), N(-2))
	case "exp":
		outer = FuncOf("exp", u)
	case "log":
		outer = PowOf(u, N(-1))
	case "sqrt":
		outer = MulOf(N(0.5), PowOf(FuncOf("sqrt", u), N(-1)))
	case "abs":
		outer = MulOf(u, PowOf(FuncOf("abs", u), N(-1)))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), N(-0.5))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), N(-0.5)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	case "sinh":
		outer = FuncOf("cosh", u)
	case "cosh":
		outer = FuncOf("sinh", u)
	case "tanh":
		outer = PowOf(FuncOf("cosh", u), N(-2))
	default:
		// parse rejects unknown names, so this is only reachable from
		// hand-built trees
		outer = &Func{name: "d" + f.name, arg: u}
	}
	return MulOf(outer, u.Diff(varName))
}

var funcAliases = map[string]string{"ln": "log"}

var funcTable = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"exp":  math.Exp,
	"log":  math.Log,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
}

func canonicalFunc(name string) string {
	if c, ok := funcAliases[name]; ok {
		return c
	}
	return name
}

// IsFunction reports whether name is a callable the kernel knows.
func IsFunction(name string) bool {
	_, ok := funcTable[canonicalFunc(name)]
	return ok
}

func applyFunc(name string, a float64) (float64, error) {
	fn, ok := funcTable[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownFunction, name)
	}
	switch name {
	case "log":
		if a < 0 {
			return 0, fmt.Errorf("%w: log(%s)", ErrNonReal, FormatNumber(a))
		}
	case "sqrt":
		if a < 0 {
			return 0, fmt.Errorf("%w: sqrt(%s)", ErrNonReal, FormatNumber(a))
		}
	}
	r := fn(a)
	if math.IsNaN(r) {
		return 0, fmt.Errorf("%w: %s(%s)", ErrNonReal, name, FormatNumber(a))
	}
	return r, nil
}

// ============================================================
// Helpers
// ============================================================

// FormatNumber renders v without an exponent across the usual range.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	if a := math.Abs(v); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FreeSymbols returns the set of symbol names e references.
func FreeSymbols(e Expr) map[string]struct{} {
	out := make(map[string]struct{})
	collectSymbols(e, out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// DependsOn reports whether e references varName.
func DependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// Diff returns the simplified symbolic derivative of e with respect to varName.
func Diff(e Expr, varName string) Expr { return e.Diff(varName).Simplify() }

// DiffN differentiates n times.
func DiffN(e Expr, varName string, n int) Expr {
	for i := 0; i < n; i++ {
		e = Diff(e, varName)
	}
	return e
}

// Simplify is a convenience for e.Simplify().
func Simplify(e Expr) Expr { return e.Simplify() }

// Equal compares two expressions by their canonical rendering.
func Equal(a, b Expr) bool { return a.Simplify().String() == b.Simplify().String() }
