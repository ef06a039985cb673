package expr

import "math"

// Simplify flattens nested sums, folds numeric terms and collects like
// terms, keeping the order terms first appeared in. The constant goes last.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type group struct {
		coef float64
		rest Expr
	}
	constant := 0.0
	groups := map[string]*group{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant += n.v
			continue
		}
		coef, rest := splitCoefficient(t)
		key := rest.String()
		g, ok := groups[key]
		if !ok {
			g = &group{rest: rest}
			groups[key] = g
			order = append(order, key)
		}
		g.coef += coef
	}

	out := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		switch g.coef {
		case 0:
		case 1:
			out = append(out, g.rest)
		default:
			out = append(out, MulOf(N(g.coef), g.rest))
		}
	}
	if len(out) == 0 {
		return N(constant)
	}
	if constant != 0 {
		out = append(out, N(constant))
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Add{terms: out}
}

// splitCoefficient returns the numeric coefficient of a simplified term and
// the remaining product.
func splitCoefficient(e Expr) (float64, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return 1, e
	}
	n, ok := m.factors[0].(*Num)
	if !ok {
		return 1, e
	}
	if len(m.factors) == 2 {
		return n.v, m.factors[1]
	}
	return n.v, &Mul{factors: m.factors[1:]}
}

// Simplify flattens nested products, folds the numeric coefficient to the
// front and merges equal bases by adding exponents.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	type group struct {
		base Expr
		exps []Expr
	}
	coef := 1.0
	groups := map[string]*group{}
	order := []string{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coef *= n.v
			continue
		}
		base, exp := splitPower(f)
		key := base.String()
		g, ok := groups[key]
		if !ok {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coef == 0 {
		return N(0)
	}

	factors := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		p := PowOf(g.base, AddOf(g.exps...))
		switch v := p.(type) {
		case *Num:
			coef *= v.v
		case *Mul:
			// (ab)^n distributed by PowOf
			for _, f := range v.factors {
				if n, ok := f.(*Num); ok {
					coef *= n.v
				} else {
					factors = append(factors, f)
				}
			}
		default:
			factors = append(factors, p)
		}
	}
	if coef == 0 {
		return N(0)
	}
	if len(factors) == 0 {
		return N(coef)
	}
	if coef != 1 {
		factors = append([]Expr{N(coef)}, factors...)
	}
	if len(factors) == 1 {
		return factors[0]
	}
	return &Mul{factors: factors}
}

func splitPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

func isInteger(v float64) bool { return v == math.Trunc(v) && !math.IsInf(v, 0) }

func (p *Pow) Simplify() Expr {
	b := p.base.Simplify()
	e := p.exp.Simplify()

	if bn, ok := b.(*Num); ok && bn.v == 1 {
		return N(1)
	}
	en, ok := e.(*Num)
	if !ok {
		return &Pow{base: b, exp: e}
	}
	switch en.v {
	case 0:
		return N(1)
	case 1:
		return b
	}

	switch bv := b.(type) {
	case *Num:
		if bv.v == 0 && en.v < 0 {
			break
		}
		if r := math.Pow(bv.v, en.v); !math.IsNaN(r) && !math.IsInf(r, 0) {
			return N(r)
		}
	case *Pow:
		if inner, ok := bv.exp.(*Num); ok && isInteger(en.v) {
			return PowOf(bv.base, N(inner.v*en.v))
		}
	case *Mul:
		if isInteger(en.v) {
			parts := make([]Expr, len(bv.factors))
			for i, f := range bv.factors {
				parts[i] = PowOf(f, en)
			}
			return MulOf(parts...)
		}
	}
	return &Pow{base: b, exp: e}
}

// Simplify folds calls on numeric arguments.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if v, err := applyFunc(f.name, n.v); err == nil && !math.IsInf(v, 0) {
			return N(v)
		}
	}
	if s, ok := arg.(*Sym); ok && f.name == "log" && s.name == "e" {
		return N(1)
	}
	return &Func{name: f.name, arg: arg}
}
