package expr

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		c := rs[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || (c == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			// exponent only when digits follow, so "2e" stays 2 * e
			if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') {
				j := i + 1
				if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
					j++
				}
				if j < len(rs) && unicode.IsDigit(rs[j]) {
					i = j
					for i < len(rs) && unicode.IsDigit(rs[i]) {
						i++
					}
				}
			}
			text := string(rs[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("malformed number %q", text)}
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: v, pos: start})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		case c == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads an infix expression. Supported syntax: numbers, symbols,
// + - * / ^ (also **), unary signs, parentheses, calls to the built-in
// functions and implicit multiplication ("4x", "2(x+1)", "(x+1)(x-1)").
// The tree is returned unsimplified.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	p := &parser{toks: toks}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) parseSum() (Expr, error) {
	first, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.isOp("+", "-") {
		op := p.next()
		rhs, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			rhs = negate(rhs)
		}
		terms = append(terms, rhs)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return &Add{terms: terms}, nil
}

func (p *parser) parseProduct() (Expr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{first}
	for {
		t := p.peek()
		switch {
		case p.isOp("*", "/"):
			p.next()
			rhs, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if t.text == "/" {
				rhs = &Pow{base: rhs, exp: N(-1)}
			}
			factors = append(factors, rhs)
		case t.kind == tokIdent || t.kind == tokLParen:
			rhs, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			factors = append(factors, rhs)
		default:
			if len(factors) == 1 {
				return first, nil
			}
			return &Mul{factors: factors}, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.isOp("-", "+") {
		op := p.next()
		u, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			return negate(u), nil
		}
		return u, nil
	}
	return p.parsePower()
}

// parsePower is right-associative and binds tighter than unary minus.
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Pow{base: base, exp: exp}, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return N(t.num), nil
	case tokIdent:
		if !IsFunction(t.text) {
			return S(t.text), nil
		}
		if p.peek().kind != tokLParen {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("function %s needs an argument", t.text)}
		}
		p.next()
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return &Func{name: canonicalFunc(t.text), arg: arg}, nil
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
}

func (p *parser) expect(kind tokenKind) error {
	t := p.next()
	if t.kind == kind {
		return nil
	}
	if t.kind == tokEOF {
		return &SyntaxError{Pos: t.pos, Msg: "missing closing parenthesis"}
	}
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

func negate(e Expr) Expr {
	if n, ok := e.(*Num); ok {
		return N(-n.v)
	}
	return &Mul{factors: []Expr{N(-1), e}}
}
