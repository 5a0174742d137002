package poly

import (
	"math/big"
	"strconv"
	"strings"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/param"
)

// Parse reads a polynomial literal such as "2*p^2*q+-3*q+5". Terms are joined
// by + or -, factors by *; a factor is an integer or a parameter name with an
// optional ^exponent. Unknown names are registered in reg. Rational
// coefficients are rejected.
func Parse(reg *param.Registry, s string) (*Polynomial, error) {
	ps := &parser{reg: reg, src: s}
	return ps.parse()
}

// MustParse is like Parse but panics on malformed input
func MustParse(reg *param.Registry, s string) *Polynomial {
	p, err := Parse(reg, s)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	reg *param.Registry
	src string
	pos int
}

func (ps *parser) fail(reason string) error {
	return pverrors.PolyInvalidLiteral(ps.src, ps.pos, reason)
}

func (ps *parser) skipSpace() {
	for ps.pos < len(ps.src) && (ps.src[ps.pos] == ' ' || ps.src[ps.pos] == '\t') {
		ps.pos++
	}
}

func (ps *parser) peek() byte {
	ps.skipSpace()
	if ps.pos >= len(ps.src) {
		return 0
	}
	return ps.src[ps.pos]
}

func (ps *parser) parse() (*Polynomial, error) {
	if ps.peek() == 0 {
		return nil, ps.fail("empty literal")
	}

	g := NewGeobucket(ps.reg)
	negate := false
	for {
		t, err := ps.term(negate)
		if err != nil {
			return nil, err
		}
		g.AddTerm(t)

		switch ps.peek() {
		case 0:
			return g.Canonicalise(), nil
		case '+':
			negate = false
		case '-':
			negate = true
		case '.', '/':
			return nil, ps.fail("rational coefficients are not supported")
		default:
			return nil, ps.fail("expected + or -")
		}
		ps.pos++
	}
}

// term parses [sign] factor (* factor)*
func (ps *parser) term(negate bool) (Term, error) {
	switch ps.peek() {
	case '-':
		negate = !negate
		ps.pos++
	case '+':
		ps.pos++
	}

	coef := big.NewInt(1)
	exps := make(map[int]int)
	for {
		if err := ps.factor(coef, exps); err != nil {
			return Term{}, err
		}
		if ps.peek() != '*' {
			break
		}
		ps.pos++
	}

	exp := make([]int, ps.reg.Size())
	for i, e := range exps {
		exp[i] = e
	}
	if negate {
		coef.Neg(coef)
	}
	return Term{Exp: exp, Coef: coef}, nil
}

func (ps *parser) factor(coef *big.Int, exps map[int]int) error {
	c := ps.peek()
	switch {
	case isDigit(c):
		digits := ps.scan(isDigit)
		n, ok := new(big.Int).SetString(digits, 10)
		if !ok {
			return ps.fail("bad integer")
		}
		coef.Mul(coef, n)
		return nil
	case isIdentStart(c):
		name := ps.scan(isIdentPart)
		e := 1
		if ps.peek() == '^' {
			ps.pos++
			ps.skipSpace()
			digits := ps.scan(isDigit)
			if digits == "" {
				return ps.fail("expected exponent")
			}
			n, err := strconv.Atoi(digits)
			if err != nil {
				return ps.fail("exponent too large")
			}
			e = n
		}
		exps[ps.reg.Register(name)] += e
		return nil
	case c == 0:
		return ps.fail("unexpected end of literal")
	}
	return ps.fail("expected integer or parameter")
}

func (ps *parser) scan(accept func(byte) bool) string {
	start := ps.pos
	for ps.pos < len(ps.src) && accept(ps.src[ps.pos]) {
		ps.pos++
	}
	return ps.src[start:ps.pos]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// String renders p in the literal grammar accepted by Parse
func (p *Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	p.Adjust()

	parts := make([]string, len(p.terms))
	for i, t := range p.terms {
		parts[i] = p.termString(t)
	}
	return strings.Join(parts, "+")
}

func (p *Polynomial) termString(t Term) string {
	if t.IsConstant() {
		return t.Coef.String()
	}

	var sb strings.Builder
	switch {
	case t.Coef.IsInt64() && t.Coef.Int64() == 1:
	case t.Coef.IsInt64() && t.Coef.Int64() == -1:
		sb.WriteByte('-')
	default:
		sb.WriteString(t.Coef.String())
		sb.WriteByte('*')
	}

	first := true
	for i, e := range t.Exp {
		if e == 0 {
			continue
		}
		if !first {
			sb.WriteByte('*')
		}
		first = false
		sb.WriteString(p.reg.Get(i))
		if e > 1 {
			sb.WriteByte('^')
			sb.WriteString(strconv.Itoa(e))
		}
	}
	return sb.String()
}
