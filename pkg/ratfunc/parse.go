package ratfunc

import (
	"strings"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/cancel"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
	"github.com/msto63/paramval/pkg/poly"
)

// Parse reads "num/den" where each side is a polynomial literal, optionally
// in parentheses, or a scalar literal accepted by fraction.Parse such as
// "3/4", "-1.25" or "1.2e3". A zero denominator is malformed; use "inf",
// "-inf" or "invalid" for the extended values.
//
// Scalar literals are tried first, so a bare "inf", "infinity", "nan" or
// "invalid" always reads as the extended value even when the registry holds
// a parameter of that name. Such parameters do not round-trip through
// String and Parse on their own.
func Parse(reg *param.Registry, c cancel.Canceller, s string) (*RationalFunction, error) {
	lit := strings.TrimSpace(s)
	if f, err := fraction.Parse(lit); err == nil {
		return FromFraction(reg, f, c), nil
	}

	numLit, denLit, hasDen, err := splitQuotient(lit)
	if err != nil {
		return nil, pverrors.RatFuncInvalidLiteral(s, err)
	}
	num, err := poly.Parse(reg, unwrap(numLit))
	if err != nil {
		return nil, pverrors.RatFuncInvalidLiteral(s, err)
	}
	den := poly.FromInt64(reg, 1)
	if hasDen {
		if den, err = poly.Parse(reg, unwrap(denLit)); err != nil {
			return nil, pverrors.RatFuncInvalidLiteral(s, err)
		}
		if den.IsZero() {
			return nil, pverrors.RatFuncInvalidLiteral(s, nil)
		}
	}
	return New(num, den, c)
}

// MustParse is like Parse but panics on malformed input
func MustParse(reg *param.Registry, c cancel.Canceller, s string) *RationalFunction {
	r, err := Parse(reg, c, s)
	if err != nil {
		panic(err)
	}
	return r
}

// splitQuotient splits at the single '/' outside parentheses
func splitQuotient(s string) (num, den string, hasDen bool, err error) {
	depth, slash := 0, -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", "", false, pverrors.InvalidInput(pverrors.ModuleRatFunc, "parse", s, "balanced parentheses")
			}
		case '/':
			if depth == 0 {
				if slash >= 0 {
					return "", "", false, pverrors.InvalidInput(pverrors.ModuleRatFunc, "parse", s, "at most one top-level '/'")
				}
				slash = i
			}
		}
	}
	if depth != 0 {
		return "", "", false, pverrors.InvalidInput(pverrors.ModuleRatFunc, "parse", s, "balanced parentheses")
	}
	if slash < 0 {
		return s, "", false, nil
	}
	return strings.TrimSpace(s[:slash]), strings.TrimSpace(s[slash+1:]), true, nil
}

// unwrap removes one pair of parentheses enclosing the whole literal
func unwrap(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			return s
		}
	}
	return s[1 : len(s)-1]
}

// String renders r in the grammar accepted by Parse, for example
// "x/(x+1)", "3/4", "(p+1)/(2*q)" or "inf"
func (r *RationalFunction) String() string {
	switch {
	case r.IsInvalid():
		return "invalid"
	case r.IsPosInf():
		return "inf"
	case r.IsNegInf():
		return "-inf"
	case r.den.IsOne():
		return r.num.String()
	}

	num := r.num.String()
	if r.num.NumTerms() > 1 {
		num = "(" + num + ")"
	}
	den := r.den.String()
	if r.den.NumTerms() > 1 || strings.Contains(den, "*") {
		den = "(" + den + ")"
	}
	return num + "/" + den
}
