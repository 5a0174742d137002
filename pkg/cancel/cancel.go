// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     cancel
// Description: Cancellation of common factors in rational functions
// Author:      Mike Stoffels
// Created:     2026-09-18
// License:     MIT
// ============================================================================

// Package cancel removes the greatest common divisor from numerator and
// denominator pairs. The Canceller interface lets a computer-algebra backend
// replace the native GCD; every implementation must be deterministic and
// value preserving.
package cancel

import (
	"math/big"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/poly"
)

// Canceller divides a numerator and denominator by their greatest common divisor
type Canceller interface {
	Cancel(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial, error)
}

// Func adapts a plain function, typically a bridge to an external backend
type Func func(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial, error)

// Cancel calls f. Its errors are reported as cancellation failures.
func (f Func) Cancel(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial, error) {
	n, d, err := f(num, den)
	if err != nil {
		if pverrors.HasModuleCode(err, pverrors.CodeCancelFailed) {
			return nil, nil, err
		}
		return nil, nil, pverrors.CancelFailed("external", err)
	}
	return n, d, nil
}

// Normalize divides both parts by the integer content they share and makes
// the leading coefficient of the denominator positive. A zero numerator
// yields 0/1; a zero denominator is left alone.
func Normalize(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial) {
	if den.IsZero() {
		return num, den
	}
	if num.IsZero() {
		return num, poly.FromInt64(den.Registry(), 1)
	}

	c := new(big.Int).GCD(nil, nil, num.Content(), den.Content())
	if den.LeadingTerm().Coef.Sign() < 0 {
		c.Neg(c)
	}
	if c.Cmp(big.NewInt(1)) == 0 {
		return num, den
	}
	return num.DivideByInt(c), den.DivideByInt(c)
}
