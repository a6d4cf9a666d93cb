// Package approx builds bounded-polynomial approximations of target
// functions for QSP phase-angle synthesis: the bounded inverse 1/a, the
// erf-based sign surrogate, and the Jacobi-Anger expansion used for
// Hamiltonian simulation.
package approx

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/qsp/poly"
)

var (
	// ErrApproximation is returned when no stable construction exists for
	// the requested parameters.
	ErrApproximation = errors.New("approx: no stable construction for the given parameters")
	// ErrToleranceUnreachable is returned when no bounded truncation can
	// meet the requested tolerance. It wraps ErrApproximation.
	ErrToleranceUnreachable = fmt.Errorf("%w: tolerance unreachable", ErrApproximation)
)

// MaxDegree is the largest polynomial degree a builder will emit. Beyond
// this the degree-down solver is numerically hopeless in float64.
const MaxDegree = 513

// boundLimit is the magnitude every emitted polynomial is rescaled to stay
// under; the solver requires a sub-unit bound.
const boundLimit = 0.99

// rescaled builds a polynomial and, if its sampled magnitude exceeds
// boundLimit, rescales the coefficients so that it does not.
func rescaled(basis poly.Basis, coeffs []float64) (*poly.Polynomial, error) {
	p, err := poly.NewPolynomial(basis, coeffs)
	if err != nil {
		return nil, err
	}
	if p.Bound() <= boundLimit {
		return p, nil
	}
	scale := boundLimit / p.Bound()
	scaled := p.Coeffs()
	for i := range scaled {
		scaled[i] *= scale
	}
	return poly.NewPolynomial(basis, scaled)
}
