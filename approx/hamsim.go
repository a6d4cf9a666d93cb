package approx

import (
	"fmt"
	"math"

	"github.com/tuneinsight/qsp/poly"
)

// JacobiAnger returns the truncated Jacobi-Anger expansion of
// exp(-i*tau*sin(2*theta)) as the target pair (A, C) of a Wz-model solve:
// with a = cos(theta), the intended circuit response is
//
//	A(a) + i*sqrt(1-a^2)*C(a)
//
// where A collects the even Bessel terms in the Chebyshev basis,
//
//	A = suc * (J_0(tau) + 2*sum_k J_2k(tau) * T_4k),
//
// and C the odd ones in the second-kind basis,
//
//	C = -suc * 2*sum_k J_2k+1(tau) * U_4k+1.
//
// The truncation order is the smallest M with |J_M(tau)| and |J_M+1(tau)|
// below eps; it grows with tau, and the construction fails with
// ErrToleranceUnreachable once the implied degree exceeds MaxDegree.
// suc < 1 shrinks the pair away from the unit circle so the completion
// step of the solver stays positive.
func JacobiAnger(tau, eps, suc float64) (a, c *poly.Polynomial, err error) {
	if tau <= 0 || math.IsInf(tau, 0) || math.IsNaN(tau) {
		return nil, nil, fmt.Errorf("%w: tau=%v must be positive and finite", ErrApproximation, tau)
	}
	if eps <= 0 || eps >= 1 {
		return nil, nil, fmt.Errorf("%w: eps=%v must be in (0,1)", ErrApproximation, eps)
	}
	if suc <= 0 || suc > 1 {
		return nil, nil, fmt.Errorf("%w: suc=%v must be in (0,1]", ErrApproximation, suc)
	}

	m := 1
	for math.Abs(math.Jn(m, tau)) >= eps || math.Abs(math.Jn(m+1, tau)) >= eps {
		m++
		if 2*m > MaxDegree {
			return nil, nil, fmt.Errorf("%w: truncation order for tau=%v eps=%v exceeds degree %d", ErrToleranceUnreachable, tau, eps, MaxDegree)
		}
	}
	// Bessel orders up to m-1 are kept.
	kEven := (m - 1) / 2 // J_0, J_2, ..., J_2kEven
	kOdd := (m - 2) / 2  // J_1, J_3, ..., J_2kOdd+1; negative if none

	ac := make([]float64, 4*kEven+1)
	ac[0] = suc * math.J0(tau)
	for k := 1; k <= kEven; k++ {
		ac[4*k] = suc * 2 * math.Jn(2*k, tau)
	}

	var cc []float64
	if kOdd >= 0 {
		cc = make([]float64, 4*kOdd+2)
		for k := 0; k <= kOdd; k++ {
			cc[4*k+1] = -suc * 2 * math.Jn(2*k+1, tau)
		}
	} else {
		cc = []float64{0}
	}

	if a, err = poly.NewPolynomial(poly.Chebyshev, ac); err != nil {
		return nil, nil, err
	}
	if c, err = poly.NewPolynomial(poly.SecondKind, cc); err != nil {
		return nil, nil, err
	}
	return a, c, nil
}
