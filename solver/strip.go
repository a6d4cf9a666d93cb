package solver

import (
	"math"
	"math/cmplx"
)

// driftTol bounds how far the unimodular stripping ratio may wander from
// the unit circle before the attempt is declared numerically lost.
const driftTol = 1e-4

// stripPhases peels the full circuit pair (P, Q) down to degree zero,
// producing the d+1 phase angles of the factorization together with the
// number of degree-reduction steps performed. P has length d+1 and Q
// length d, monomial coefficients.
func stripPhases(P, Q []complex128) ([]float64, int, error) {
	d := len(P) - 1
	phases := make([]float64, d+1)
	steps := 0
	for k := d; k >= 1; k-- {
		u, err := stripRatio(P[k], Q[k-1])
		if err != nil {
			return nil, steps, err
		}
		phi := 0.5 * math.Acos(real(u))
		if imag(u) < 0 {
			phi = -phi
		}
		phases[k] = phi
		P, Q = stripOnce(P, Q, phi)
		steps++
	}
	phases[0] = cmplx.Phase(P[0])
	return phases, steps, nil
}

// stripRatio returns the ratio exp(2i*phi_k) = p_k / q_{k-1} of the leading
// coefficients, rejecting ratios that have drifted off the unit circle.
func stripRatio(p, q complex128) (complex128, error) {
	if q == 0 {
		return 0, errDrift
	}
	u := p / q
	if math.Abs(cmplx.Abs(u)-1) > driftTol {
		return 0, errDrift
	}
	if re := real(u); re > 1 || re < -1 {
		u = complex(math.Copysign(1, re), 0)
	}
	return u, nil
}

// stripOnce removes the top phase phi from the degree-k pair, returning the
// degree k-1 pair
//
//	P' = e^{-i phi} a P + e^{i phi} (1-a^2) Q
//	Q' = e^{ i phi} a Q - e^{-i phi} P
//
// truncated to their reduced degrees.
func stripOnce(P, Q []complex128, phi float64) (pOut, qOut []complex128) {
	k := len(P) - 1
	em := cmplx.Exp(complex(0, -phi))
	ep := cmplx.Exp(complex(0, phi))

	pOut = make([]complex128, k)
	for j := 0; j < k; j++ {
		var v complex128
		if j >= 1 {
			v = em * P[j-1]
		}
		v += ep * Q[j]
		if j >= 2 {
			v -= ep * Q[j-2]
		}
		pOut[j] = v
	}
	qOut = make([]complex128, k-1)
	for j := 0; j < k-1; j++ {
		var v complex128
		if j >= 1 {
			v = ep * Q[j-1]
		}
		v -= em * P[j]
		qOut[j] = v
	}
	return pOut, qOut
}
