package solver

import (
	"math"
	"math/cmplx"
)

const (
	rootMaxIter = 600
	rootTol     = 1e-13
	// rootTolCluster accepts an iteration that has stalled without meeting
	// rootTol. Multiple roots split into clusters whose steps bottom out
	// near the square root of the machine epsilon, which is still accurate
	// enough for the factor coefficients downstream.
	rootTolCluster = 1e-7
)

// polyRoots returns the complex roots of the polynomial with ascending
// coefficients c (c[len(c)-1] != 0), using the Aberth-Ehrlich simultaneous
// iteration. The boolean reports whether the iteration converged.
func polyRoots(c []complex128) ([]complex128, bool) {
	n := len(c) - 1
	if n < 1 {
		return nil, true
	}
	// monic normalization
	monic := make([]complex128, n+1)
	for i := range monic {
		monic[i] = c[i] / c[n]
	}

	// Initial guesses on a ring of radius |c0|^(1/n), the geometric mean of
	// the root moduli, which sits near 1 for the reciprocal-symmetric
	// polynomials produced by the completion step.
	r := math.Pow(cmplx.Abs(monic[0]), 1/float64(n))
	if r == 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		r = 1
	}
	z := make([]complex128, n)
	for i := range z {
		theta := 2*math.Pi*float64(i)/float64(n) + 0.4
		z[i] = complex(r*math.Cos(theta), r*math.Sin(theta))
	}

	var lastStep, lastZ float64
	for iter := 0; iter < rootMaxIter; iter++ {
		var maxStep, maxZ float64
		for i := range z {
			p, dp := hornerDeriv(monic, z[i])
			if cmplx.Abs(p) == 0 {
				continue
			}
			if dp == 0 {
				// nudge off a critical point
				z[i] += complex(1e-8, 1e-8)
				maxStep = math.Inf(1)
				continue
			}
			w := p / dp
			var s complex128
			for j := range z {
				if j != i {
					d := z[i] - z[j]
					if d == 0 {
						d = complex(1e-14, 1e-14)
					}
					s += 1 / d
				}
			}
			denom := 1 - w*s
			if denom == 0 {
				denom = complex(1e-14, 0)
			}
			step := w / denom
			z[i] -= step
			if a := cmplx.Abs(step); a > maxStep {
				maxStep = a
			}
			if a := cmplx.Abs(z[i]); a > maxZ {
				maxZ = a
			}
		}
		if maxStep <= rootTol*(1+maxZ) {
			return z, true
		}
		lastStep = maxStep
		lastZ = maxZ
	}
	return z, lastStep <= rootTolCluster*(1+lastZ)
}

// hornerDeriv evaluates the polynomial and its derivative at x.
func hornerDeriv(c []complex128, x complex128) (p, dp complex128) {
	p = c[len(c)-1]
	for i := len(c) - 2; i >= 0; i-- {
		dp = dp*x + p
		p = p*x + c[i]
	}
	return
}
