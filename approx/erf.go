package approx

import (
	"fmt"
	"math"

	"github.com/tuneinsight/qsp/poly"
)

// Erf returns an odd polynomial of the given degree approximating
// erf(kappa*a) on [-1, 1], a smooth surrogate for the sign function whose
// transition sharpens as kappa grows. The coefficients come from Chebyshev
// interpolation of erf; the even coefficients vanish up to rounding and are
// forced to exact zero so the result carries a definite parity.
func Erf(degree int, kappa float64) (*poly.Polynomial, error) {
	if degree < 1 || degree%2 == 0 {
		return nil, fmt.Errorf("%w: degree %d must be odd and >= 1", ErrApproximation, degree)
	}
	if degree > MaxDegree {
		return nil, fmt.Errorf("%w: degree %d exceeds %d", ErrToleranceUnreachable, degree, MaxDegree)
	}
	if kappa <= 0 || math.IsInf(kappa, 0) || math.IsNaN(kappa) {
		return nil, fmt.Errorf("%w: kappa=%v must be positive and finite", ErrApproximation, kappa)
	}
	p, err := poly.Interpolate(func(x float64) float64 {
		return math.Erf(kappa * x)
	}, degree)
	if err != nil {
		return nil, err
	}
	coeffs := p.Coeffs()
	for i := 0; i < len(coeffs); i += 2 {
		coeffs[i] = 0
	}
	return rescaled(poly.Chebyshev, coeffs)
}
