package approx

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/tuneinsight/qsp/poly"
)

// invertPrec is the big.Float precision used for the binomial tail sums of
// the 1/a expansion, whose terms overflow float64 well before the degrees
// of interest.
const invertPrec = 256

// OneOverX returns an odd Chebyshev-basis polynomial approximating 1/a on
// [-1, -1/kappa] U [1/kappa, 1] with max error eps (up to the final
// rescaling that keeps the magnitude below 1 on all of [-1, 1]).
//
// The construction is the truncated expansion of (1 - (1-a^2)^b)/a of
// Childs, Kothari and Somma: b = ceil(kappa^2 * log(kappa/eps)) and
// truncation order J = ceil(sqrt(b * log(4b/eps))), with the coefficient of
// T_{2j+1} equal to 4*(-1)^j * 2^{-2b} * sum_{i=j+1..b} C(2b, b+i).
// The minimal degree meeting eps is 2J+1; if it exceeds MaxDegree the
// construction fails with ErrToleranceUnreachable.
func OneOverX(kappa, eps float64) (*poly.Polynomial, error) {
	if kappa <= 1 || math.IsInf(kappa, 0) {
		return nil, fmt.Errorf("%w: kappa=%v must be > 1", ErrApproximation, kappa)
	}
	if eps <= 0 || eps >= 1 {
		return nil, fmt.Errorf("%w: eps=%v must be in (0,1)", ErrApproximation, eps)
	}
	b := int(math.Ceil(kappa * kappa * math.Log(kappa/eps)))
	j := int(math.Ceil(math.Sqrt(float64(b) * math.Log(4*float64(b)/eps))))
	if j > b {
		j = b
	}
	degree := 2*j + 1
	if degree > MaxDegree {
		return nil, fmt.Errorf("%w: degree %d required for kappa=%v eps=%v", ErrToleranceUnreachable, degree, kappa, eps)
	}

	// Binomials C(2b, b+i) for i = 1..b by the ratio recurrence, recording
	// the prefix sums needed to form S_k = sum_{i=k+1..b} C(2b, b+i).
	binom := new(big.Int).Binomial(int64(2*b), int64(b+1))
	prefix := make([]*big.Int, j+1) // prefix[k] = sum_{i=1..k}
	prefix[0] = new(big.Int)
	acc := new(big.Int)
	for i := 1; i <= b; i++ {
		acc.Add(acc, binom)
		if i <= j {
			prefix[i] = new(big.Int).Set(acc)
		}
		if i < b {
			// C(2b, b+i+1) = C(2b, b+i) * (b-i) / (b+i+1)
			binom.Mul(binom, big.NewInt(int64(b-i)))
			binom.Quo(binom, big.NewInt(int64(b+i+1)))
		}
	}
	sums := make([]*big.Int, j+1)
	for k := 0; k <= j; k++ {
		sums[k] = new(big.Int).Sub(acc, prefix[k])
	}

	two := new(big.Float).SetPrec(invertPrec).SetInt64(2)
	exp := new(big.Float).SetPrec(invertPrec).SetInt64(int64(2 * b))
	pow := bigfloat.Pow(two, exp) // 2^{2b}

	coeffs := make([]float64, degree+1)
	for k := 0; k <= j; k++ {
		c := new(big.Float).SetPrec(invertPrec).SetInt(sums[k])
		c.Quo(c, pow)
		v, _ := c.Float64()
		if k%2 == 1 {
			v = -v
		}
		coeffs[2*k+1] = 4 * v
	}
	return rescaled(poly.Chebyshev, coeffs)
}
