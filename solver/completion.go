package solver

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/tuneinsight/qsp/poly"
)

// errDrift signals that an attempt ran into numerical drift (out-of-range
// trigonometric argument, failed factorization, negative completion mass).
// It is an internal retry trigger, never surfaced to the caller.
var errDrift = errors.New("solver: numerical drift")

// deflateTol is the relative threshold for stripping vanishing end
// coefficients before root finding.
const deflateTol = 1e-14

// complete lifts the prescribed target pair (A in the Chebyshev basis, C in
// the second-kind basis) of a degree-d solve to the full circuit pair
// (P, Q), deg P = d, deg Q = d-1, satisfying
//
//	|P(a)|^2 + (1-a^2)*|Q(a)|^2 = 1  on [-1, 1].
//
// P = A + iB and Q = C + iD, where the completion components (B, D) come
// from the Fejer-Riesz spectral factorization of the trigonometric lift of
// 1 - A^2 - (1-a^2)*C^2.
func complete(aCheb, cU []float64, d int) (P, Q []complex128, err error) {
	// Laurent lift of A: T_k -> (w^k + w^-k)/2. Center index d.
	F := make([]complex128, 2*d+1)
	F[d] = complex(aCheb[0], 0)
	for k := 1; k < len(aCheb) && k <= d; k++ {
		h := complex(aCheb[k]/2, 0)
		F[d+k] += h
		F[d-k] += h
	}
	// Laurent lift of sin(theta)*C: U_j -> (w^(j+1) - w^-(j+1))/(2i).
	G := make([]complex128, 2*d+1)
	for j := 0; j < len(cU) && j+1 <= d; j++ {
		h := complex(0, cU[j]/2) // 1/(2i) = -i/2
		G[d+j+1] += -h
		G[d-j-1] += h
	}

	// R(w) = 1 - F*conj-reflect(F) - G*conj-reflect(G), centered at 2d.
	// fft.Convolve is circular at the input length, so both factors are
	// zero-padded to the full product length 4d+1 to make it linear.
	pad := func(l []complex128) []complex128 {
		out := make([]complex128, 4*d+1)
		copy(out, l)
		return out
	}
	R := make([]complex128, 4*d+1)
	R[2*d] = 1
	for i, v := range fft.Convolve(pad(F), pad(conjReflect(F))) {
		R[i] -= v
	}
	for i, v := range fft.Convolve(pad(G), pad(conjReflect(G))) {
		R[i] -= v
	}
	// R is a symmetric real Laurent polynomial up to rounding.
	for i := range R {
		R[i] = complex(real(R[i]), 0)
	}

	e, err := spectralFactor(R, d)
	if err != nil {
		return nil, nil, err
	}

	gamma, err := factorScale(aCheb, cU, e)
	if err != nil {
		return nil, nil, err
	}

	// Split the centered factor into the T-basis component B and the
	// second-kind component D: gamma*w^-d*e(w) = B(cos) + i*sin*D(cos) on
	// the unit circle. Wrong-parity entries are rounding noise.
	bT := make([]float64, d+1)
	dU := make([]float64, d)
	if d%2 == 0 {
		bT[0] = gamma * e[d]
	}
	for k := 1; k <= d; k++ {
		if (k-d)%2 != 0 {
			continue
		}
		bT[k] = gamma * (e[d+k] + e[d-k])
		dU[k-1] = gamma * (e[d+k] - e[d-k])
	}

	aMono, err := toMonomial(poly.Chebyshev, aCheb)
	if err != nil {
		return nil, nil, err
	}
	bMono, err := toMonomial(poly.Chebyshev, bT)
	if err != nil {
		return nil, nil, err
	}
	cMono, err := toMonomial(poly.SecondKind, cU)
	if err != nil {
		return nil, nil, err
	}
	dMono, err := toMonomial(poly.SecondKind, dU)
	if err != nil {
		return nil, nil, err
	}

	P = make([]complex128, d+1)
	Q = make([]complex128, d)
	for i := range P {
		P[i] = complex(at(aMono, i), at(bMono, i))
	}
	for i := range Q {
		Q[i] = complex(at(cMono, i), at(dMono, i))
	}
	return P, Q, nil
}

// spectralFactor returns the real coefficients of the monic degree-2d
// factor e(w) built from the 2d smallest-modulus roots of w^2d * R(w).
func spectralFactor(R []complex128, d int) ([]float64, error) {
	if d == 0 {
		return []float64{1}, nil
	}
	var maxAbs float64
	for _, v := range R {
		if a := cmplx.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return nil, errDrift
	}
	lo, hi := 0, len(R)
	for lo < hi-1 && cmplx.Abs(R[lo]) <= deflateTol*maxAbs {
		lo++
	}
	for hi > lo+1 && cmplx.Abs(R[hi-1]) <= deflateTol*maxAbs {
		hi--
	}
	roots := make([]complex128, lo) // deflated trailing coefficients are roots at w=0
	found, ok := polyRoots(R[lo:hi])
	if !ok {
		return nil, errDrift
	}
	roots = append(roots, found...)
	if len(roots) < 2*d {
		return nil, errDrift
	}
	roots = selectFactorRoots(roots, 2*d)

	// Expand prod (w - r). The inside-circle selection is closed under
	// conjugation, so the imaginary parts of the product are noise.
	ec := make([]complex128, 2*d+1)
	ec[0] = 1
	deg := 0
	for _, r := range roots {
		for i := deg + 1; i > 0; i-- {
			ec[i] = ec[i-1] - r*ec[i]
		}
		ec[0] = -r * ec[0]
		deg++
	}
	e := make([]float64, 2*d+1)
	for i := range ec {
		e[i] = real(ec[i])
	}
	return e, nil
}

// circleTol is the modulus band around the unit circle inside which a
// root is treated as lying on it.
const circleTol = 1e-5

// selectFactorRoots picks the n roots of the doubled Laurent polynomial
// that belong to the factor: every root strictly inside the unit circle,
// then half of each on-circle cluster. Zeros of the completion mass on the
// circle have even multiplicity, so the factor takes half of each. When
// the count does not come out to n the roots are topped up or cut by
// modulus, leaving the retry loop to handle genuinely broken geometry.
func selectFactorRoots(roots []complex128, n int) []complex128 {
	sort.Slice(roots, func(i, j int) bool {
		ai, aj := cmplx.Abs(roots[i]), cmplx.Abs(roots[j])
		if ai != aj {
			return ai < aj
		}
		return imag(roots[i]) < imag(roots[j])
	})
	var inside, circle, outside []complex128
	for _, r := range roots {
		switch a := cmplx.Abs(r); {
		case a < 1-circleTol:
			inside = append(inside, r)
		case a <= 1+circleTol:
			circle = append(circle, r)
		default:
			outside = append(outside, r)
		}
	}

	sel := append([]complex128(nil), inside...)
	if len(circle) > 0 {
		// Sort by angle measured from a seam placed in the widest angular
		// gap, so no cluster straddles the branch cut of Phase.
		ang := func(r complex128) float64 {
			a := cmplx.Phase(r)
			if a < 0 {
				a += 2 * math.Pi
			}
			return a
		}
		sort.Slice(circle, func(i, j int) bool { return ang(circle[i]) < ang(circle[j]) })
		seam := ang(circle[0]) - 1
		if m := len(circle); m > 1 {
			widest := ang(circle[0]) + 2*math.Pi - ang(circle[m-1])
			seam = ang(circle[m-1]) + widest/2
			for i := 1; i < m; i++ {
				if gap := ang(circle[i]) - ang(circle[i-1]); gap > widest {
					widest = gap
					seam = ang(circle[i-1]) + gap/2
				}
			}
		}
		from := func(r complex128) float64 {
			return math.Mod(ang(r)-seam+4*math.Pi, 2*math.Pi)
		}
		sort.Slice(circle, func(i, j int) bool { return from(circle[i]) < from(circle[j]) })
		for i := 0; i < len(circle); {
			j := i + 1
			for j < len(circle) && from(circle[j])-from(circle[j-1]) < 1e-3 {
				j++
			}
			sel = append(sel, circle[i:i+(j-i+1)/2]...)
			i = j
		}
	}

	if len(sel) > n {
		sort.Slice(sel, func(i, j int) bool { return cmplx.Abs(sel[i]) < cmplx.Abs(sel[j]) })
		sel = sel[:n]
	}
	for i := 0; len(sel) < n; i++ {
		sel = append(sel, roots[len(roots)-1-i])
	}
	return sel
}

// factorScale fixes the positive scale gamma of the spectral factor by
// matching |gamma*e|^2 against the completion mass on the unit circle,
// averaged over the sample angles where the mass is largest.
func factorScale(aCheb, cU []float64, e []float64) (float64, error) {
	const nAngles = 32
	type sample struct{ mass, mag2 float64 }
	samples := make([]sample, 0, nAngles)
	for m := 0; m < nAngles; m++ {
		theta := math.Pi * (float64(m) + 0.5) / nAngles
		x := math.Cos(theta)
		av := evalRec(aCheb, x, x)
		cv := math.Sin(theta) * evalRec(cU, x, 2*x)
		mass := 1 - av*av - cv*cv
		w := cmplx.Exp(complex(0, theta))
		var ev complex128
		for i := len(e) - 1; i >= 0; i-- {
			ev = ev*w + complex(e[i], 0)
		}
		samples = append(samples, sample{mass, cmplx.Abs(ev) * cmplx.Abs(ev)})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].mass > samples[j].mass })
	var num, den float64
	for _, s := range samples[:nAngles/2] {
		if s.mass < 0 || s.mag2 == 0 {
			return 0, errDrift
		}
		num += s.mass
		den += s.mag2
	}
	if den == 0 || num <= 0 {
		return 0, errDrift
	}
	return math.Sqrt(num / den), nil
}

// conjReflect maps a Laurent coefficient slice L(w) to conj(L)(1/w).
func conjReflect(l []complex128) []complex128 {
	out := make([]complex128, len(l))
	for i, v := range l {
		out[len(l)-1-i] = cmplx.Conj(v)
	}
	return out
}

// evalRec sums c_k*B_k(x) for B_0=1, B_1=first, B_k+1 = 2x*B_k - B_k-1.
func evalRec(coeffs []float64, x, first float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	y := coeffs[0]
	prev, cur := 1.0, first
	for i := 1; i < len(coeffs); i++ {
		y += coeffs[i] * cur
		prev, cur = cur, 2*x*cur-prev
	}
	return y
}

// toMonomial converts basis coefficients to monomial coefficients.
func toMonomial(basis poly.Basis, coeffs []float64) ([]float64, error) {
	if len(coeffs) == 0 {
		return nil, nil
	}
	p, err := poly.NewPolynomial(basis, coeffs)
	if err != nil {
		return nil, err
	}
	return p.ToMonomial().Coeffs(), nil
}

func at(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}
