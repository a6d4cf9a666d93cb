package poly

import "math"

// Interpolate computes the degree-degree Chebyshev interpolant of f over
// [-1, 1], using the Chebyshev nodes of the first kind. For a polynomial f
// of degree at most degree the interpolation is exact up to rounding.
func Interpolate(f func(float64) float64, degree int) (*Polynomial, error) {
	n := degree + 1
	nodes := chebyshevNodes(n)
	fi := make([]float64, n)
	for i, x := range nodes {
		fi[i] = f(x)
	}
	return NewPolynomial(Chebyshev, chebyCoeffs(nodes, fi))
}

// chebyshevNodes returns the n Chebyshev nodes cos(pi*(k-1/2)/n) in
// ascending order.
func chebyshevNodes(n int) []float64 {
	nodes := make([]float64, n)
	for k := 1; k <= n; k++ {
		nodes[n-k] = math.Cos(math.Pi * (float64(k) - 0.5) / float64(n))
	}
	return nodes
}

// chebyCoeffs recovers Chebyshev coefficients from values at the nodes by
// the discrete orthogonality relation.
func chebyCoeffs(nodes, fi []float64) []float64 {
	n := len(nodes)
	coeffs := make([]float64, n)
	for i := 0; i < n; i++ {
		u := nodes[i]
		tprev, t := 1.0, u
		for j := 0; j < n; j++ {
			coeffs[j] += fi[i] * tprev
			tprev, t = t, 2*u*t-tprev
		}
	}
	coeffs[0] /= float64(n)
	for i := 1; i < n; i++ {
		coeffs[i] /= float64(n) / 2
	}
	return coeffs
}

// ToMonomial returns the polynomial expressed in the monomial basis.
func (p *Polynomial) ToMonomial() *Polynomial {
	if p.basis == Monomial {
		return p
	}
	var mono []float64
	switch p.basis {
	case Chebyshev:
		mono = recurrenceToMonomial(p.coeffs, 1)
	case SecondKind:
		mono = recurrenceToMonomial(p.coeffs, 2)
	}
	out, err := NewPolynomial(Monomial, mono)
	if err != nil {
		// p holds at least one coefficient, so mono is non-empty.
		panic(err)
	}
	return out
}

// ToChebyshev returns the polynomial expressed in the Chebyshev basis of the
// first kind, computed by interpolation at Degree()+1 nodes (exact for
// polynomials up to rounding).
func (p *Polynomial) ToChebyshev() (*Polynomial, error) {
	if p.basis == Chebyshev {
		return p, nil
	}
	return Interpolate(p.Evaluate, p.Degree())
}

// recurrenceToMonomial expands sum c_k B_k with B_0 = 1, B_1 = scale*x and
// B_{k+1} = 2x*B_k - B_{k-1} into monomial coefficients.
func recurrenceToMonomial(coeffs []float64, scale float64) []float64 {
	n := len(coeffs)
	out := make([]float64, n)
	prev := make([]float64, n) // B_{k-1}
	cur := make([]float64, n)  // B_k
	prev[0] = 1
	out[0] = coeffs[0]
	if n == 1 {
		return out
	}
	cur[1] = scale
	for k := 1; k < n; k++ {
		for j := 0; j <= k; j++ {
			out[j] += coeffs[k] * cur[j]
		}
		if k == n-1 {
			break
		}
		next := make([]float64, n)
		for j := 0; j <= k; j++ {
			next[j+1] += 2 * cur[j]
			next[j] -= prev[j]
		}
		prev, cur = cur, next
	}
	return out
}
