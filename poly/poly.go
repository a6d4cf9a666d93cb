// Package poly implements the polynomial model consumed by the QSP angle
// solver: real coefficients over an explicit basis, with parity and
// boundedness tracked at construction time.
package poly

import (
	"errors"
	"fmt"
	"math"
)

// Basis is the coefficient basis of a polynomial.
type Basis int

const (
	// Monomial : x^(a+b) = x^a * x^b
	Monomial Basis = iota
	// Chebyshev : T_(a+b) = 2 * T_a * T_b - T_(|a-b|)
	Chebyshev
	// SecondKind is the Chebyshev basis of the second kind, U_k. It is used
	// for the sin-weighted component of complex QSP targets.
	SecondKind
)

func (b Basis) String() string {
	switch b {
	case Monomial:
		return "Monomial"
	case Chebyshev:
		return "Chebyshev"
	case SecondKind:
		return "SecondKind"
	default:
		return fmt.Sprintf("Basis(%d)", int(b))
	}
}

// Parity of a polynomial over [-1, 1].
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

var (
	// ErrEmpty is returned when a polynomial is built from no coefficients.
	ErrEmpty = errors.New("poly: no coefficients")
	// ErrInvalidParity rejects a polynomial whose coefficients mix parities
	// in a context that requires a definite parity.
	ErrInvalidParity = errors.New("poly: polynomial has no definite parity")
	// ErrUnbounded rejects a polynomial whose magnitude exceeds 1 on [-1, 1].
	ErrUnbounded = errors.New("poly: polynomial magnitude exceeds 1 on [-1,1]")
)

// boundSamples is the grid size used to measure the value bound.
const boundSamples = 1001

// parityTol is the relative threshold under which a coefficient is treated
// as a numerical zero when inferring parity.
const parityTol = 1e-12

// Polynomial is a finite-degree real polynomial in a declared basis.
// It is immutable once built.
type Polynomial struct {
	basis  Basis
	coeffs []float64
	parity Parity
	bound  float64
}

// NewPolynomial builds a polynomial from the given coefficients, ordered by
// ascending basis index. Trailing zero coefficients are trimmed, the parity
// is inferred from the nonzero coefficient pattern and the value bound is
// measured by dense sampling of [-1, 1].
func NewPolynomial(basis Basis, coeffs []float64) (*Polynomial, error) {
	if len(coeffs) == 0 {
		return nil, ErrEmpty
	}
	n := len(coeffs)
	for n > 1 && coeffs[n-1] == 0 {
		n--
	}
	c := make([]float64, n)
	copy(c, coeffs[:n])

	p := &Polynomial{basis: basis, coeffs: c}
	p.parity = inferParity(c)
	for i := 0; i < boundSamples; i++ {
		x := -1 + 2*float64(i)/float64(boundSamples-1)
		if v := math.Abs(p.Evaluate(x)); v > p.bound {
			p.bound = v
		}
	}
	return p, nil
}

func inferParity(coeffs []float64) Parity {
	var max float64
	for _, c := range coeffs {
		if a := math.Abs(c); a > max {
			max = a
		}
	}
	if max == 0 {
		return ParityEven
	}
	even, odd := false, false
	for i, c := range coeffs {
		if math.Abs(c) <= parityTol*max {
			continue
		}
		if i%2 == 0 {
			even = true
		} else {
			odd = true
		}
	}
	switch {
	case even && odd:
		return ParityNone
	case odd:
		return ParityOdd
	default:
		return ParityEven
	}
}

// Basis returns the coefficient basis.
func (p *Polynomial) Basis() Basis { return p.basis }

// Degree returns the degree of the polynomial.
func (p *Polynomial) Degree() int { return len(p.coeffs) - 1 }

// Parity returns the inferred parity.
func (p *Polynomial) Parity() Parity { return p.parity }

// Bound returns the measured maximum of |P(x)| over [-1, 1].
func (p *Polynomial) Bound() float64 { return p.bound }

// Coeffs returns a copy of the coefficients.
func (p *Polynomial) Coeffs() []float64 {
	c := make([]float64, len(p.coeffs))
	copy(c, p.coeffs)
	return c
}

// Evaluate returns P(x). Monomial coefficients are evaluated with Horner's
// rule, Chebyshev bases with the three-term recurrence.
func (p *Polynomial) Evaluate(x float64) float64 {
	switch p.basis {
	case Monomial:
		y := p.coeffs[len(p.coeffs)-1]
		for i := len(p.coeffs) - 2; i >= 0; i-- {
			y = y*x + p.coeffs[i]
		}
		return y
	case Chebyshev:
		return evalRecurrence(p.coeffs, x, x)
	case SecondKind:
		return evalRecurrence(p.coeffs, x, 2*x)
	default:
		panic(fmt.Sprintf("invalid basis %v", p.basis))
	}
}

// evalRecurrence sums c_k * B_k(x) where B_0 = 1, B_1 = first and
// B_{k+1} = 2x*B_k - B_{k-1}, covering both Chebyshev kinds.
func evalRecurrence(coeffs []float64, x, first float64) float64 {
	y := coeffs[0]
	if len(coeffs) == 1 {
		return y
	}
	prev, cur := 1.0, first
	for i := 1; i < len(coeffs); i++ {
		y += coeffs[i] * cur
		prev, cur = cur, 2*x*cur-prev
	}
	return y
}
