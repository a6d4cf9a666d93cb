package qsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrDomain is returned when a requested sample point lies outside the
// domain of the signal variable.
var ErrDomain = errors.New("qsp: sample point outside domain")

// ResponseCurve is the complex-valued response of a QSP circuit sampled
// across the signal domain. Curves are produced fresh by SimulateResponse
// and never mutated; transforms return a new curve.
type ResponseCurve struct {
	Points       []float64
	Values       []complex128
	Model        Model
	PositiveOnly bool
}

// matrix2 is a dense 2x2 complex matrix in row-major order.
type matrix2 [4]complex128

func mul2(a, b matrix2) matrix2 {
	return matrix2{
		a[0]*b[0] + a[1]*b[2], a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2], a[2]*b[1] + a[3]*b[3],
	}
}

// signalMatrix returns the signal-encoding rotation at point a for the model.
func signalMatrix(model Model, a float64) matrix2 {
	switch model {
	case ModelWx:
		b := complex(math.Sqrt(1-a*a), 0)
		return matrix2{complex(a, 0), 1i * b, 1i * b, complex(a, 0)}
	case ModelWz:
		u := cmplx.Exp(complex(0, math.Acos(a)))
		return matrix2{u, 0, 0, cmplx.Conj(u)}
	default:
		panic(fmt.Sprintf("invalid model %v", model))
	}
}

// phaseMatrix returns the phase rotation for angle phi; Z rotations for the
// Wx model and X rotations for the Wz model.
func phaseMatrix(model Model, phi float64) matrix2 {
	switch model {
	case ModelWx:
		u := cmplx.Exp(complex(0, phi))
		return matrix2{u, 0, 0, cmplx.Conj(u)}
	case ModelWz:
		c := complex(math.Cos(phi), 0)
		s := complex(0, math.Sin(phi))
		return matrix2{c, s, s, c}
	default:
		panic(fmt.Sprintf("invalid model %v", model))
	}
}

// ResponseAt evaluates the circuit response at a single point a. The phase
// rotations are interleaved with the signal rotation in sequence order and
// the (0,0) entry of the accumulated product is returned.
func ResponseAt(s PhaseSequence, a float64) (complex128, error) {
	if a < -1 || a > 1 {
		return 0, fmt.Errorf("%w: a=%v", ErrDomain, a)
	}
	if s.Len() == 0 {
		return 0, errors.New("qsp: empty phase sequence")
	}
	w := signalMatrix(s.model, a)
	u := phaseMatrix(s.model, s.phases[0])
	for _, phi := range s.phases[1:] {
		u = mul2(u, w)
		u = mul2(u, phaseMatrix(s.model, phi))
	}
	return u[0], nil
}

// SimulateResponse samples the circuit response uniformly over [-1, 1], or
// over [0, 1] when positiveOnly is set. npts must be at least 2.
func SimulateResponse(s PhaseSequence, npts int, positiveOnly bool) (*ResponseCurve, error) {
	if npts < 2 {
		return nil, fmt.Errorf("qsp: need at least 2 sample points, got %d", npts)
	}
	lo := -1.0
	if positiveOnly {
		lo = 0.0
	}
	curve := &ResponseCurve{
		Points:       make([]float64, npts),
		Values:       make([]complex128, npts),
		Model:        s.model,
		PositiveOnly: positiveOnly,
	}
	step := (1.0 - lo) / float64(npts-1)
	for i := 0; i < npts; i++ {
		a := lo + float64(i)*step
		if i == npts-1 {
			a = 1.0
		}
		v, err := ResponseAt(s, a)
		if err != nil {
			return nil, err
		}
		curve.Points[i] = a
		curve.Values[i] = v
	}
	return curve, nil
}

// AlignFirstPoint returns a copy of the curve with every value rotated by a
// common phase such that the first sample has zero complex phase. Applying
// the transform twice is the same as applying it once.
func (c *ResponseCurve) AlignFirstPoint() *ResponseCurve {
	out := &ResponseCurve{
		Points:       append([]float64(nil), c.Points...),
		Values:       make([]complex128, len(c.Values)),
		Model:        c.Model,
		PositiveOnly: c.PositiveOnly,
	}
	copy(out.Values, c.Values)
	if len(out.Values) == 0 || out.Values[0] == 0 {
		return out
	}
	rot := cmplx.Exp(complex(0, -cmplx.Phase(out.Values[0])))
	for i := range out.Values {
		out.Values[i] *= rot
	}
	return out
}
