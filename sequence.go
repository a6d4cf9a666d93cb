package qsp

import (
	"errors"
	"math/cmplx"
)

// ErrAlignment is returned when a phase sequence cannot absorb a global
// phase offset into its angles.
var ErrAlignment = errors.New("qsp: cannot align phase sequence")

// PhaseSequence is an ordered sequence of phase angles together with the
// circuit model it was produced for. A sequence solved from a polynomial of
// degree d has d+1 angles. PhaseSequence values are treated as immutable:
// transforms return a new sequence.
type PhaseSequence struct {
	phases []float64
	model  Model
}

// NewPhaseSequence returns a phase sequence over the given model.
// The angle slice is copied.
func NewPhaseSequence(phases []float64, model Model) PhaseSequence {
	p := make([]float64, len(phases))
	copy(p, phases)
	return PhaseSequence{phases: p, model: model}
}

// Phases returns a copy of the angles.
func (s PhaseSequence) Phases() []float64 {
	p := make([]float64, len(s.phases))
	copy(p, s.phases)
	return p
}

// Len returns the number of angles.
func (s PhaseSequence) Len() int { return len(s.phases) }

// Model returns the circuit model the sequence was produced for.
func (s PhaseSequence) Model() Model { return s.model }

// AlignFirstPoint returns a new sequence whose response has zero complex
// phase at a = -1, the first point of the standard sampling grid. For the
// Wx model the offset is absorbed into the leading Z phase, which multiplies
// the response by a global phase. An X phase offset is not a global phase,
// so Wz sequences can only be aligned at the curve level (see
// ResponseCurve.AlignFirstPoint) and ErrAlignment is returned.
func AlignFirstPoint(s PhaseSequence) (PhaseSequence, error) {
	if s.model != ModelWx {
		return PhaseSequence{}, ErrAlignment
	}
	if s.Len() == 0 {
		return PhaseSequence{}, ErrAlignment
	}
	r, err := ResponseAt(s, -1)
	if err != nil {
		return PhaseSequence{}, err
	}
	if r == 0 {
		return NewPhaseSequence(s.phases, s.model), nil
	}
	phases := s.Phases()
	phases[0] -= cmplx.Phase(r)
	return PhaseSequence{phases: phases, model: s.model}, nil
}
