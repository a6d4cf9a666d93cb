package qsp

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseZeroPhasesWx(t *testing.T) {
	// With all phases zero the Wx circuit is W(a)^d, whose top-left entry
	// is cos(d*acos(a)) = T_d(a).
	for _, d := range []int{1, 2, 3, 5, 8} {
		t.Run(fmt.Sprintf("Degree%d", d), func(t *testing.T) {
			seq := NewPhaseSequence(make([]float64, d+1), ModelWx)
			for _, a := range []float64{-1, -0.7, 0, 0.3, 0.9, 1} {
				v, err := ResponseAt(seq, a)
				require.NoError(t, err)
				require.InDelta(t, math.Cos(float64(d)*math.Acos(a)), real(v), 1e-12)
				require.InDelta(t, 0, imag(v), 1e-12)
			}
		})
	}
}

func TestResponseZeroPhasesWz(t *testing.T) {
	// The Wz signal is diagonal, so the zero-phase circuit response is
	// exp(i*d*acos(a)).
	const d = 4
	seq := NewPhaseSequence(make([]float64, d+1), ModelWz)
	for _, a := range []float64{-1, -0.5, 0, 0.5, 1} {
		v, err := ResponseAt(seq, a)
		require.NoError(t, err)
		want := cmplx.Exp(complex(0, float64(d)*math.Acos(a)))
		require.InDelta(t, 0, cmplx.Abs(v-want), 1e-12)
	}
}

func TestResponseDomain(t *testing.T) {
	seq := NewPhaseSequence([]float64{0.1, 0.2}, ModelWx)
	_, err := ResponseAt(seq, 1.5)
	require.ErrorIs(t, err, ErrDomain)
	_, err = ResponseAt(seq, -1.0001)
	require.ErrorIs(t, err, ErrDomain)
}

func TestSimulateResponseGrid(t *testing.T) {
	seq := NewPhaseSequence([]float64{0.3, -0.1, 0.2}, ModelWx)

	t.Run("FullDomain", func(t *testing.T) {
		curve, err := SimulateResponse(seq, 101, false)
		require.NoError(t, err)
		require.Len(t, curve.Points, 101)
		require.Equal(t, -1.0, curve.Points[0])
		require.Equal(t, 1.0, curve.Points[100])
		require.False(t, curve.PositiveOnly)
	})
	t.Run("PositiveOnly", func(t *testing.T) {
		curve, err := SimulateResponse(seq, 51, true)
		require.NoError(t, err)
		require.Equal(t, 0.0, curve.Points[0])
		require.Equal(t, 1.0, curve.Points[50])
		require.True(t, curve.PositiveOnly)
	})
	t.Run("TooFewPoints", func(t *testing.T) {
		_, err := SimulateResponse(seq, 1, false)
		require.Error(t, err)
	})
}

func TestCurveAlignFirstPoint(t *testing.T) {
	seq := NewPhaseSequence([]float64{0.7, 0.2, -0.4}, ModelWx)
	curve, err := SimulateResponse(seq, 21, false)
	require.NoError(t, err)

	aligned := curve.AlignFirstPoint()
	require.InDelta(t, 0, cmplx.Phase(aligned.Values[0]), 1e-12)
	// Magnitudes are untouched.
	for i := range curve.Values {
		require.InDelta(t, cmplx.Abs(curve.Values[i]), cmplx.Abs(aligned.Values[i]), 1e-12)
	}
	// Idempotent.
	twice := aligned.AlignFirstPoint()
	for i := range aligned.Values {
		require.InDelta(t, 0, cmplx.Abs(aligned.Values[i]-twice.Values[i]), 1e-12)
	}
}

func TestSequenceAlignFirstPoint(t *testing.T) {
	t.Run("Wx", func(t *testing.T) {
		seq := NewPhaseSequence([]float64{0.5, 0.1, 0.3}, ModelWx)
		aligned, err := AlignFirstPoint(seq)
		require.NoError(t, err)
		require.Equal(t, seq.Len(), aligned.Len())

		v, err := ResponseAt(aligned, -1)
		require.NoError(t, err)
		require.InDelta(t, 0, cmplx.Phase(v), 1e-12)

		// Only a global phase moved: magnitudes agree everywhere.
		for _, a := range []float64{-0.5, 0, 0.5, 1} {
			v0, err := ResponseAt(seq, a)
			require.NoError(t, err)
			v1, err := ResponseAt(aligned, a)
			require.NoError(t, err)
			require.InDelta(t, cmplx.Abs(v0), cmplx.Abs(v1), 1e-12)
		}
	})
	t.Run("WzNotAlignable", func(t *testing.T) {
		seq := NewPhaseSequence([]float64{0.5, 0.1, 0.3}, ModelWz)
		_, err := AlignFirstPoint(seq)
		require.ErrorIs(t, err, ErrAlignment)
	})
}

func TestPhaseSequenceImmutability(t *testing.T) {
	phases := []float64{0.1, 0.2, 0.3}
	seq := NewPhaseSequence(phases, ModelWx)
	phases[0] = 99
	require.Equal(t, []float64{0.1, 0.2, 0.3}, seq.Phases())

	got := seq.Phases()
	got[1] = 99
	require.Equal(t, []float64{0.1, 0.2, 0.3}, seq.Phases())
}
