package solver

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/qsp"
	"github.com/tuneinsight/qsp/approx"
	"github.com/tuneinsight/qsp/poly"
)

var testSeed = []byte("solver test seed")

func newTestSolver(t *testing.T, params Parameters) *Solver {
	t.Helper()
	if params.Seed == nil {
		params.Seed = testSeed
	}
	slv, err := NewSolver(params)
	require.NoError(t, err)
	return slv
}

func TestSolveChebyshevT2(t *testing.T) {
	// 2a^2 - 1 = T_2(a), given in the monomial basis. An exactly bounded
	// target must still solve on the first attempt.
	target, err := poly.NewPolynomial(poly.Monomial, []float64{-1, 0, 2})
	require.NoError(t, err)

	slv := newTestSolver(t, Parameters{})
	seq, rec, err := slv.SolveWithRecord(target, qsp.ModelWx)
	require.NoError(t, err)
	require.Equal(t, 1, rec.Attempts)
	require.Equal(t, 3, seq.Len())
	require.Equal(t, qsp.ModelWx, seq.Model())

	for _, a := range []float64{0, 0.5, 1, -1} {
		v, err := qsp.ResponseAt(seq, a)
		require.NoError(t, err)
		require.InDelta(t, 2*a*a-1, real(v), 1e-3, "a=%v", a)
	}
}

func TestSolveRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		basis  poly.Basis
		coeffs []float64
	}{
		{"ScaledT5", poly.Chebyshev, []float64{0, 0, 0, 0, 0, 0.8}},
		{"OddMix", poly.Chebyshev, []float64{0, 0.3, 0, 0.4}},
		{"EvenMix", poly.Chebyshev, []float64{0.1, 0, -0.5, 0, 0.2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, err := poly.NewPolynomial(tc.basis, tc.coeffs)
			require.NoError(t, err)

			slv := newTestSolver(t, Parameters{})
			seq, rec, err := slv.SolveWithRecord(target, qsp.ModelWx)
			require.NoError(t, err)
			require.Equal(t, target.Degree()+1, seq.Len())
			require.LessOrEqual(t, rec.Residual, 1e-2)

			curve, err := qsp.SimulateResponse(seq, 101, false)
			require.NoError(t, err)
			for i, x := range curve.Points {
				require.InDelta(t, target.Evaluate(x), real(curve.Values[i]), 1e-2, "x=%v", x)
			}

			// The response inherits the parity of the target.
			sign := 1.0
			if target.Parity() == poly.ParityOdd {
				sign = -1
			}
			n := len(curve.Points)
			for i := 0; i < n/2; i++ {
				require.InDelta(t, sign*real(curve.Values[n-1-i]), real(curve.Values[i]), 1e-2)
			}
		})
	}
}

func TestSolveRealTargetWz(t *testing.T) {
	// A real target under the Wz model has no sin-weighted component, so
	// the full complex response must match the target.
	target, err := poly.NewPolynomial(poly.Chebyshev, []float64{0, 0.5, 0, 0.3})
	require.NoError(t, err)

	slv := newTestSolver(t, Parameters{})
	seq, err := slv.Solve(target, qsp.ModelWz)
	require.NoError(t, err)
	require.Equal(t, qsp.ModelWz, seq.Model())
	require.Equal(t, 4, seq.Len())

	for _, x := range []float64{-1, -0.5, 0, 0.3, 0.9} {
		v, err := qsp.ResponseAt(seq, x)
		require.NoError(t, err)
		require.InDelta(t, 0, cmplx.Abs(v-complex(target.Evaluate(x), 0)), 1e-2, "x=%v", x)
	}
}

func TestSolveDeterministicWithSeed(t *testing.T) {
	target, err := poly.NewPolynomial(poly.Chebyshev, []float64{0, 0, 0, 0, 0.99})
	require.NoError(t, err)

	a := newTestSolver(t, Parameters{})
	b := newTestSolver(t, Parameters{})
	seqA, err := a.Solve(target, qsp.ModelWx)
	require.NoError(t, err)
	seqB, err := b.Solve(target, qsp.ModelWx)
	require.NoError(t, err)
	require.Equal(t, seqA.Phases(), seqB.Phases())
}

func TestSolveRejectsInvalidTargets(t *testing.T) {
	slv := newTestSolver(t, Parameters{})

	t.Run("MixedParity", func(t *testing.T) {
		target, err := poly.NewPolynomial(poly.Chebyshev, []float64{0.1, 0.2, 0.3})
		require.NoError(t, err)
		_, err = slv.Solve(target, qsp.ModelWx)
		require.ErrorIs(t, err, poly.ErrInvalidParity)
	})
	t.Run("Unbounded", func(t *testing.T) {
		target, err := poly.NewPolynomial(poly.Monomial, []float64{0, 1.5})
		require.NoError(t, err)
		_, err = slv.Solve(target, qsp.ModelWx)
		require.ErrorIs(t, err, poly.ErrUnbounded)
	})
	t.Run("SecondKindBasis", func(t *testing.T) {
		target, err := poly.NewPolynomial(poly.SecondKind, []float64{0, 0.5})
		require.NoError(t, err)
		_, err = slv.Solve(target, qsp.ModelWx)
		require.Error(t, err)
	})
	t.Run("Constant", func(t *testing.T) {
		target, err := poly.NewPolynomial(poly.Chebyshev, []float64{0.5})
		require.NoError(t, err)
		_, err = slv.Solve(target, qsp.ModelWx)
		require.Error(t, err)
	})
}

func TestSolveExhaustsRetries(t *testing.T) {
	// A tolerance below the floating-point floor cannot be met, so the
	// solver must consume every attempt and report how many it spent.
	target, err := poly.NewPolynomial(poly.Chebyshev, []float64{0, 0, 0, 0, 0, 0.8})
	require.NoError(t, err)

	slv := newTestSolver(t, Parameters{MaxRetries: 3, Tolerance: 1e-18})
	_, rec, err := slv.SolveWithRecord(target, qsp.ModelWx)
	require.ErrorIs(t, err, ErrConvergence)

	var cerr *ConvergenceError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, 3, cerr.Record.Attempts)
	require.Equal(t, rec, cerr.Record)
	require.False(t, math.IsInf(cerr.Record.Residual, 1), "at least one attempt should have produced a residual")
}

func TestSolvePairHamiltonian(t *testing.T) {
	const (
		tau = 1.0
		eps = 1e-4
		suc = 0.99
	)
	a, c, err := approx.JacobiAnger(tau, eps, suc)
	require.NoError(t, err)

	slv := newTestSolver(t, Parameters{})
	seq, rec, err := slv.SolvePairWithRecord(a, c, qsp.ModelWz)
	require.NoError(t, err)
	require.Equal(t, 11, seq.Len())
	require.Equal(t, qsp.ModelWz, seq.Model())
	require.LessOrEqual(t, rec.Residual, 1e-2)

	// Against the closed form suc * exp(-i*tau*sin(2*theta)).
	for _, x := range []float64{-0.9, -0.3, 0, 0.4, 0.8, 1} {
		v, err := qsp.ResponseAt(seq, x)
		require.NoError(t, err)
		theta := math.Acos(x)
		want := complex(suc, 0) * cmplx.Exp(complex(0, -tau*math.Sin(2*theta)))
		require.InDelta(t, 0, cmplx.Abs(v-want), 2e-2, "x=%v", x)
	}
}

func TestSolvePairRejectsBadPairs(t *testing.T) {
	slv := newTestSolver(t, Parameters{})

	even, err := poly.NewPolynomial(poly.Chebyshev, []float64{0.1, 0, 0.5})
	require.NoError(t, err)
	oddU, err := poly.NewPolynomial(poly.SecondKind, []float64{0, 0.3})
	require.NoError(t, err)

	t.Run("WrongBasis", func(t *testing.T) {
		_, err := slv.SolvePair(oddU, oddU, qsp.ModelWz)
		require.Error(t, err)
		_, err = slv.SolvePair(even, even, qsp.ModelWz)
		require.Error(t, err)
	})
	t.Run("ParityClash", func(t *testing.T) {
		// deg A = 2, deg C + 1 = 2: compatible. Flip C to even U-indices.
		evenU, err := poly.NewPolynomial(poly.SecondKind, []float64{0.3, 0, 0.1})
		require.NoError(t, err)
		_, err = slv.SolvePair(even, evenU, qsp.ModelWz)
		require.ErrorIs(t, err, poly.ErrInvalidParity)
	})
	t.Run("PairUnbounded", func(t *testing.T) {
		big, err := poly.NewPolynomial(poly.Chebyshev, []float64{0.9, 0, 0.5})
		require.NoError(t, err)
		_, err = slv.SolvePair(big, oddU, qsp.ModelWz)
		require.ErrorIs(t, err, poly.ErrUnbounded)
	})
}

func TestNewSolverValidation(t *testing.T) {
	_, err := NewSolver(Parameters{})
	require.NoError(t, err)
	_, err = NewSolver(Parameters{MaxRetries: -1})
	require.Error(t, err)
	_, err = NewSolver(Parameters{Npts: 1})
	require.Error(t, err)
	_, err = NewSolver(Parameters{Tolerance: math.NaN()})
	require.Error(t, err)
}
