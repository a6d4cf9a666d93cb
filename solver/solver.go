// Package solver computes QSP phase-angle sequences from bounded
// polynomial targets. The solve completes the target to a full unitary
// circuit pair by spectral factorization, then peels the pair down degree
// by degree to read off the angles, retrying on a slightly contracted
// target whenever floating-point drift spoils an attempt.
package solver

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/tuneinsight/qsp"
	"github.com/tuneinsight/qsp/poly"
	"github.com/tuneinsight/qsp/utils"
	"github.com/tuneinsight/qsp/utils/sampling"
	"github.com/zeebo/blake3"
)

// ErrConvergence is returned, wrapped in a *ConvergenceError, when every
// attempt of a solve either drifted numerically or failed verification.
var ErrConvergence = errors.New("solver: failed to converge")

// maxDegree is the largest target degree the solver accepts. The
// degree-down recurrence loses roughly one decimal digit per few hundred
// degrees, so beyond this float64 cannot carry the factorization.
const maxDegree = 513

// retryMargin is the base contraction applied to the target on the first
// retry. Each further retry quadruples it.
const retryMargin = 1e-4

// prngKeySize is the number of blake3 digest bytes used to key the retry
// jitter stream.
const prngKeySize = 32

// Parameters configures a Solver. The zero value of a field selects its
// default.
type Parameters struct {
	// MaxRetries is the total number of solve attempts, including the
	// first. Defaults to 3.
	MaxRetries int
	// Tolerance is the largest acceptable residual between the simulated
	// circuit response and the target. Defaults to 1e-2.
	Tolerance float64
	// Npts is the number of uniform verification samples over the signal
	// domain. Defaults to 201.
	Npts int
	// Seed keys the retry jitter. A nil seed draws the jitter from
	// crypto/rand; any other value makes solves fully deterministic.
	Seed []byte
}

// ConvergenceRecord reports how a solve went: how many attempts were
// consumed, the total number of degree-reduction steps across them, and
// the residual of the returned (or best failing) attempt.
type ConvergenceRecord struct {
	Attempts   int
	Iterations int
	Residual   float64
}

// ConvergenceError carries the record of an exhausted solve. It unwraps to
// ErrConvergence.
type ConvergenceError struct {
	Record ConvergenceRecord
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solver: no convergence after %d attempts (best residual %.3g)",
		e.Record.Attempts, e.Record.Residual)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergence }

// Solver synthesizes phase-angle sequences. It is safe for concurrent use
// when Parameters.Seed is nil; seeded solvers derive an independent jitter
// stream per solve and are also safe for concurrent use.
type Solver struct {
	params Parameters
}

// NewSolver returns a solver for the given parameters, with zero-valued
// fields replaced by their defaults.
func NewSolver(params Parameters) (*Solver, error) {
	if params.MaxRetries == 0 {
		params.MaxRetries = 3
	}
	if params.Tolerance == 0 {
		params.Tolerance = 1e-2
	}
	if params.Npts == 0 {
		params.Npts = 201
	}
	if params.MaxRetries < 1 {
		return nil, fmt.Errorf("solver: MaxRetries must be at least 1, got %d", params.MaxRetries)
	}
	if params.Tolerance < 0 || math.IsNaN(params.Tolerance) {
		return nil, fmt.Errorf("solver: Tolerance must be non-negative, got %v", params.Tolerance)
	}
	if params.Npts < 2 {
		return nil, fmt.Errorf("solver: Npts must be at least 2, got %d", params.Npts)
	}
	return &Solver{params: params}, nil
}

// Solve computes the phase sequence of a real target polynomial under the
// given circuit model: the real part of the Wx response, or the full Wz
// response, equals the target over [-1, 1] up to Tolerance. The target
// must have definite parity and magnitude at most 1 on [-1, 1]; a degree-d
// target yields d+1 angles.
func (slv *Solver) Solve(target *poly.Polynomial, model qsp.Model) (qsp.PhaseSequence, error) {
	seq, _, err := slv.SolveWithRecord(target, model)
	return seq, err
}

// SolveWithRecord is Solve with the convergence record of the run. The
// record is meaningful also on error: a *ConvergenceError carries it too.
func (slv *Solver) SolveWithRecord(target *poly.Polynomial, model qsp.Model) (qsp.PhaseSequence, ConvergenceRecord, error) {
	cheb, err := validateReal(target)
	if err != nil {
		return qsp.PhaseSequence{}, ConvergenceRecord{}, err
	}
	d := cheb.Degree()
	aCoeffs := padded(cheb.Coeffs(), d+1)
	verify := slv.verifier(cheb, nil, model)
	return slv.run(aCoeffs, nil, d, model, verify)
}

// SolvePair computes the phase sequence of a complex target pair. Under
// the Wz model the response equals A(a) + i*sqrt(1-a^2)*C(a) over [-1, 1]
// up to Tolerance; under Wx only the real part A is observable and C
// constrains the circuit. A is a Chebyshev-basis polynomial and C a
// second-kind one; the sequence length is d+1 with d = max(deg A,
// deg C + 1).
func (slv *Solver) SolvePair(a, c *poly.Polynomial, model qsp.Model) (qsp.PhaseSequence, error) {
	seq, _, err := slv.SolvePairWithRecord(a, c, model)
	return seq, err
}

// SolvePairWithRecord is SolvePair with the convergence record of the run.
func (slv *Solver) SolvePairWithRecord(a, c *poly.Polynomial, model qsp.Model) (qsp.PhaseSequence, ConvergenceRecord, error) {
	if err := validatePair(a, c); err != nil {
		return qsp.PhaseSequence{}, ConvergenceRecord{}, err
	}
	d := a.Degree()
	if cd := c.Degree() + 1; cd > d {
		d = cd
	}
	aCoeffs := padded(a.Coeffs(), d+1)
	cCoeffs := padded(c.Coeffs(), d)
	verify := slv.verifier(a, c, model)
	return slv.run(aCoeffs, cCoeffs, d, model, verify)
}

// verifier builds the residual check of a solve: the sampled deviation of
// the circuit response from the prescribed target. The Wx model exposes
// the real component only; the Wz response is compared as a complex value.
func (slv *Solver) verifier(a, c *poly.Polynomial, model qsp.Model) func(qsp.PhaseSequence) (float64, error) {
	return func(seq qsp.PhaseSequence) (float64, error) {
		curve, err := qsp.SimulateResponse(seq, slv.params.Npts, false)
		if err != nil {
			return 0, err
		}
		diffs := make([]float64, len(curve.Points))
		for i, x := range curve.Points {
			switch model {
			case qsp.ModelWx:
				diffs[i] = math.Abs(real(curve.Values[i]) - a.Evaluate(x))
			default:
				want := complex(a.Evaluate(x), 0)
				if c != nil {
					want += complex(0, math.Sqrt(1-x*x)*c.Evaluate(x))
				}
				diffs[i] = abs(curve.Values[i] - want)
			}
		}
		return stats.Max(diffs)
	}
}

// run is the shared retry loop. aCoeffs holds the Chebyshev coefficients
// of the real component, padded to length d+1; cCoeffs the second-kind
// coefficients of the sin-weighted component, padded to length d (nil for
// real targets).
func (slv *Solver) run(aCoeffs, cCoeffs []float64, d int, model qsp.Model, verify func(qsp.PhaseSequence) (float64, error)) (qsp.PhaseSequence, ConvergenceRecord, error) {
	prng, err := slv.newPRNG(aCoeffs, cCoeffs)
	if err != nil {
		return qsp.PhaseSequence{}, ConvergenceRecord{}, err
	}

	var record ConvergenceRecord
	record.Residual = math.Inf(1)
	for attempt := 0; attempt < slv.params.MaxRetries; attempt++ {
		record.Attempts = attempt + 1

		a := append([]float64(nil), aCoeffs...)
		var c []float64
		if cCoeffs != nil {
			c = append([]float64(nil), cCoeffs...)
		}
		if attempt > 0 {
			xi, err := sampling.Float64(prng)
			if err != nil {
				return qsp.PhaseSequence{}, record, err
			}
			margin := retryMargin * math.Pow(4, float64(attempt-1))
			scale := 1 - margin*(1+xi/2)
			for i := range a {
				a[i] *= scale
			}
			for i := range c {
				c[i] *= scale
			}
			// Capitalize the top coefficient so the leading stripping
			// ratio stays well-conditioned.
			if a[d] == 0 {
				a[d] = margin
			} else {
				a[d] += math.Copysign(margin, a[d])
			}
		}

		P, Q, err := complete(a, c, d)
		if err != nil {
			if errors.Is(err, errDrift) {
				continue
			}
			return qsp.PhaseSequence{}, record, err
		}
		phases, steps, err := stripPhases(P, Q)
		record.Iterations += steps
		if err != nil {
			if errors.Is(err, errDrift) {
				continue
			}
			return qsp.PhaseSequence{}, record, err
		}

		seq := qsp.NewPhaseSequence(phases, model)
		residual, err := verify(seq)
		if err != nil {
			return qsp.PhaseSequence{}, record, err
		}
		if residual < record.Residual {
			record.Residual = residual
		}
		if residual <= slv.params.Tolerance {
			record.Residual = residual
			return seq, record, nil
		}
	}
	return qsp.PhaseSequence{}, record, &ConvergenceError{Record: record}
}

// newPRNG returns the jitter source of a solve. With a seed the source is
// keyed by the blake3 digest of the seed and the target coefficients, so
// identical solves replay identically while distinct targets get distinct
// streams.
func (slv *Solver) newPRNG(aCoeffs, cCoeffs []float64) (sampling.PRNG, error) {
	if slv.params.Seed == nil {
		return sampling.NewPRNG()
	}
	hasher := blake3.New()
	buf := new(bytes.Buffer)
	buf.Write(slv.params.Seed)
	if err := binary.Write(buf, binary.BigEndian, aCoeffs); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, cCoeffs); err != nil {
		return nil, err
	}
	hasher.Write(buf.Bytes())
	sum := hasher.Sum(nil)
	return sampling.NewKeyedPRNG(sum[:prngKeySize])
}

// validateReal checks a real target and returns it in the Chebyshev basis.
func validateReal(target *poly.Polynomial) (*poly.Polynomial, error) {
	if target == nil {
		return nil, fmt.Errorf("solver: target: %w", poly.ErrEmpty)
	}
	if target.Basis() == poly.SecondKind {
		return nil, fmt.Errorf("solver: target must be in the monomial or Chebyshev basis, got %v", target.Basis())
	}
	cheb, err := target.ToChebyshev()
	if err != nil {
		return nil, fmt.Errorf("solver: target: %w", err)
	}
	if cheb.Degree() < 1 {
		return nil, fmt.Errorf("solver: target degree must be at least 1, got %d", cheb.Degree())
	}
	if cheb.Degree() > maxDegree {
		return nil, fmt.Errorf("solver: target degree %d exceeds the maximum %d", cheb.Degree(), maxDegree)
	}
	if cheb.Parity() == poly.ParityNone {
		return nil, fmt.Errorf("solver: target: %w", poly.ErrInvalidParity)
	}
	if cheb.Bound() > 1+1e-12 {
		return nil, fmt.Errorf("solver: target: %w (bound %v)", poly.ErrUnbounded, cheb.Bound())
	}
	return cheb, nil
}

// validatePair checks a complex target pair.
func validatePair(a, c *poly.Polynomial) error {
	if a == nil || c == nil {
		return fmt.Errorf("solver: target pair: %w", poly.ErrEmpty)
	}
	if a.Basis() != poly.Chebyshev {
		return fmt.Errorf("solver: real component must be in the Chebyshev basis, got %v", a.Basis())
	}
	if c.Basis() != poly.SecondKind {
		return fmt.Errorf("solver: sin-weighted component must be in the second-kind basis, got %v", c.Basis())
	}
	d := a.Degree()
	if cd := c.Degree() + 1; cd > d {
		d = cd
	}
	if d < 1 {
		return fmt.Errorf("solver: target degree must be at least 1, got %d", d)
	}
	if d > maxDegree {
		return fmt.Errorf("solver: target degree %d exceeds the maximum %d", d, maxDegree)
	}
	if a.Parity() == poly.ParityNone || c.Parity() == poly.ParityNone {
		return fmt.Errorf("solver: target pair: %w", poly.ErrInvalidParity)
	}
	// The two components occupy opposite coefficient parities of the
	// circuit pair: a row of T_d parity and a second-kind row one lower.
	if aPar, want := a.Parity(), parityOf(d); a.Degree() > 0 && aPar != want {
		return fmt.Errorf("solver: real component parity %v incompatible with degree %d: %w", aPar, d, poly.ErrInvalidParity)
	}
	if cPar, want := c.Parity(), parityOf(d-1); c.Degree() > 0 && cPar != want {
		return fmt.Errorf("solver: sin-weighted component parity %v incompatible with degree %d: %w", cPar, d, poly.ErrInvalidParity)
	}
	if bound := pairBound(a, c); bound > 1+1e-12 {
		return fmt.Errorf("solver: target pair: %w (bound %v)", poly.ErrUnbounded, bound)
	}
	return nil
}

// pairBound samples the squared magnitude A^2 + (1-x^2)*C^2 over [-1, 1]
// and returns its maximum square root.
func pairBound(a, c *poly.Polynomial) float64 {
	const samples = 1001
	mass := make([]float64, samples)
	for i := range mass {
		x := -1 + 2*float64(i)/float64(samples-1)
		av := a.Evaluate(x)
		cv := c.Evaluate(x)
		mass[i] = av*av + (1-x*x)*cv*cv
	}
	return math.Sqrt(utils.MaxAbs(mass))
}

func parityOf(d int) poly.Parity {
	if d%2 == 0 {
		return poly.ParityEven
	}
	return poly.ParityOdd
}

func padded(coeffs []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, coeffs)
	return out
}

func abs(v complex128) float64 {
	return math.Hypot(real(v), imag(v))
}
