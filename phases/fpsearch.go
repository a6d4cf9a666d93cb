package phases

import (
	"math"

	"github.com/tuneinsight/qsp"
)

// fpSearch generates the fixed-point amplitude amplification phases of
// Yoder, Low and Chuang. With L iterations and failure bound delta, the
// circuit maps any initial overlap above sqrt(1-gamma^2) to a success
// probability of at least 1-delta^2, with
//
//	gamma = 1/cosh(acosh(1/delta)/L).
type fpSearch struct{}

func (fpSearch) Help() string {
	return "fpsearch <length> <delta> [gamma]: fixed-point search phases; " +
		"length is the iteration count, delta in (0,1] the failure amplitude, " +
		"gamma overrides the inverse-cosh width when given"
}

func (fpSearch) Generate(args ...float64) (qsp.PhaseSequence, error) {
	if len(args) < 2 || len(args) > 3 {
		return qsp.PhaseSequence{}, &ArgumentError{Generator: "fpsearch", Reason: "expects 2 or 3 arguments: length, delta [, gamma]"}
	}
	l, err := intArg("fpsearch", "length", args[0])
	if err != nil {
		return qsp.PhaseSequence{}, err
	}
	delta := args[1]
	if !(delta > 0 && delta <= 1) {
		return qsp.PhaseSequence{}, &ArgumentError{Generator: "fpsearch", Reason: "delta must lie in (0, 1]"}
	}
	gamma := 1 / math.Cosh(math.Acosh(1/delta)/float64(l))
	if len(args) == 3 {
		gamma = args[2]
		if !(gamma > 0 && gamma < 1) {
			return qsp.PhaseSequence{}, &ArgumentError{Generator: "fpsearch", Reason: "gamma must lie in (0, 1)"}
		}
	}

	// phi_j = 2*acot(tan(2*pi*j/L) * sqrt(1-gamma^2)); atan2 keeps the
	// cotangent branch continuous through the poles of tan.
	s := math.Sqrt(1 - gamma*gamma)
	out := make([]float64, l)
	for j := 1; j <= l; j++ {
		out[j-1] = 2 * math.Atan2(1, math.Tan(2*math.Pi*float64(j)/float64(l))*s)
	}
	return qsp.NewPhaseSequence(out, qsp.ModelWx), nil
}
