package phases

import (
	"math"

	"github.com/tuneinsight/qsp"
)

// erfStep generates the phases of the erf(kappa*a) step response in the
// short-sequence regime, where the angles follow the Gaussian derivative of
// the target sampled at Chebyshev nodes.
type erfStep struct{}

func (erfStep) Help() string {
	return "erf_step <kappa>: step response phases with slope parameter kappa > 0"
}

func (erfStep) Generate(args ...float64) (qsp.PhaseSequence, error) {
	if len(args) != 1 {
		return qsp.PhaseSequence{}, &ArgumentError{Generator: "erf_step", Reason: "expects exactly 1 argument: kappa"}
	}
	kappa := args[0]
	if !(kappa > 0) || math.IsInf(kappa, 0) {
		return qsp.PhaseSequence{}, &ArgumentError{Generator: "erf_step", Reason: "kappa must be positive and finite"}
	}

	l := 2*int(math.Ceil(kappa)) + 2
	scale := math.SqrtPi * kappa / float64(l)
	out := make([]float64, l)
	for j := 1; j <= l; j++ {
		x := math.Cos(math.Pi * (float64(j) - 0.5) / float64(l))
		out[j-1] = scale * math.Exp(-(kappa*x)*(kappa*x))
	}
	return qsp.NewPhaseSequence(out, qsp.ModelWx), nil
}
