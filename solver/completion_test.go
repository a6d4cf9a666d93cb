package solver

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

func evalMonomial(c []complex128, x float64) complex128 {
	var v complex128
	for i := len(c) - 1; i >= 0; i-- {
		v = v*complex(x, 0) + c[i]
	}
	return v
}

// TestCompleteUnitarity checks that the completed pair (P, Q) satisfies
// |P|^2 + (1-a^2)*|Q|^2 = 1 across [-1, 1] and that Re P reproduces the
// prescribed component. The even real target hits the full length of the
// completion polynomial, so any wrap-around in the Laurent product shows
// up as a broken identity here.
func TestCompleteUnitarity(t *testing.T) {

	cases := []struct {
		name  string
		aCheb []float64
		cU    []float64
		d     int
	}{
		{name: "EvenReal", aCheb: []float64{0, 0, 0.9}, d: 2},
		{name: "OddReal", aCheb: []float64{0, 0.3, 0, 0.4}, d: 3},
		{name: "Pair", aCheb: []float64{0, 0, 0.5}, cU: []float64{0.3}, d: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {

			P, Q, err := complete(tc.aCheb, tc.cU, tc.d)
			require.NoError(t, err)
			require.Len(t, P, tc.d+1)
			require.Len(t, Q, tc.d)

			const npts = 101
			for i := 0; i < npts; i++ {
				x := -1 + 2*float64(i)/float64(npts-1)

				pv := evalMonomial(P, x)
				qv := evalMonomial(Q, x)
				mass := real(pv*cmplx.Conj(pv)) + (1-x*x)*real(qv*cmplx.Conj(qv))
				require.InDelta(t, 1, mass, 1e-9, "x=%v", x)

				a := evalRec(tc.aCheb, x, x)
				require.InDelta(t, a, real(pv), 1e-9, "x=%v", x)

				c := evalRec(tc.cU, x, 2*x)
				require.InDelta(t, c, real(qv), 1e-9, "x=%v", x)
			}
		})
	}
}
