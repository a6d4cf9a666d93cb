package qsp

import "fmt"

// Model selects the axis of the signal-encoding rotation of the QSP circuit.
type Model int

const (
	// ModelWx encodes the signal as an X rotation
	// W(a) = [[a, i*sqrt(1-a^2)], [i*sqrt(1-a^2), a]], with Z phase rotations.
	ModelWx Model = iota
	// ModelWz encodes the signal as a Z rotation
	// W(a) = diag(e^{i*theta}, e^{-i*theta}) with theta = arccos(a), and X
	// phase rotations. ModelWz is the Hadamard conjugate of ModelWx.
	ModelWz
)

func (m Model) String() string {
	switch m {
	case ModelWx:
		return "Wx"
	case ModelWz:
		return "Wz"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}
