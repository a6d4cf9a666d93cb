/*
Package qsp is a pure Go library for Quantum Signal Processing (QSP) phase-angle
synthesis. Given a target real polynomial, or one of a set of named closed-form
constructions, it computes the sequence of phase angles for which the alternating
product of signal-encoding and phase rotations reproduces the target function on
[-1, 1], and provides the response simulator used to verify the result.
*/
package qsp
