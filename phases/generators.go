// Package phases provides closed-form phase-angle sequences that are known
// analytically and therefore need no polynomial solve: fixed-point
// amplitude amplification and the erf step response. Generators are looked
// up by name.
package phases

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/qsp"
	"github.com/tuneinsight/qsp/utils"
)

var (
	// ErrUnknownGenerator is returned by Lookup for a name that is not
	// registered.
	ErrUnknownGenerator = errors.New("phases: unknown generator")
	// ErrArgument is the sentinel wrapped by every *ArgumentError.
	ErrArgument = errors.New("phases: invalid generator argument")
)

// ArgumentError reports a generator argument that is missing, out of range
// or not meaningful. It unwraps to ErrArgument.
type ArgumentError struct {
	Generator string
	Reason    string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("phases: generator %q: %s", e.Generator, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }

// Generator produces a named phase-angle sequence from scalar arguments.
type Generator interface {
	// Help describes the generator and its arguments.
	Help() string
	// Generate returns the sequence for the given arguments.
	Generate(args ...float64) (qsp.PhaseSequence, error)
}

var registry = map[string]Generator{
	"fpsearch": fpSearch{},
	"erf_step": erfStep{},
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Generator, error) {
	g, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
	}
	return g, nil
}

// Names returns the registered generator names in sorted order.
func Names() []string {
	return utils.GetSortedKeys(registry)
}

// intArg checks that v holds a positive integer and returns it.
func intArg(gen, name string, v float64) (int, error) {
	n := int(v)
	if float64(n) != v || n < 1 {
		return 0, &ArgumentError{Generator: gen, Reason: fmt.Sprintf("%s must be a positive integer, got %v", name, v)}
	}
	return n, nil
}
