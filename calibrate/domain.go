// package calibrate finds bias constants for the approximations in package
// fexp by brute force: every candidate is evaluated against a reference
// exponential over a dense sampling of the input domain, and the one with the
// smallest error under the chosen metric wins.
//
// None of this is needed at runtime, it exists to reproduce (and re-derive,
// for other domains or functions) the constants fexp ships with.
package calibrate

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain is returned for domains that can't be sampled.
var ErrDomain = errors.New("invalid domain")

// Limits of the domain that can be calibrated over. Above MaxInput e^x
// overflows a float32, and below MinInput it is subnormal, where the bit trick
// no longer tracks it.
const (
	MinInput = -87
	MaxInput = 88
)

// Domain is the set of inputs Min, Min+Step, Min+2*Step, ... up to but not
// including Max.
type Domain struct {
	Min, Max, Step float64
}

// DefaultDomain is the domain the fexp constants were calibrated on.
var DefaultDomain = Domain{Min: -50, Max: 50, Step: 0.001}

// Validate checks that d is non-empty, finite and within [MinInput, MaxInput].
func (d Domain) Validate() error {
	switch {
	case math.IsNaN(d.Min) || math.IsNaN(d.Max) || math.IsNaN(d.Step):
		return fmt.Errorf("%w: NaN in %v", ErrDomain, d)
	case d.Step <= 0:
		return fmt.Errorf("%w: step %v must be positive", ErrDomain, d.Step)
	case d.Max <= d.Min:
		return fmt.Errorf("%w: max %v must be greater than min %v", ErrDomain, d.Max, d.Min)
	case d.Min < MinInput || d.Max > MaxInput:
		return fmt.Errorf("%w: [%v, %v) is outside [%d, %d]", ErrDomain, d.Min, d.Max, MinInput, MaxInput)
	}
	return nil
}

// Len returns the number of samples in d.
func (d Domain) Len() int {
	if d.Step <= 0 || d.Max <= d.Min {
		return 0
	}
	n := int(math.Ceil((d.Max - d.Min) / d.Step))
	// Guard against Ceil landing exactly on Max due to rounding.
	for n > 0 && d.At(n-1) >= d.Max {
		n--
	}
	return n
}

// At returns the ith sample. Samples are computed rather than accumulated so
// that rounding error doesn't build up over long domains.
func (d Domain) At(i int) float64 {
	return d.Min + float64(i)*d.Step
}

func (d Domain) String() string {
	return fmt.Sprintf("[%v, %v) step %v", d.Min, d.Max, d.Step)
}
