package calibrate

import (
	"fmt"
	"math"
	"strings"

	"github.com/chewxy/math32"

	"github.com/pfcm/fexp"
)

// Metric is a way of summarising relative errors over a domain.
type Metric int

const (
	// MaxRelative is the worst relative error.
	MaxRelative Metric = iota
	// MeanRelative is the mean absolute relative error.
	MeanRelative
	// RMSRelative is the root mean squared relative error.
	RMSRelative
)

// Metrics lists all of the metrics, in order.
var Metrics = []Metric{MaxRelative, MeanRelative, RMSRelative}

var metricNames = map[Metric]string{
	MaxRelative:  "minimax",
	MeanRelative: "l1",
	RMSRelative:  "l2",
}

func (m Metric) String() string {
	if s, ok := metricNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Bias returns the constant fexp ships for the metric.
func (m Metric) Bias() fexp.Bias {
	switch m {
	case MeanRelative:
		return fexp.L1
	case RMSRelative:
		return fexp.L2
	}
	return fexp.Minimax
}

// ParseMetric parses the name of a metric: "minimax" (or "max"), "l1" (or
// "mean") and "l2" (or "rms").
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "minimax", "max":
		return MaxRelative, nil
	case "l1", "mean":
		return MeanRelative, nil
	case "l2", "rms":
		return RMSRelative, nil
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// Reference computes the value an approximation is measured against.
type Reference func(x float32) float64

// Float64Reference is math.Exp on the widened input.
func Float64Reference(x float32) float64 { return math.Exp(float64(x)) }

// Float32Reference is a float32 exp, so it carries its own rounding error of
// up to an ulp or so. This is what the approximations replace in practice.
func Float32Reference(x float32) float64 { return float64(math32.Exp(x)) }

// ParseReference parses "float64" or "float32".
func ParseReference(s string) (Reference, error) {
	switch strings.ToLower(s) {
	case "float64", "double":
		return Float64Reference, nil
	case "float32", "float":
		return Float32Reference, nil
	}
	return nil, fmt.Errorf("unknown reference %q", s)
}

// Func is an approximation of exp with a tunable bias.
type Func func(x float32, k fexp.Bias) float32

// ParseFunc parses "approx" or "corrected".
func ParseFunc(s string) (Func, error) {
	switch strings.ToLower(s) {
	case "approx":
		return fexp.Approx32, nil
	case "corrected":
		return fexp.Corrected32, nil
	}
	return nil, fmt.Errorf("unknown function %q", s)
}

// Errors summarises the relative error of an approximation over a domain.
type Errors struct {
	Max, Mean, RMS float64
	Samples        int
}

// Get returns the error under the given metric.
func (e Errors) Get(m Metric) float64 {
	switch m {
	case MeanRelative:
		return e.Mean
	case RMSRelative:
		return e.RMS
	}
	return e.Max
}

func (e Errors) String() string {
	return fmt.Sprintf("max %.4f%% mean %.4f%% rms %.4f%%", e.Max*100, e.Mean*100, e.RMS*100)
}

// Evaluate measures f with bias k against ref over every sample of d. Samples
// are narrowed to float32 before being passed to either function.
func Evaluate(f Func, k fexp.Bias, d Domain, ref Reference) Errors {
	n := d.Len()
	var e Errors
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := float32(d.At(i))
		want := ref(x)
		r := math.Abs(float64(f(x, k))-want) / want
		e.Max = max(e.Max, r)
		sum += r
		sumSq += r * r
	}
	if n > 0 {
		e.Mean = sum / float64(n)
		e.RMS = math.Sqrt(sumSq / float64(n))
	}
	e.Samples = n
	return e
}
