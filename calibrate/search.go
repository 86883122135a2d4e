package calibrate

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pfcm/fexp"
)

// ErrOptions is returned by Search for unusable options.
var ErrOptions = errors.New("invalid search options")

// Options configure a Search.
type Options struct {
	// Func is the approximation being calibrated.
	Func Func
	// Metric is the error metric to minimise.
	Metric Metric
	// Domain is sampled to measure the error of each candidate.
	Domain Domain
	// Reference is the exact(ish) exp to compare against.
	Reference Reference

	// Lo and Hi bound the candidate biases, inclusive.
	Lo, Hi fexp.Bias
	// Stride is the gap between candidates in the first, coarsest level.
	Stride fexp.Bias
	// Refine is the factor Stride shrinks by between levels.
	Refine int

	// Workers is the maximum number of candidates evaluated at once. If
	// zero, uses GOMAXPROCS.
	Workers int

	// Progress, if not nil, is called after each candidate is evaluated. It
	// may be called from several goroutines at once.
	Progress func(k fexp.Bias, e Errors)
}

// DefaultOptions searches [0, 2^20] for the Approx32 bias minimising the max
// relative error over DefaultDomain.
func DefaultOptions() Options {
	return Options{
		Func:      fexp.Approx32,
		Metric:    MaxRelative,
		Domain:    DefaultDomain,
		Reference: Float64Reference,
		Lo:        0,
		Hi:        1 << 20,
		Stride:    1 << 14,
		Refine:    16,
	}
}

func (o Options) validate() error {
	if o.Func == nil {
		return fmt.Errorf("%w: no function", ErrOptions)
	}
	if o.Reference == nil {
		return fmt.Errorf("%w: no reference", ErrOptions)
	}
	if _, ok := metricNames[o.Metric]; !ok {
		return fmt.Errorf("%w: unknown metric %v", ErrOptions, o.Metric)
	}
	if o.Lo > o.Hi {
		return fmt.Errorf("%w: lo %d > hi %d", ErrOptions, o.Lo, o.Hi)
	}
	if o.Stride < 1 {
		return fmt.Errorf("%w: stride %d must be at least 1", ErrOptions, o.Stride)
	}
	if o.Refine < 2 {
		return fmt.Errorf("%w: refine %d must be at least 2", ErrOptions, o.Refine)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: negative workers", ErrOptions)
	}
	return o.Domain.Validate()
}

// Result is the outcome of a Search.
type Result struct {
	Bias   fexp.Bias
	Errors Errors
	// Evaluated is the total number of candidates tried and Levels the number
	// of refinement levels it took.
	Evaluated int
	Levels    int
}

// Search looks for the bias in [o.Lo, o.Hi] that minimises o.Metric.
//
// It works coarse to fine: each level evaluates every candidate o.Stride apart
// across the current bounds, then narrows the bounds to one stride either side
// of the best and divides the stride by o.Refine. The last level has a stride
// of 1. This assumes the error is roughly unimodal in the bias, which holds
// for the metrics here as they are all built from the same sawtooth error
// curve shifted up and down.
func Search(ctx context.Context, o Options) (Result, error) {
	if err := o.validate(); err != nil {
		return Result{}, err
	}
	workers := o.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var res Result
	lo, hi, stride := int64(o.Lo), int64(o.Hi), int64(o.Stride)
	for {
		var cands []fexp.Bias
		for k := lo; k <= hi; k += stride {
			cands = append(cands, fexp.Bias(k))
		}
		errs, err := evaluateAll(ctx, o, cands, workers)
		if err != nil {
			return Result{}, err
		}
		res.Levels++
		res.Evaluated += len(cands)

		best := 0
		for i := range errs {
			if errs[i].Get(o.Metric) < errs[best].Get(o.Metric) {
				best = i
			}
		}
		res.Bias, res.Errors = cands[best], errs[best]

		if stride == 1 {
			return res, nil
		}
		b := int64(res.Bias)
		lo, hi = max(int64(o.Lo), b-stride), min(int64(o.Hi), b+stride)
		stride = max(1, stride/int64(o.Refine))
	}
}

// evaluateAll evaluates each candidate on up to workers goroutines. The
// results are in the same order as cands.
func evaluateAll(ctx context.Context, o Options, cands []fexp.Bias, workers int) ([]Errors, error) {
	errs := make([]Errors, len(cands))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, k := range cands {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			errs[i] = Evaluate(o.Func, k, o.Domain, o.Reference)
			if o.Progress != nil {
				o.Progress(k, errs[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return errs, nil
}
