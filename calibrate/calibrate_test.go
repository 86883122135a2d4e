package calibrate

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfcm/fexp"
)

// coarse is small enough to search quickly but still dense enough to pick out
// the shape of the error curve.
var coarse = Domain{Min: -50, Max: 50, Step: 0.05}

func TestDomainLen(t *testing.T) {
	for _, c := range []struct {
		d    Domain
		want int
	}{
		{DefaultDomain, 100000},
		{coarse, 2000},
		{Domain{0, 1, 0.3}, 4},
		{Domain{0, 1, 2}, 1},
		{Domain{1, 0, 0.1}, 0},
		{Domain{0, 1, 0}, 0},
	} {
		assert.Equal(t, c.want, c.d.Len(), "%v", c.d)
	}
	d := Domain{-1, 1, 0.1}
	for i := 0; i < d.Len(); i++ {
		assert.Less(t, d.At(i), d.Max)
		assert.GreaterOrEqual(t, d.At(i), d.Min)
	}
}

func TestDomainValidate(t *testing.T) {
	assert.NoError(t, DefaultDomain.Validate())
	assert.NoError(t, Domain{MinInput, MaxInput, 1}.Validate())
	for _, d := range []Domain{
		{0, 1, 0},
		{0, 1, -1},
		{1, 1, 0.1},
		{-100, 0, 0.1},
		{0, 100, 0.1},
		{math.NaN(), 1, 0.1},
		{math.Inf(-1), 1, 0.1},
	} {
		assert.ErrorIs(t, d.Validate(), ErrDomain, "%v", d)
	}
}

func TestParse(t *testing.T) {
	for _, m := range Metrics {
		got, err := ParseMetric(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMetric("RMS")
	require.NoError(t, err)
	assert.Equal(t, RMSRelative, got)
	_, err = ParseMetric("l3")
	assert.Error(t, err)

	for _, s := range []string{"float64", "float32", "double", "float"} {
		ref, err := ParseReference(s)
		require.NoError(t, err, s)
		assert.InDelta(t, math.E, ref(1), 1e-6, s)
	}
	_, err = ParseReference("float16")
	assert.Error(t, err)

	f, err := ParseFunc("approx")
	require.NoError(t, err)
	assert.Equal(t, fexp.Approx32(3, fexp.L1), f(3, fexp.L1))
	f, err = ParseFunc("corrected")
	require.NoError(t, err)
	assert.Equal(t, fexp.Corrected32(3, fexp.L1), f(3, fexp.L1))
	_, err = ParseFunc("exact")
	assert.Error(t, err)
}

func TestMetricBias(t *testing.T) {
	assert.Equal(t, fexp.Minimax, MaxRelative.Bias())
	assert.Equal(t, fexp.L1, MeanRelative.Bias())
	assert.Equal(t, fexp.L2, RMSRelative.Bias())
}

func TestEvaluate(t *testing.T) {
	exact := func(x float32, _ fexp.Bias) float32 { return float32(math.Exp(float64(x))) }
	e := Evaluate(exact, 0, coarse, Float64Reference)
	assert.Equal(t, 2000, e.Samples)
	// Only float32 rounding.
	assert.Less(t, e.Max, 1e-7)

	e = Evaluate(fexp.Approx32, fexp.Minimax, coarse, Float64Reference)
	assert.InDelta(t, 0.0298, e.Max, 0.0005)
	assert.LessOrEqual(t, e.Mean, e.RMS)
	assert.LessOrEqual(t, e.RMS, e.Max)

	e32 := Evaluate(fexp.Approx32, fexp.Minimax, coarse, Float32Reference)
	assert.InDelta(t, e.Max, e32.Max, 1e-6)
	assert.InDelta(t, e.Mean, e32.Mean, 1e-6)

	c := Evaluate(fexp.Corrected32, fexp.Minimax, coarse, Float64Reference)
	assert.Less(t, c.Max, 0.007)

	assert.Equal(t, Errors{}, Evaluate(fexp.Approx32, 0, Domain{1, 0, 1}, Float64Reference))
}

func TestShippedBiasesRank(t *testing.T) {
	d := Domain{Min: -50, Max: 50, Step: 0.01}
	errs := make(map[fexp.Bias]Errors)
	for _, m := range Metrics {
		errs[m.Bias()] = Evaluate(fexp.Approx32, m.Bias(), d, Float64Reference)
	}
	for _, m := range Metrics {
		for _, other := range Metrics {
			if other == m {
				continue
			}
			assert.Less(t, errs[m.Bias()].Get(m), errs[other.Bias()].Get(m),
				"%v: %v should beat %v", m, m.Bias(), other.Bias())
		}
	}
}

func TestSearch(t *testing.T) {
	for _, m := range Metrics {
		t.Run(m.String(), func(t *testing.T) {
			o := DefaultOptions()
			o.Metric = m
			o.Domain = coarse
			var calls atomic.Int64
			o.Progress = func(fexp.Bias, Errors) { calls.Add(1) }

			res, err := Search(context.Background(), o)
			require.NoError(t, err)

			want := m.Bias()
			assert.InDelta(t, float64(want), float64(res.Bias), 5000)
			shipped := Evaluate(o.Func, want, o.Domain, o.Reference)
			assert.LessOrEqual(t, res.Errors.Get(m), shipped.Get(m))
			assert.Equal(t, Evaluate(o.Func, res.Bias, o.Domain, o.Reference), res.Errors)

			assert.Equal(t, 5, res.Levels)
			assert.Equal(t, int64(res.Evaluated), calls.Load())
			t.Logf("%v: found %d (%v), shipped %d (%v)", m, res.Bias, res.Errors, want, shipped)
		})
	}
}

func TestSearchSmallRange(t *testing.T) {
	o := DefaultOptions()
	o.Domain = coarse
	o.Lo, o.Hi, o.Stride = 366000, 366010, 100
	res, err := Search(context.Background(), o)
	require.NoError(t, err)
	// One coarse candidate, then a stride of 6 and then 1.
	assert.GreaterOrEqual(t, int64(res.Bias), int64(o.Lo))
	assert.LessOrEqual(t, int64(res.Bias), int64(o.Hi))

	o.Lo, o.Hi, o.Stride = 400000, 400000, 1
	res, err = Search(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, fexp.Bias(400000), res.Bias)
	assert.Equal(t, 1, res.Evaluated)
	assert.Equal(t, 1, res.Levels)
}

func TestSearchInvalid(t *testing.T) {
	for name, mod := range map[string]func(*Options){
		"no func":      func(o *Options) { o.Func = nil },
		"no reference": func(o *Options) { o.Reference = nil },
		"bad metric":   func(o *Options) { o.Metric = 7 },
		"lo > hi":      func(o *Options) { o.Lo, o.Hi = 10, 5 },
		"zero stride":  func(o *Options) { o.Stride = 0 },
		"refine":       func(o *Options) { o.Refine = 1 },
		"workers":      func(o *Options) { o.Workers = -1 },
	} {
		o := DefaultOptions()
		mod(&o)
		_, err := Search(context.Background(), o)
		assert.ErrorIs(t, err, ErrOptions, name)
	}
	o := DefaultOptions()
	o.Domain = Domain{0, 200, 1}
	_, err := Search(context.Background(), o)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := DefaultOptions()
	o.Domain = coarse
	_, err := Search(ctx, o)
	assert.ErrorIs(t, err, context.Canceled)
}
