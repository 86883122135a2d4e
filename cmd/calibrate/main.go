// calibrate searches for the bias constants used by package fexp and compares
// what it finds with the ones that are shipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pfcm/fexp"
	"github.com/pfcm/fexp/calibrate"
)

var (
	funcFlag     = flag.String("func", "approx", "`function` to calibrate: approx or corrected")
	metricFlag   = flag.String("metric", "all", "`metric` to minimise: minimax, l1, l2 or all")
	refFlag      = flag.String("reference", "float64", "`reference` exp to measure against: float64 or float32")
	minFlag      = flag.Float64("min", calibrate.DefaultDomain.Min, "lowest input to sample")
	maxFlag      = flag.Float64("max", calibrate.DefaultDomain.Max, "upper bound (exclusive) of the inputs to sample")
	stepFlag     = flag.Float64("step", calibrate.DefaultDomain.Step, "gap between samples")
	loFlag       = flag.Int("lo", int(calibrate.DefaultOptions().Lo), "lowest bias to consider")
	hiFlag       = flag.Int("hi", int(calibrate.DefaultOptions().Hi), "highest bias to consider")
	strideFlag   = flag.Int("stride", int(calibrate.DefaultOptions().Stride), "gap between candidate biases in the first pass")
	refineFlag   = flag.Int("refine", calibrate.DefaultOptions().Refine, "factor to shrink the stride by between passes")
	workersFlag  = flag.Int("workers", 0, "number of candidates to evaluate in parallel, 0 for GOMAXPROCS")
	progressFlag = flag.Bool("progress", true, "whether to show a progress spinner on stderr")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("calibrate: ")

	opts, metrics, err := options()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	p := message.NewPrinter(language.English)
	log.Print(p.Sprintf("Sampling %d inputs in %v", opts.Domain.Len(), opts.Domain))

	type row struct {
		metric calibrate.Metric
		res    calibrate.Result
	}
	var rows []row
	for _, m := range metrics {
		o := opts
		o.Metric = m
		var bar *progressbar.ProgressBar
		if *progressFlag {
			bar = progressbar.Default(-1, "searching "+m.String())
			o.Progress = func(fexp.Bias, calibrate.Errors) { bar.Add(1) }
		}
		start := time.Now()
		res, err := calibrate.Search(ctx, o)
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			log.Fatalf("Searching for %v: %v", m, err)
		}
		log.Print(p.Sprintf("%v: best bias %d after %d candidates in %d passes (%v)",
			m, int32(res.Bias), res.Evaluated, res.Levels, time.Since(start).Round(time.Millisecond)))
		rows = append(rows, row{m, res})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "metric\tbias\tmax\tmean\trms\tshipped\tshipped max\tshipped mean\tshipped rms\t")
	for _, r := range rows {
		k := r.metric.Bias()
		shipped := calibrate.Evaluate(opts.Func, k, opts.Domain, opts.Reference)
		fmt.Fprintf(w, "%v\t%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t\n",
			r.metric, int32(r.res.Bias),
			pct(r.res.Errors.Max), pct(r.res.Errors.Mean), pct(r.res.Errors.RMS),
			int32(k), pct(shipped.Max), pct(shipped.Mean), pct(shipped.RMS))
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}

func pct(f float64) string { return fmt.Sprintf("%.4f%%", f*100) }

func options() (calibrate.Options, []calibrate.Metric, error) {
	opts := calibrate.DefaultOptions()
	f, err := calibrate.ParseFunc(*funcFlag)
	if err != nil {
		return opts, nil, err
	}
	opts.Func = f
	ref, err := calibrate.ParseReference(*refFlag)
	if err != nil {
		return opts, nil, err
	}
	opts.Reference = ref
	opts.Domain = calibrate.Domain{Min: *minFlag, Max: *maxFlag, Step: *stepFlag}
	if err := opts.Domain.Validate(); err != nil {
		return opts, nil, err
	}
	opts.Lo, opts.Hi = fexp.Bias(*loFlag), fexp.Bias(*hiFlag)
	opts.Stride = fexp.Bias(*strideFlag)
	opts.Refine = *refineFlag
	opts.Workers = *workersFlag

	if *metricFlag == "all" {
		return opts, calibrate.Metrics, nil
	}
	m, err := calibrate.ParseMetric(*metricFlag)
	if err != nil {
		return opts, nil, err
	}
	return opts, []calibrate.Metric{m}, nil
}
