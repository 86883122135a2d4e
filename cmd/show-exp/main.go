// show-exp shows the intermediate values of the fast exp approximations, mostly
// for debugging where the error comes from for particular inputs.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pfcm/fexp"
)

var (
	biasFlag   = flag.String("k", "minimax", "comma separated list of `biases` to show: minimax, l1, l2 or integers. Use \"all\" for the three calibrated ones")
	fieldsFlag = flag.String("fields", "", "comma separated list of `fields` to show. Available fields are: "+strings.Join(fieldKeys, ", ")+". Defaults to all fields")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), help)
		fmt.Fprintln(flag.CommandLine.Output(), "\nOptional arguments:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		fail("Need at least one argument.")
	}

	biases, err := parseBiases(*biasFlag)
	if err != nil {
		fail(err.Error())
	}
	show, err := parseFields(*fieldsFlag)
	if err != nil {
		fail(err.Error())
	}

	var xs []float32
	for _, a := range flag.Args() {
		x, err := parse(a)
		if err != nil {
			fail(err.Error())
		}
		xs = append(xs, x)
	}

	w := tabwriter.NewWriter(os.Stdout, 11, 1, 1, ' ', 0)
	showHeader(w, show)
	for _, x := range xs {
		for _, k := range biases {
			showTrace(w, show, fexp.TraceCorrected(x, k))
		}
	}
	if err := w.Flush(); err != nil {
		fail(err.Error())
	}
}

type field struct {
	name string
	f    func(fexp.Trace) string
}

func hex(i int32) string { return fmt.Sprintf("%#08x", uint32(i)) }
func flt(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
func pct(got float32, x float32) string {
	want := math.Exp(float64(x))
	return fmt.Sprintf("%+.4f%%", (float64(got)-want)/want*100)
}

var fields = []field{
	{"x", func(t fexp.Trace) string { return flt(t.X) }},
	{"k", func(t fexp.Trace) string { return t.Bias.String() }},
	{"scaled", func(t fexp.Trace) string { return flt(t.Scaled) }},
	{"base", func(t fexp.Trace) string { return strconv.Itoa(int(t.Base)) }},
	{"bits", func(t fexp.Trace) string { return hex(t.Bits) }},
	{"exp2", func(t fexp.Trace) string { return strconv.Itoa(t.Exponent()) }},
	{"approx", func(t fexp.Trace) string { return flt(t.FirstOrder) }},
	{"mantissa", func(t fexp.Trace) string { return flt(t.CorrectionX) }},
	{"correction", func(t fexp.Trace) string { return flt(t.Correction) }},
	{"corrected", func(t fexp.Trace) string { return flt(t.Value) }},
	{"exp", func(t fexp.Trace) string { return strconv.FormatFloat(math.Exp(float64(t.X)), 'g', 9, 64) }},
	{"approx_err", func(t fexp.Trace) string { return pct(t.FirstOrder, t.X) }},
	{"corrected_err", func(t fexp.Trace) string { return pct(t.Value, t.X) }},
}

var fieldKeys = func() []string {
	var keys []string
	for _, f := range fields {
		keys = append(keys, f.name)
	}
	return keys
}()

func parseFields(fs string) (map[string]bool, error) {
	all := make(map[string]bool)
	for _, f := range fieldKeys {
		all[f] = true
	}
	if fs == "" {
		return all, nil
	}
	result := make(map[string]bool)
	for _, f := range strings.Split(fs, ",") {
		if !all[f] {
			return nil, fmt.Errorf("unknown field %q", f)
		}
		result[f] = true
	}
	return result, nil
}

func parseBiases(bs string) ([]fexp.Bias, error) {
	if bs == "all" {
		return []fexp.Bias{fexp.Minimax, fexp.L1, fexp.L2}, nil
	}
	var result []fexp.Bias
	for _, b := range strings.Split(bs, ",") {
		k, err := fexp.ParseBias(b)
		if err != nil {
			return nil, err
		}
		result = append(result, k)
	}
	return result, nil
}

func parse(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if math.Abs(f) > 88 {
		fmt.Fprintf(os.Stderr, "warning: %v is outside the range the approximations are meaningful for\n", f)
	}
	return float32(f), nil
}

func showHeader(w io.Writer, show map[string]bool) {
	var cols []string
	for _, f := range fieldKeys {
		if show[f] {
			cols = append(cols, f)
		}
	}
	fmt.Fprintln(w, strings.Join(cols, "\t")+"\t")
}

func showTrace(w io.Writer, show map[string]bool, t fexp.Trace) {
	var cols []string
	for _, f := range fields {
		if show[f.name] {
			cols = append(cols, f.f(t))
		}
	}
	fmt.Fprintln(w, strings.Join(cols, "\t")+"\t")
}

func fail(reason string) {
	fmt.Fprintln(os.Stderr, reason)
	fmt.Fprint(os.Stderr, help, "\n")
	os.Exit(1)
}

const help = `show-exp shows how the fast exp approximations arrive at their
results.
Usage:
	show-exp [-k biases] [-fields fields] x [x...]

Where each x is a floating point literal. For each x and each bias, prints the
scaled input, the integer bit pattern before reinterpretation, the first order
and corrected results and their relative errors against math.Exp.
`
