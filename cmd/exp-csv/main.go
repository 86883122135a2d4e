// exp-csv writes the fast exp approximations next to the standard library ones
// as CSV, for plotting their errors.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/chewxy/math32"

	"github.com/pfcm/fexp"
	"github.com/pfcm/fexp/calibrate"
)

var (
	minFlag  = flag.Float64("min", calibrate.DefaultDomain.Min, "lowest x")
	maxFlag  = flag.Float64("max", calibrate.DefaultDomain.Max, "upper bound (exclusive) of x")
	stepFlag = flag.Float64("step", calibrate.DefaultDomain.Step, "gap between each x")
	biasFlag = flag.String("k", "minimax", "`bias` to use: minimax, l1, l2 or an integer")
	outFlag  = flag.String("out", "", "`path` to write to, defaults to stdout")
)

var header = []string{
	"x_float", "exp_float", "exp_fast_float", "exp_very_fast_float",
	"x_double", "exp_double", "exp_fast_double", "exp_very_fast_double",
}

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("exp-csv: ")

	k, err := fexp.ParseBias(*biasFlag)
	if err != nil {
		log.Fatal(err)
	}
	d := calibrate.Domain{Min: *minFlag, Max: *maxFlag, Step: *stepFlag}
	if err := d.Validate(); err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriter(out)
	if err := write(bw, d, k); err != nil {
		log.Fatal(err)
	}
	if err := bw.Flush(); err != nil {
		log.Fatal(err)
	}
	if *outFlag != "" {
		log.Printf("Wrote %d rows to %s", d.Len(), *outFlag)
	}
}

func write(w io.Writer, d calibrate.Domain, k fexp.Bias) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	f32 := func(f float32) string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }
	f64 := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	rec := make([]string, len(header))
	for i := 0; i < d.Len(); i++ {
		x := d.At(i)
		fx := float32(x)
		rec[0] = f32(fx)
		rec[1] = f32(math32.Exp(fx))
		rec[2] = f32(fexp.Corrected32(fx, k))
		rec[3] = f32(fexp.Approx32(fx, k))
		rec[4] = f64(x)
		rec[5] = f64(math.Exp(x))
		rec[6] = f64(fexp.Corrected(x, k))
		rec[7] = f64(fexp.Approx(x, k))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
