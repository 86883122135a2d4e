// package fexp computes fast approximations of e^x for float32 by working
// directly on the IEEE-754 bit layout.
//
// The bit pattern of a positive float is, to first order, a piecewise linear
// encoding of its base 2 logarithm. Scaling x by 2^23/ln(2) turns it into a
// delta on that encoding, so adding it to the bits of 1.0 and reinterpreting
// the result as a float gives roughly 2^(x/ln 2) = e^x. A bias constant K
// shifts the error curve so that it minimises some metric, and an optional
// quadratic in the fractional mantissa removes most of the remaining
// systematic error.
//
// Accuracy is only meaningful for roughly -50 <= x <= 50. Outside that the
// functions still return something, but once x*2^23/ln(2) leaves the range of
// an int32 the result depends on how the platform converts floats to ints.
// Nothing here guards against that.
package fexp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Bias is the constant K subtracted from the raw bit pattern to recenter the
// error of the approximation. Larger values shift the whole curve down.
type Bias int32

// Calibrated biases for Approx32, each minimising a different relative error
// metric over [-50, 50).
const (
	// Minimax minimises the maximum relative error: 2.98%.
	Minimax Bias = 366393
	// L1 minimises the mean relative error: 1.48%.
	L1 Bias = 545948
	// L2 minimises the root mean squared relative error: 1.77%.
	L2 Bias = 486412
)

// Coefficients of the correction quadratic P0 + P1*m + P2*m², fitted to the
// residual of Approx32 over one mantissa octave m in [1, 2).
const (
	P0 float32 = 1.469318866729736328125
	P1 float32 = -0.671999752521514892578125
	P2 float32 = 0.22670517861843109130859375
)

// scale is 2^23 / ln(2), which converts a natural exponent into a delta on
// the exponent field of a float32. It is exactly representable as a float32.
const scale = 12102203

// one is the bit pattern of 1.0.
const one = exponentBias << mantissaBits

// approx returns the first order approximation along with the integer it was
// reinterpreted from.
func approx(x float32, k Bias) (float32, int32) {
	i := int32(x*scale) + one - int32(k)
	return math.Float32frombits(uint32(i)), i
}

// Approx32 approximates e^x with a single multiply, a truncation, an integer
// add and a reinterpretation of the bits. With k = Minimax the relative error
// stays under 3% for x in [-50, 50).
func Approx32(x float32, k Bias) float32 {
	f, _ := approx(x, k)
	return f
}

// Corrected32 approximates e^x like Approx32 and then multiplies by a
// quadratic in the fractional mantissa of the intermediate result. With
// k = Minimax the relative error stays under 0.7% for x in [-50, 50).
func Corrected32(x float32, k Bias) float32 {
	first, i := approx(x, k)
	m := math.Float32frombits(uint32(i)&mantissaMask | one)
	c := fma32(m, P2, P1)
	c = fma32(c, m, P0)
	return first * c
}

// fma32 computes x*y+z with one rounding of the sum. The product of two
// float32s is exact in a float64.
func fma32(x, y, z float32) float32 {
	return float32(math.FMA(float64(x), float64(y), float64(z)))
}

// Approx is Approx32 for any float type. Wider inputs are narrowed to float32
// first and the result widened, so no precision is gained over Approx32.
func Approx[T constraints.Float](x T, k Bias) T {
	return T(Approx32(float32(x), k))
}

// Corrected is Corrected32 for any float type, with the same narrowing as
// Approx.
func Corrected[T constraints.Float](x T, k Bias) T {
	return T(Corrected32(float32(x), k))
}

// Exp is Corrected with the Minimax bias.
func Exp[T constraints.Float](x T) T {
	return Corrected(x, Minimax)
}

// ExpFast is Approx with the Minimax bias.
func ExpFast[T constraints.Float](x T) T {
	return Approx(x, Minimax)
}

var biasNames = []struct {
	name string
	b    Bias
}{
	{"minimax", Minimax},
	{"l1", L1},
	{"l2", L2},
}

func (b Bias) String() string {
	for _, n := range biasNames {
		if n.b == b {
			return n.name
		}
	}
	return strconv.FormatInt(int64(b), 10)
}

// ParseBias parses either the name of one of the calibrated biases
// ("minimax", "l1" or "l2", case insensitive) or an integer literal in Go
// syntax.
func ParseBias(s string) (Bias, error) {
	for _, n := range biasNames {
		if strings.EqualFold(s, n.name) {
			return n.b, nil
		}
	}
	i, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid bias %q: want minimax, l1, l2 or an int32", s)
	}
	return Bias(i), nil
}
