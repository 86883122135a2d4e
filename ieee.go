package fexp

import "math"

// Layout of an IEEE-754 binary32, which Go guarantees for float32 on every
// platform. Everything in this package depends on it.
const (
	mantissaBits = 23
	exponentBias = 127
	mantissaMask = 1<<mantissaBits - 1
)

// Trace holds every intermediate value of one call to Corrected32, mostly for
// looking at why a particular input comes out the way it does.
type Trace struct {
	X      float32
	Bias   Bias
	Scaled float32 // x * 2^23/ln(2)
	Base   int32   // Scaled truncated toward zero
	Bits   int32   // Base + (127 << 23) - Bias

	FirstOrder  float32 // Bits reinterpreted, the result of Approx32
	CorrectionX float32 // mantissa of Bits with a zero exponent, in [1, 2)
	Correction  float32 // the quadratic evaluated at CorrectionX
	Value       float32 // FirstOrder * Correction, the result of Corrected32
}

// TraceCorrected runs Corrected32 and records the intermediate values.
func TraceCorrected(x float32, k Bias) Trace {
	t := Trace{X: x, Bias: k}
	t.Scaled = x * scale
	t.Base = int32(t.Scaled)
	t.Bits = t.Base + one - int32(k)
	t.FirstOrder = math.Float32frombits(uint32(t.Bits))
	t.CorrectionX = math.Float32frombits(uint32(t.Bits)&mantissaMask | one)
	t.Correction = fma32(fma32(t.CorrectionX, P2, P1), t.CorrectionX, P0)
	t.Value = t.FirstOrder * t.Correction
	return t
}

// Exponent returns the unbiased exponent field of the first order result.
func (t Trace) Exponent() int {
	return int(uint32(t.Bits)>>mantissaBits&0xff) - exponentBias
}
