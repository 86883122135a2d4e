package fexp

import "golang.org/x/exp/constraints"

// ApproxSlice sets dst[i] = Approx(src[i], k) for every element of src. dst
// must be at least as long as src; dst and src may be the same slice.
func ApproxSlice[T constraints.Float](dst, src []T, k Bias) {
	for i, x := range src {
		dst[i] = T(Approx32(float32(x), k))
	}
}

// CorrectedSlice sets dst[i] = Corrected(src[i], k) for every element of src,
// with the same requirements as ApproxSlice.
func CorrectedSlice[T constraints.Float](dst, src []T, k Bias) {
	for i, x := range src {
		dst[i] = T(Corrected32(float32(x), k))
	}
}
