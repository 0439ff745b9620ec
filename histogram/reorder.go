package histogram

// isIdentity reports whether sampleIndices is exactly [0, 1, ..., n-1),
// checked by direct equality scan rather than by length alone. Any
// permutation other than the identity — even one the same length as the
// full sample count — must take the gather path, not the root
// specialization.
func isIdentity(sampleIndices []uint32, n int) bool {
	if len(sampleIndices) != n {
		return false
	}
	for i, idx := range sampleIndices {
		if idx != uint32(i) {
			return false
		}
	}
	return true
}

// needsGather reports whether the gather stage must run before the
// per-feature kernels: it is skipped only when sampleIndices is absent or is
// the identity permutation, in which case the kernels read the full
// gradient/Hessian vectors directly.
func needsGather(sampleIndices []uint32, n int) bool {
	if sampleIndices == nil {
		return false
	}
	return !isIdentity(sampleIndices, n)
}

// gather fills orderedGrad[0:k] and orderedHess[0:k] (unless
// hessiansConstant) from grad/hess indexed by sampleIndices, so kernels read the
// node's samples sequentially instead of scattered by sampleIndices. The
// gather is data-parallel across i with no cross-index dependency; it runs
// on the calling goroutine since it is O(k), a small fraction of the
// per-feature work that follows.
func gather(sampleIndices []uint32, grad, hess []float64, orderedGrad, orderedHess []float64, hessiansConstant bool) {
	k := len(sampleIndices)
	for i := 0; i < k; i++ {
		orderedGrad[i] = grad[sampleIndices[i]]
	}
	if !hessiansConstant {
		for i := 0; i < k; i++ {
			orderedHess[i] = hess[sampleIndices[i]]
		}
	}
}
