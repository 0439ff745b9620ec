package histogram

// The four brute-kernel variants. Each builds one output row (one feature's
// histogram) with a single linear scan over the node's samples, processing
// four samples per loop body so the compiler sees four independent scatter
// targets at a time; a scalar tail picks up the remaining k mod 4 samples.
// Correctness does not depend on the unrolling, only the performance
// profile does; bruteNaive below is the single-accumulator form they are
// equivalent to.

// bruteRootHess builds row out from the full sample range (sample i is
// sample i, no indirection) with both gradient and Hessian accumulation.
func bruteRootHess(col []uint8, orderedGrad, orderedHess []float64, out []BinRecord) {
	k := len(col)
	i := 0
	for ; i+4 <= k; i += 4 {
		b0, b1, b2, b3 := col[i], col[i+1], col[i+2], col[i+3]
		out[b0].SumGradients += orderedGrad[i]
		out[b0].SumHessians += orderedHess[i]
		out[b0].Count++
		out[b1].SumGradients += orderedGrad[i+1]
		out[b1].SumHessians += orderedHess[i+1]
		out[b1].Count++
		out[b2].SumGradients += orderedGrad[i+2]
		out[b2].SumHessians += orderedHess[i+2]
		out[b2].Count++
		out[b3].SumGradients += orderedGrad[i+3]
		out[b3].SumHessians += orderedHess[i+3]
		out[b3].Count++
	}
	for ; i < k; i++ {
		b := col[i]
		out[b].SumGradients += orderedGrad[i]
		out[b].SumHessians += orderedHess[i]
		out[b].Count++
	}
}

// bruteRootConstHess is bruteRootHess without touching sum_hessians, for
// constant-Hessian mode.
func bruteRootConstHess(col []uint8, orderedGrad []float64, out []BinRecord) {
	k := len(col)
	i := 0
	for ; i+4 <= k; i += 4 {
		b0, b1, b2, b3 := col[i], col[i+1], col[i+2], col[i+3]
		out[b0].SumGradients += orderedGrad[i]
		out[b0].Count++
		out[b1].SumGradients += orderedGrad[i+1]
		out[b1].Count++
		out[b2].SumGradients += orderedGrad[i+2]
		out[b2].Count++
		out[b3].SumGradients += orderedGrad[i+3]
		out[b3].Count++
	}
	for ; i < k; i++ {
		b := col[i]
		out[b].SumGradients += orderedGrad[i]
		out[b].Count++
	}
}

// bruteNonRootHess builds row out from sampleIndices, reading the ordered
// gradient/Hessian buffers sequentially while indirecting through
// sampleIndices to find each sample's bin.
func bruteNonRootHess(col []uint8, sampleIndices []uint32, orderedGrad, orderedHess []float64, out []BinRecord) {
	k := len(sampleIndices)
	i := 0
	for ; i+4 <= k; i += 4 {
		b0 := col[sampleIndices[i]]
		b1 := col[sampleIndices[i+1]]
		b2 := col[sampleIndices[i+2]]
		b3 := col[sampleIndices[i+3]]
		out[b0].SumGradients += orderedGrad[i]
		out[b0].SumHessians += orderedHess[i]
		out[b0].Count++
		out[b1].SumGradients += orderedGrad[i+1]
		out[b1].SumHessians += orderedHess[i+1]
		out[b1].Count++
		out[b2].SumGradients += orderedGrad[i+2]
		out[b2].SumHessians += orderedHess[i+2]
		out[b2].Count++
		out[b3].SumGradients += orderedGrad[i+3]
		out[b3].SumHessians += orderedHess[i+3]
		out[b3].Count++
	}
	for ; i < k; i++ {
		b := col[sampleIndices[i]]
		out[b].SumGradients += orderedGrad[i]
		out[b].SumHessians += orderedHess[i]
		out[b].Count++
	}
}

// bruteNonRootConstHess is bruteNonRootHess without sum_hessians updates.
func bruteNonRootConstHess(col []uint8, sampleIndices []uint32, orderedGrad []float64, out []BinRecord) {
	k := len(sampleIndices)
	i := 0
	for ; i+4 <= k; i += 4 {
		b0 := col[sampleIndices[i]]
		b1 := col[sampleIndices[i+1]]
		b2 := col[sampleIndices[i+2]]
		b3 := col[sampleIndices[i+3]]
		out[b0].SumGradients += orderedGrad[i]
		out[b0].Count++
		out[b1].SumGradients += orderedGrad[i+1]
		out[b1].Count++
		out[b2].SumGradients += orderedGrad[i+2]
		out[b2].Count++
		out[b3].SumGradients += orderedGrad[i+3]
		out[b3].Count++
	}
	for ; i < k; i++ {
		b := col[sampleIndices[i]]
		out[b].SumGradients += orderedGrad[i]
		out[b].Count++
	}
}

// bruteRootHessKahan is bruteRootHess using Kahan-compensated summation,
// selected by WithKahanSummation for long-running root histograms where
// plain summation error accumulates over millions of samples.
func bruteRootHessKahan(col []uint8, orderedGrad, orderedHess []float64, out []BinRecord, gradComp, hessComp []float64) {
	for i, b := range col {
		out[b].SumGradients, gradComp[b] = kahanAdd(out[b].SumGradients, orderedGrad[i], gradComp[b])
		out[b].SumHessians, hessComp[b] = kahanAdd(out[b].SumHessians, orderedHess[i], hessComp[b])
		out[b].Count++
	}
}

// bruteNonRootHessKahan is bruteNonRootHess using Kahan-compensated
// summation.
func bruteNonRootHessKahan(col []uint8, sampleIndices []uint32, orderedGrad, orderedHess []float64, out []BinRecord, gradComp, hessComp []float64) {
	for i, idx := range sampleIndices {
		b := col[idx]
		out[b].SumGradients, gradComp[b] = kahanAdd(out[b].SumGradients, orderedGrad[i], gradComp[b])
		out[b].SumHessians, hessComp[b] = kahanAdd(out[b].SumHessians, orderedHess[i], hessComp[b])
		out[b].Count++
	}
}

// bruteRootConstHessKahan is bruteRootConstHess using Kahan-compensated
// gradient summation.
func bruteRootConstHessKahan(col []uint8, orderedGrad []float64, out []BinRecord, gradComp []float64) {
	for i, b := range col {
		out[b].SumGradients, gradComp[b] = kahanAdd(out[b].SumGradients, orderedGrad[i], gradComp[b])
		out[b].Count++
	}
}

// bruteNonRootConstHessKahan is bruteNonRootConstHess using
// Kahan-compensated gradient summation.
func bruteNonRootConstHessKahan(col []uint8, sampleIndices []uint32, orderedGrad []float64, out []BinRecord, gradComp []float64) {
	for i, idx := range sampleIndices {
		b := col[idx]
		out[b].SumGradients, gradComp[b] = kahanAdd(out[b].SumGradients, orderedGrad[i], gradComp[b])
		out[b].Count++
	}
}

// kahanAdd performs one step of Kahan compensated summation, returning the
// updated sum and compensation term.
func kahanAdd(sum, value, compensation float64) (float64, float64) {
	y := value - compensation
	t := sum + y
	newCompensation := (t - sum) - y
	return t, newCompensation
}

// bruteNaive is the single-accumulator reference kernel (no unrolling). It
// sums in the same order as the unrolled kernels and therefore matches them
// bit-for-bit. Nothing calls it; TestUnrolledMatchesNaiveReference builds
// its own equivalent loop.
func bruteNaive(col []uint8, sampleIndices []uint32, orderedGrad, orderedHess []float64, out []BinRecord, hessiansConstant bool) {
	k := len(orderedGrad)
	for i := 0; i < k; i++ {
		var b uint8
		if sampleIndices == nil {
			b = col[i]
		} else {
			b = col[sampleIndices[i]]
		}
		hess := 0.0
		if !hessiansConstant {
			hess = orderedHess[i]
		}
		out[b].Add(orderedGrad[i], hess)
	}
}
