package histogram_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/tarstars/gbhist/histogram"
)

func newSampleMatrix(t *testing.T) *histogram.BinnedMatrix {
	t.Helper()
	f0 := []uint8{0, 1, 2, 0, 1, 2, 0, 1}
	f1 := []uint8{2, 2, 1, 1, 0, 0, 2, 2}
	data := append(append([]uint8{}, f0...), f1...)
	x, err := histogram.NewBinnedMatrix(8, 2, 3, data)
	require.NoError(t, err)
	return x
}

// A root build over all samples with a constant Hessian should sum
// gradients and counts into the right bins for every feature.
func TestComputeBruteRootConstantHessian(t *testing.T) {
	x := newSampleMatrix(t)
	gradients := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	builder, err := histogram.NewBuilder(x, gradients, nil, true, 2)
	require.NoError(t, err)

	hist, err := builder.ComputeBrute(nil, nil, nil, nil, false)
	require.NoError(t, err)

	f0 := hist.Row(0)
	require.Equal(t, []uint32{3, 3, 2}, countsOf(f0))
	require.Equal(t, []float64{3, 3, 2}, gradSumsOf(f0))

	f1 := hist.Row(1)
	require.Equal(t, []uint32{2, 2, 4}, countsOf(f1))
	require.Equal(t, []float64{2, 2, 4}, gradSumsOf(f1))
}

// A brute build over a strict subset of samples, tracking Hessians
// explicitly rather than assuming they're constant.
func TestComputeBruteNonRootWithHessian(t *testing.T) {
	x := newSampleMatrix(t)
	gradients := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	hessians := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	sampleIndices := []uint32{0, 2, 4, 6}

	builder, err := histogram.NewBuilder(x, gradients, hessians, false, 2)
	require.NoError(t, err)

	hist, err := builder.ComputeBrute(sampleIndices, nil, nil, nil, false)
	require.NoError(t, err)

	f0 := hist.Row(0)
	require.Equal(t, []uint32{2, 1, 1}, countsOf(f0))
	require.Equal(t, []float64{8, 5, 3}, gradSumsOf(f0))
}

// The per-bin counts of any processed feature must sum to the number of
// samples the build was run over.
func TestCountsSumToSampleCount(t *testing.T) {
	x := newSampleMatrix(t)
	gradients := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	hessians := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	sampleIndices := []uint32{0, 2, 4, 6}

	builder, err := histogram.NewBuilder(x, gradients, hessians, false, 3)
	require.NoError(t, err)

	hist, err := builder.ComputeBrute(sampleIndices, nil, nil, nil, false)
	require.NoError(t, err)

	for f := 0; f < hist.NFeatures; f++ {
		var total uint32
		for _, rec := range hist.Row(f) {
			total += rec.Count
		}
		require.Equal(t, uint32(len(sampleIndices)), total, "feature %d", f)
	}
}

// Summing sum_gradients across all bins of a feature must recover the sum
// of the gradients fed to that build call.
func TestGradientSumIsConserved(t *testing.T) {
	x := newSampleMatrix(t)
	gradients := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	hessians := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	sampleIndices := []uint32{0, 2, 4, 6}

	builder, err := histogram.NewBuilder(x, gradients, hessians, false, 1)
	require.NoError(t, err)

	hist, err := builder.ComputeBrute(sampleIndices, nil, nil, nil, false)
	require.NoError(t, err)

	var expected float64
	for _, idx := range sampleIndices {
		expected += gradients[idx]
	}

	for f := 0; f < hist.NFeatures; f++ {
		var total float64
		for _, rec := range hist.Row(f) {
			total += rec.SumGradients
		}
		require.InDelta(t, expected, total, 1e-9, "feature %d", f)
	}
}

// Restricting a build to a subset of allowed features must leave every
// other feature's row untouched (all-zero) and match an unrestricted
// build bin for bin on the features that were included.
func TestAllowedFeaturesMasking(t *testing.T) {
	nSamples, nFeatures, nBins := 8, 4, 3
	f0 := []uint8{0, 1, 2, 0, 1, 2, 0, 1}
	f1 := []uint8{2, 2, 1, 1, 0, 0, 2, 2}
	f2 := []uint8{0, 0, 0, 1, 1, 1, 2, 2}
	f3 := []uint8{1, 0, 1, 0, 1, 0, 1, 0}
	data := append(append(append(append([]uint8{}, f0...), f1...), f2...), f3...)
	x, err := histogram.NewBinnedMatrix(nSamples, nFeatures, nBins, data)
	require.NoError(t, err)

	gradients := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	builder, err := histogram.NewBuilder(x, gradients, nil, true, 2)
	require.NoError(t, err)

	allowed := []uint32{1, 3}
	masked, err := builder.ComputeBrute(nil, allowed, nil, nil, false)
	require.NoError(t, err)

	full, err := builder.ComputeBrute(nil, nil, nil, nil, false)
	require.NoError(t, err)

	for _, rec := range masked.Row(0) {
		require.Equal(t, histogram.BinRecord{}, rec)
	}
	for _, rec := range masked.Row(2) {
		require.Equal(t, histogram.BinRecord{}, rec)
	}
	require.Equal(t, full.Row(1), masked.Row(1))
	require.Equal(t, full.Row(3), masked.Row(3))
}

// The 4-way unrolled kernels must match a naive single-accumulator
// reference when summed in the same order, including on sample counts
// that aren't a multiple of 4.
func TestUnrolledMatchesNaiveReference(t *testing.T) {
	nSamples, nFeatures, nBins := 37, 1, 5 // not a multiple of 4: exercises the scalar tail
	col := make([]uint8, nSamples)
	gradients := make([]float64, nSamples)
	hessians := make([]float64, nSamples)
	for i := range col {
		col[i] = uint8(i % nBins)
		gradients[i] = float64(i%7) - 3
		hessians[i] = float64(i%5) + 1
	}
	data := append([]uint8{}, col...)
	x, err := histogram.NewBinnedMatrix(nSamples, nFeatures, nBins, data)
	require.NoError(t, err)

	builder, err := histogram.NewBuilder(x, gradients, hessians, false, 1)
	require.NoError(t, err)

	unrolled, err := builder.ComputeBrute(nil, nil, nil, nil, false)
	require.NoError(t, err)

	naive := make([]histogram.BinRecord, nBins)
	for i := 0; i < nSamples; i++ {
		b := col[i]
		naive[b].SumGradients += gradients[i]
		naive[b].SumHessians += hessians[i]
		naive[b].Count++
	}

	require.Equal(t, naive, unrolled.Row(0))
}

// Kahan-compensated summation is an alternate accumulation mode, not an
// alternate result: a root build with WithKahanSummation must agree with
// the plain-summation build within a tight tolerance.
func TestKahanSummationAgreesWithPlainSummation(t *testing.T) {
	x := newSampleMatrix(t)
	gradients := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	hessians := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	plainBuilder, err := histogram.NewBuilder(x, gradients, hessians, false, 2)
	require.NoError(t, err)
	plainHist, err := plainBuilder.ComputeBrute(nil, nil, nil, nil, false)
	require.NoError(t, err)

	kahanBuilder, err := histogram.NewBuilder(x, gradients, hessians, false, 2, histogram.WithKahanSummation())
	require.NoError(t, err)
	kahanHist, err := kahanBuilder.ComputeBrute(nil, nil, nil, nil, false)
	require.NoError(t, err)

	const tol = 1e-9
	for f := 0; f < plainHist.NFeatures; f++ {
		plainRow := plainHist.Row(f)
		kahanRow := kahanHist.Row(f)
		for b := range plainRow {
			require.Equal(t, plainRow[b].Count, kahanRow[b].Count, "feature %d bin %d", f, b)
			require.True(t, scalar.EqualWithinAbs(plainRow[b].SumGradients, kahanRow[b].SumGradients, tol),
				"feature %d bin %d: plain=%v kahan=%v", f, b, plainRow[b].SumGradients, kahanRow[b].SumGradients)
			require.True(t, scalar.EqualWithinAbs(plainRow[b].SumHessians, kahanRow[b].SumHessians, tol),
				"feature %d bin %d: plain=%v kahan=%v", f, b, plainRow[b].SumHessians, kahanRow[b].SumHessians)
		}
	}
}

// The same agreement must hold on the non-root, constant-Hessian path,
// which routes through a different pair of kernels than the root build
// above.
func TestKahanSummationAgreesWithPlainSummationNonRootConstantHessian(t *testing.T) {
	x := newSampleMatrix(t)
	gradients := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	sampleIndices := []uint32{1, 3, 5, 7}

	plainBuilder, err := histogram.NewBuilder(x, gradients, nil, true, 2)
	require.NoError(t, err)
	plainHist, err := plainBuilder.ComputeBrute(sampleIndices, nil, nil, nil, false)
	require.NoError(t, err)

	kahanBuilder, err := histogram.NewBuilder(x, gradients, nil, true, 2, histogram.WithKahanSummation())
	require.NoError(t, err)
	kahanHist, err := kahanBuilder.ComputeBrute(sampleIndices, nil, nil, nil, false)
	require.NoError(t, err)

	const tol = 1e-9
	for f := 0; f < plainHist.NFeatures; f++ {
		plainRow := plainHist.Row(f)
		kahanRow := kahanHist.Row(f)
		for b := range plainRow {
			require.Equal(t, plainRow[b].Count, kahanRow[b].Count, "feature %d bin %d", f, b)
			require.True(t, scalar.EqualWithinAbs(plainRow[b].SumGradients, kahanRow[b].SumGradients, tol),
				"feature %d bin %d: plain=%v kahan=%v", f, b, plainRow[b].SumGradients, kahanRow[b].SumGradients)
		}
	}
}

// With the upfront bounds check disabled, an out-of-range sample index is
// no longer caught before dispatch: the gather stage indexes straight into
// the gradient slice and the runtime catches the mistake instead.
func TestDebugBoundsCheckDisabledSkipsValidation(t *testing.T) {
	x := newSampleMatrix(t)
	gradients := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	builder, err := histogram.NewBuilder(x, gradients, nil, true, 1, histogram.WithDebugBoundsCheck(false))
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected the unchecked out-of-range sample index to panic")
	}()

	_, _ = builder.ComputeBrute([]uint32{0, 100}, nil, nil, nil, false)
}

func countsOf(row []histogram.BinRecord) []uint32 {
	out := make([]uint32, len(row))
	for i, rec := range row {
		out[i] = rec.Count
	}
	return out
}

func gradSumsOf(row []histogram.BinRecord) []float64 {
	out := make([]float64, len(row))
	for i, rec := range row {
		out[i] = rec.SumGradients
	}
	return out
}
