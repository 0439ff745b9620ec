// Package histogram implements the histogram construction core of a
// histogram-based gradient boosting decision tree trainer: building,
// subtracting, and reusing per-feature (sum_gradients, sum_hessians, count)
// histograms from a pre-binned feature matrix.
package histogram

import (
	"github.com/tarstars/gbhist/pkg/errors"
)

// BinRecord accumulates the gradient and Hessian sums, and the sample
// count, of every sample falling into one bin of one feature.
type BinRecord struct {
	SumGradients float64
	SumHessians  float64
	Count        uint32
}

// Add accumulates one sample's gradient and Hessian into the record.
func (b *BinRecord) Add(grad, hess float64) {
	b.SumGradients += grad
	b.SumHessians += hess
	b.Count++
}

// Sub subtracts other from b in place, field by field.
func (b *BinRecord) Sub(other BinRecord) {
	b.SumGradients -= other.SumGradients
	b.SumHessians -= other.SumHessians
	b.Count -= other.Count
}

// Histogram is a dense (n_features x n_bins) array of BinRecord, stored
// row-major: row f (n_bins records long) holds feature f's histogram.
type Histogram struct {
	NFeatures int
	NBins     int
	Records   []BinRecord
}

// NewHistogram allocates a zeroed histogram of the given shape.
func NewHistogram(nFeatures, nBins int) *Histogram {
	return &Histogram{
		NFeatures: nFeatures,
		NBins:     nBins,
		Records:   make([]BinRecord, nFeatures*nBins),
	}
}

// Row returns the nBins-long contiguous slice backing feature f. Callers
// may write to the returned slice; rows never overlap.
func (h *Histogram) Row(f int) []BinRecord {
	start := f * h.NBins
	return h.Records[start : start+h.NBins]
}

// At returns the record for feature f, bin b.
func (h *Histogram) At(f, b int) BinRecord {
	return h.Records[f*h.NBins+b]
}

// Set stores the record for feature f, bin b.
func (h *Histogram) Set(f, b int, rec BinRecord) {
	h.Records[f*h.NBins+b] = rec
}

// SameShape reports whether h and other share (NFeatures, NBins).
func (h *Histogram) SameShape(other *Histogram) bool {
	return h.NFeatures == other.NFeatures && h.NBins == other.NBins
}

// BinnedMatrix is the read-only, pre-binned feature matrix (X_binned): an
// (n_samples x n_features) array of bin indices in [0, n_bins), stored
// column-major so each feature column is a contiguous, stride-1 run. This
// layout is load-bearing for performance and is enforced at construction
// rather than left to caller convention.
type BinnedMatrix struct {
	NSamples  int
	NFeatures int
	NBins     int
	// Data holds NFeatures columns back to back, each NSamples long:
	// Data[f*NSamples+i] is the bin index of sample i for feature f.
	Data []uint8
}

// NewBinnedMatrix builds a BinnedMatrix from column-major data already laid
// out as NFeatures contiguous columns of NSamples bytes. It returns
// *errors.InvalidArgumentError if data's length disagrees with the declared
// shape.
func NewBinnedMatrix(nSamples, nFeatures, nBins int, data []uint8) (*BinnedMatrix, error) {
	const op = "NewBinnedMatrix"
	if len(data) != nSamples*nFeatures {
		return nil, errors.NewInvalidArgumentError(op,
			"data length does not match nSamples*nFeatures")
	}
	return &BinnedMatrix{NSamples: nSamples, NFeatures: nFeatures, NBins: nBins, Data: data}, nil
}

// Column returns the contiguous, stride-1 slice of bin indices for feature
// f, one entry per sample.
func (m *BinnedMatrix) Column(f int) []uint8 {
	start := f * m.NSamples
	return m.Data[start : start+m.NSamples]
}

// CatBitset is a packed bitset over n_bins bits, used to mark which bins go
// to the left child of a categorical split.
type CatBitset struct {
	nBits int
	words []uint64
}

// NewCatBitset allocates a zeroed bitset with room for nBits bits.
func NewCatBitset(nBits int) *CatBitset {
	return &CatBitset{nBits: nBits, words: make([]uint64, (nBits+63)/64)}
}

// Set marks bin b as belonging to the bitset's side.
func (c *CatBitset) Set(b int) {
	c.words[b/64] |= 1 << uint(b%64)
}

// Contains reports whether bin b is marked.
func (c *CatBitset) Contains(b int) bool {
	return c.words[b/64]&(1<<uint(b%64)) != 0
}

// NBits returns the bitset's declared bit width.
func (c *CatBitset) NBits() int {
	return c.nBits
}

// SplitInfo describes the split that produced the current node's
// parent-to-child transition. It is supplied by, and remains owned by, the
// external split-finder; the histogram builder only reads it.
type SplitInfo struct {
	FeatureIdx    int
	BinIdx        int
	IsCategorical bool
	LeftCatBitset *CatBitset
}
