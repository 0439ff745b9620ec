package histogram

import (
	"github.com/tarstars/gbhist/pkg/log"
)

// Builder owns read-only references to the binned feature matrix and the
// gradient/Hessian vectors, owns the ordered-gradient scratch buffers, and
// exposes the two public construction operations. A Builder is bound to the
// gradient and Hessian vectors given to NewBuilder; it has no operation that
// rebinds it to new vectors. It is safe for concurrent use by its own internal dispatcher only —
// callers must not invoke ComputeBrute/ComputeSubtraction concurrently on
// the same Builder.
type Builder struct {
	x                *BinnedMatrix
	gradients        []float64
	hessians         []float64
	hessiansConstant bool
	nThreads         int

	orderedGrad []float64
	orderedHess []float64

	kahan            bool
	debugBoundsCheck bool

	logger *log.Logger
}

// BuilderOption configures a Builder at construction time.
type BuilderOption func(*Builder)

// WithKahanSummation enables Kahan-compensated accumulation in the brute
// kernels, trading some throughput for better precision on long running
// root-histogram builds. Plain summation is the default, matching the
// three-accumulations-per-sample hot-loop shape of the kernels exactly.
func WithKahanSummation() BuilderOption {
	return func(b *Builder) { b.kahan = true }
}

// WithDebugBoundsCheck toggles the upfront, once-before-dispatch validation
// of sample_indices and allowed_features. It defaults to enabled; callers
// that have already validated their indices upstream and want the hot path
// to skip redundant checks may disable it.
func WithDebugBoundsCheck(enabled bool) BuilderOption {
	return func(b *Builder) { b.debugBoundsCheck = enabled }
}

// WithLogger attaches a named logger the builder uses to report dispatch
// statistics at Debug level.
func WithLogger(logger *log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder constructs a Builder over X_binned, gradients, and hessians.
// hessiansConstant marks constant-Hessian mode, in which sum_hessians is
// never read or written by the kernels. nThreads sizes the fixed
// feature-parallel worker pool; a value less than 1 defaults to 1.
func NewBuilder(x *BinnedMatrix, gradients, hessians []float64, hessiansConstant bool, nThreads int, opts ...BuilderOption) (*Builder, error) {
	const op = "NewBuilder"
	if x == nil {
		return nil, invalidArg(op, "X_binned must not be nil")
	}
	if len(gradients) != x.NSamples {
		return nil, invalidArg(op, "gradients length %d does not match n_samples %d", len(gradients), x.NSamples)
	}
	if !hessiansConstant && len(hessians) != x.NSamples {
		return nil, invalidArg(op, "hessians length %d does not match n_samples %d", len(hessians), x.NSamples)
	}
	if nThreads < 1 {
		nThreads = 1
	}

	b := &Builder{
		x:                x,
		gradients:        gradients,
		hessians:         hessians,
		hessiansConstant: hessiansConstant,
		nThreads:         nThreads,
		debugBoundsCheck: true,
		logger:           log.GetLoggerWithName("histogram.builder"),
	}

	// The ordered buffers start out equal to the full vectors, so the
	// root call (sample_indices absent or identity) needs no gather.
	b.orderedGrad = make([]float64, x.NSamples)
	copy(b.orderedGrad, gradients)
	b.orderedHess = make([]float64, x.NSamples)
	if !hessiansConstant {
		copy(b.orderedHess, hessians)
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// resolveAllowedFeatures returns the feature indices to process: the full
// range when allowedFeatures is nil, or allowedFeatures itself after
// validation.
func (b *Builder) resolveAllowedFeatures(op string, allowedFeatures []uint32) ([]uint32, error) {
	if allowedFeatures == nil {
		all := make([]uint32, b.x.NFeatures)
		for i := range all {
			all[i] = uint32(i)
		}
		return all, nil
	}
	if b.debugBoundsCheck {
		seen := make(map[uint32]bool, len(allowedFeatures))
		for _, f := range allowedFeatures {
			if int(f) >= b.x.NFeatures {
				return nil, invalidArg(op, "allowed feature index %d out of range [0, %d)", f, b.x.NFeatures)
			}
			if seen[f] {
				return nil, invalidArg(op, "allowed feature index %d duplicated", f)
			}
			seen[f] = true
		}
	}
	return allowedFeatures, nil
}

func (b *Builder) validateSampleIndices(op string, sampleIndices []uint32) error {
	if !b.debugBoundsCheck || sampleIndices == nil {
		return nil
	}
	for _, idx := range sampleIndices {
		if int(idx) >= b.x.NSamples {
			return invalidArg(op, "sample index %d out of range [0, %d)", idx, b.x.NSamples)
		}
	}
	return nil
}

// allocateHistogram allocates a zeroed histogram, surfacing allocation
// failure as *errors.ResourceExhaustionError rather than letting the
// runtime panic escape. Allocation is the only blocking, fallible step
// before dispatch.
func (b *Builder) allocateHistogram(op string) (hist *Histogram, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = resourceExhausted(op, "allocating histogram: %v", r)
		}
	}()
	return NewHistogram(b.x.NFeatures, b.x.NBins), nil
}

// ComputeBrute builds a histogram over the samples named by sampleIndices.
// sampleIndices nil means the root: all samples, index-free scan. When
// parentSplitInfo and parentHistograms are both present, the feature named
// by parentSplitInfo.FeatureIdx is built via the split-feature reuse path
// instead of rescanning; isLeftChild selects which side of the split this
// histogram represents.
func (b *Builder) ComputeBrute(sampleIndices []uint32, allowedFeatures []uint32, parentSplitInfo *SplitInfo, parentHistograms *Histogram, isLeftChild bool) (*Histogram, error) {
	const op = "Builder.ComputeBrute"

	if err := b.validateSampleIndices(op, sampleIndices); err != nil {
		return nil, err
	}
	features, err := b.resolveAllowedFeatures(op, allowedFeatures)
	if err != nil {
		return nil, err
	}
	if parentHistograms != nil && (parentHistograms.NFeatures != b.x.NFeatures || parentHistograms.NBins != b.x.NBins) {
		return nil, invalidArg(op, "parent_histograms shape (%d, %d) does not match (%d, %d)",
			parentHistograms.NFeatures, parentHistograms.NBins, b.x.NFeatures, b.x.NBins)
	}
	reuseFeature := -1
	if parentSplitInfo != nil && parentHistograms != nil {
		if parentSplitInfo.IsCategorical && parentSplitInfo.LeftCatBitset == nil {
			return nil, invalidArg(op, "split is categorical but left_cat_bitset is absent")
		}
		reuseFeature = parentSplitInfo.FeatureIdx
	}

	out, err := b.allocateHistogram(op)
	if err != nil {
		return nil, err
	}

	root := !needsGather(sampleIndices, b.x.NSamples)
	var k int
	if sampleIndices == nil {
		k = b.x.NSamples
	} else {
		k = len(sampleIndices)
		if needsGather(sampleIndices, b.x.NSamples) {
			gather(sampleIndices, b.gradients, b.hessians, b.orderedGrad, b.orderedHess, b.hessiansConstant)
		}
	}
	orderedGrad := b.orderedGrad[:k]
	orderedHess := b.orderedHess[:k]
	if root {
		// The root reads the full vectors directly: an earlier non-root
		// call may have overwritten the ordered buffers' prefix.
		orderedGrad = b.gradients
		if !b.hessiansConstant {
			orderedHess = b.hessians
		}
	}

	dispatch(features, b.nThreads, func(f int) {
		row := out.Row(f)
		col := b.x.Column(f)

		if f == reuseFeature {
			parentRow := parentHistograms.Row(f)
			if parentSplitInfo.IsCategorical {
				reuseCategorical(parentRow, row, parentSplitInfo.LeftCatBitset, isLeftChild)
			} else {
				start, end := splitRangeForChild(parentSplitInfo.BinIdx, b.x.NBins, isLeftChild)
				reuseNumeric(parentRow, row, start, end)
			}
			return
		}

		b.runBruteKernel(root, col, sampleIndices, orderedGrad, orderedHess, row)
	})

	if b.logger != nil {
		b.logger.Debug("built histogram", "n_features", len(features), "k", k, "root", root)
	}

	return out, nil
}

// runBruteKernel dispatches to the correct one of the four brute-kernel
// variants based on whether this is the root path and whether Hessians are
// tracked, optionally routing through the Kahan-compensated accumulators.
func (b *Builder) runBruteKernel(root bool, col []uint8, sampleIndices []uint32, orderedGrad, orderedHess []float64, out []BinRecord) {
	if b.kahan {
		gradComp := make([]float64, len(out))
		hessComp := make([]float64, len(out))
		switch {
		case root && !b.hessiansConstant:
			bruteRootHessKahan(col, orderedGrad, orderedHess, out, gradComp, hessComp)
		case root && b.hessiansConstant:
			bruteRootConstHessKahan(col, orderedGrad, out, gradComp)
		case !root && !b.hessiansConstant:
			bruteNonRootHessKahan(col, sampleIndices, orderedGrad, orderedHess, out, gradComp, hessComp)
		default:
			bruteNonRootConstHessKahan(col, sampleIndices, orderedGrad, out, gradComp)
		}
		return
	}

	switch {
	case root && !b.hessiansConstant:
		bruteRootHess(col[:len(orderedGrad)], orderedGrad, orderedHess, out)
	case root && b.hessiansConstant:
		bruteRootConstHess(col[:len(orderedGrad)], orderedGrad, out)
	case !root && !b.hessiansConstant:
		bruteNonRootHess(col, sampleIndices, orderedGrad, orderedHess, out)
	default:
		bruteNonRootConstHess(col, sampleIndices, orderedGrad, out)
	}
}

// ComputeSubtraction computes hist(node) = hist(parent) - hist(sibling)
// per bin, for every allowed feature. It does not touch X_binned and is
// O(n_features x n_bins).
func (b *Builder) ComputeSubtraction(parentHistograms, siblingHistograms *Histogram, allowedFeatures []uint32) (*Histogram, error) {
	const op = "Builder.ComputeSubtraction"

	if parentHistograms == nil || siblingHistograms == nil {
		return nil, invalidArg(op, "parent_histograms and sibling_histograms must both be present")
	}
	if !parentHistograms.SameShape(siblingHistograms) {
		return nil, invalidArg(op, "parent_histograms and sibling_histograms shapes disagree")
	}
	if parentHistograms.NFeatures != b.x.NFeatures || parentHistograms.NBins != b.x.NBins {
		return nil, invalidArg(op, "parent_histograms shape (%d, %d) does not match builder shape (%d, %d)",
			parentHistograms.NFeatures, parentHistograms.NBins, b.x.NFeatures, b.x.NBins)
	}

	features, err := b.resolveAllowedFeatures(op, allowedFeatures)
	if err != nil {
		return nil, err
	}

	out, err := b.allocateHistogram(op)
	if err != nil {
		return nil, err
	}

	dispatch(features, b.nThreads, func(f int) {
		subtractRow(parentHistograms.Row(f), siblingHistograms.Row(f), out.Row(f))
	})

	return out, nil
}
