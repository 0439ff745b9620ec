package histogram

import "gonum.org/v1/gonum/mat"

// Matrices holds a Histogram re-expressed as three (n_features x n_bins)
// Gonum matrices, for callers (plotting, downstream analytics) that prefer
// Gonum's matrix API over raw BinRecord slices.
type Matrices struct {
	Counts       *mat.Dense
	SumGradients *mat.Dense
	SumHessians  *mat.Dense
}

// ToMatrices converts h into its Matrices view. Counts are stored as
// float64 to fit mat.Dense's element type.
func (h *Histogram) ToMatrices() *Matrices {
	counts := mat.NewDense(h.NFeatures, h.NBins, nil)
	grads := mat.NewDense(h.NFeatures, h.NBins, nil)
	hess := mat.NewDense(h.NFeatures, h.NBins, nil)

	for f := 0; f < h.NFeatures; f++ {
		row := h.Row(f)
		for b, rec := range row {
			counts.Set(f, b, float64(rec.Count))
			grads.Set(f, b, rec.SumGradients)
			hess.Set(f, b, rec.SumHessians)
		}
	}

	return &Matrices{Counts: counts, SumGradients: grads, SumHessians: hess}
}
