package histogram

import (
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/gbhist/pkg/errors"
)

// LoadBinnedMatrix reads a (n_samples x n_features) numpy array of bin
// indices from path and repacks it into the builder's required
// column-major BinnedMatrix layout, grounded in ReadNpy's
// npyio.NewReader(f).Read(...) pattern.
func LoadBinnedMatrix(path string, nBins int) (*BinnedMatrix, error) {
	const op = "LoadBinnedMatrix"

	dense, err := readNpyDense(op, path)
	if err != nil {
		return nil, err
	}

	nSamples, nFeatures := dense.Dims()
	data := make([]uint8, nSamples*nFeatures)
	for f := 0; f < nFeatures; f++ {
		col := data[f*nSamples : (f+1)*nSamples]
		for i := 0; i < nSamples; i++ {
			col[i] = uint8(dense.At(i, f))
		}
	}

	return NewBinnedMatrix(nSamples, nFeatures, nBins, data)
}

// LoadFloatVector reads a (n, 1) or (n,) numpy array from path into a flat
// []float64, for loading gradients/hessians fixtures.
func LoadFloatVector(path string) ([]float64, error) {
	const op = "LoadFloatVector"

	dense, err := readNpyDense(op, path)
	if err != nil {
		return nil, err
	}

	n, cols := dense.Dims()
	if cols != 1 {
		return nil, invalidArg(op, "expected a single-column vector, got %d columns", cols)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = dense.At(i, 0)
	}
	return out, nil
}

func readNpyDense(op, path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: opening %s", op, path)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: reading npy header of %s", op, path)
	}

	dense := &mat.Dense{}
	if err := r.Read(dense); err != nil {
		return nil, errors.Wrapf(err, "%s: decoding npy body of %s", op, path)
	}
	return dense, nil
}
