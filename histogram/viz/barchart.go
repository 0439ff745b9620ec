// Package viz renders completed histograms for visual inspection: bin
// counts as a bar chart, and a per-feature summary as a Graphviz graph.
package viz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tarstars/gbhist/histogram"
)

// RenderBarChart draws feature featureIdx's bin counts as a bar chart and
// saves it to path. The output format is taken from path's extension
// (".png" or ".svg").
func RenderBarChart(hist *histogram.Histogram, featureIdx int, title, path string) error {
	if featureIdx < 0 || featureIdx >= hist.NFeatures {
		return fmt.Errorf("RenderBarChart: feature index %d out of range [0, %d)", featureIdx, hist.NFeatures)
	}

	row := hist.Row(featureIdx)
	values := make(plotter.Values, len(row))
	for b, rec := range row {
		values[b] = float64(rec.Count)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"
	p.X.Label.Text = "bin"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("RenderBarChart: %w", err)
	}
	p.Add(bars)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("RenderBarChart: saving %s: %w", path, err)
	}
	return nil
}
