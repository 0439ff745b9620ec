package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/tarstars/gbhist/histogram"
)

// formatByExt maps a filename extension to a graphviz.Format.
var formatByExt = map[string]graphviz.Format{
	".png": graphviz.PNG,
	".svg": graphviz.SVG,
	".jpg": graphviz.JPG,
}

// RenderGraph renders one box per feature of hist, labeled with that
// feature's non-zero bin counts, as a Graphviz graph saved to path.
func RenderGraph(hist *histogram.Histogram, path string) error {
	ext := extOf(path)
	format, ok := formatByExt[ext]
	if !ok {
		return fmt.Errorf("RenderGraph: unsupported output extension %q", ext)
	}

	g := graphviz.New()
	defer g.Close()

	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("RenderGraph: %w", err)
	}
	defer graph.Close()

	for f := 0; f < hist.NFeatures; f++ {
		node, err := graph.CreateNode(fmt.Sprintf("feature_%d", f))
		if err != nil {
			return fmt.Errorf("RenderGraph: creating node for feature %d: %w", f, err)
		}
		node.SetShape(cgraph.BoxShape)
		node.SetLabel(featureLabel(f, hist.Row(f)))
	}

	if err := g.RenderFilename(graph, format, path); err != nil {
		return fmt.Errorf("RenderGraph: rendering %s: %w", path, err)
	}
	return nil
}

func featureLabel(f int, row []histogram.BinRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "feature %d\\n", f)
	for bin, rec := range row {
		if rec.Count == 0 {
			continue
		}
		b.WriteString("bin ")
		b.WriteString(strconv.Itoa(bin))
		b.WriteString(": ")
		b.WriteString(strconv.FormatUint(uint64(rec.Count), 10))
		b.WriteString("\\n")
	}
	return b.String()
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return strings.ToLower(path[i:])
		}
	}
	return ""
}
