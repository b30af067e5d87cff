package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Plot draws values as an ASCII line plot.
func Plot(caption string, values []float64, width, height int) string {
	if len(values) == 0 {
		return Subtle.Render("(no data)")
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(4),
		asciigraph.Caption(caption),
	)
}
