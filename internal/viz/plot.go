package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spinchain/internal/micromag"
)

// ProfilePlot draws m_x, m_y and m_z against site index on one chart.
func ProfilePlot(s micromag.Snapshot, width, height int) string {
	if len(s) == 0 {
		return ""
	}
	return asciigraph.PlotMany(
		[][]float64{s.Components(0), s.Components(1), s.Components(2)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(-1),
		asciigraph.UpperBound(1),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
		asciigraph.Caption("m_x (red)  m_y (green)  m_z (blue) vs site"),
	)
}

// ComponentPlot draws a single series with its caption.
func ComponentPlot(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// ConvergencePlot draws log10(max_change) per iteration.
func ConvergencePlot(history []float64, width, height int) string {
	if len(history) == 0 {
		return ""
	}
	return ComponentPlot(logSeries(history), "log10(max change) vs iteration", width, height)
}
