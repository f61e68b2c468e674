// Package viz renders relaxation runs in the terminal.
//
// It provides:
//
//   - [Model]: a Bubble Tea program that steps a chain live
//   - [ProfilePlot] and [ConvergencePlot]: asciigraph charts for finished runs
//   - [Summary]: a styled panel with the run outcome
//
// # Key Bindings
//
//	Space - Pause/Resume relaxation
//	R     - Reset to the initial chain
//	+/-   - More/fewer steps per frame
//	Q     - Quit
package viz
