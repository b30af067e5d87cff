// Package viz renders solutions in the terminal.
//
// The package provides:
//
//   - [Plot]: an asciigraph line plot of one variable
//   - [Viewer]: an interactive Bubble Tea browser over a run's variables
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	j/k   - Select variable
//	t     - Cycle color themes
//	?     - Toggle help line
//	q     - Quit
package viz
