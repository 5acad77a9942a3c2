// Package viz renders dual-number results for the terminal.
//
//   - [RenderEval]: styled table of f(x), f'(x) and advisories
//   - [RenderSweep]: sparklines of f and f' over a sweep
//   - [Explorer]: Bubble Tea model for walking x interactively
//
// # Key Bindings
//
//	←/→ h/l - Move x by one step
//	+/-     - Double or halve the step
//	r       - Return to the starting x
//	q       - Quit
package viz
