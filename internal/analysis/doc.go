// Package analysis provides post-run diagnostics for relaxed chains:
// profile statistics and the spatial power spectrum of a component.
package analysis
