// Package micromag provides the relaxation engine for a 1D chain of
// magnetic moments driven by the Landau-Lifshitz-Gilbert equation.
//
// The package is organised as a short pipeline:
//
//   - [Chain]: the ordered array of unit moments
//   - [EffectiveField]: exchange + anisotropy + Zeeman field per site
//   - [Step]: one synchronous update under an [UpdateRule]
//   - [Relaxer]: drives Step until convergence or the iteration cap
//   - [Snapshot]: read-only copy of the final moments
//
// # Example
//
//	c := micromag.DefaultConstants()
//	chain, _ := micromag.NewChain(100, micromag.Helix())
//	r := micromag.NewRelaxer(c, micromag.LLG{})
//	result, _ := r.Minimize(ctx, chain)
//	for i, m := range result.Final {
//	    fmt.Println(i, m)
//	}
//
// # Thread Safety
//
// Chain and Relaxer are NOT thread-safe. Run independent simulations on
// independent chains.
package micromag
