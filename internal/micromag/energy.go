package micromag

// Energy returns the total micromagnetic energy of the chain, summed over
// every site and bond:
//
//	E = dx * Σ [ A|m[i+1]-m[i]|²/dx² - Ku (m[i]·e)² - Ms m[i]·H_ext/mu ]
func Energy(chain *Chain, c Constants) float64 {
	m := chain.moments
	zeeman := ZeemanField(c)
	dx2 := c.CellSize * c.CellSize

	var e float64
	for i := range m {
		if i+1 < len(m) {
			d := m[i+1].Sub(m[i])
			e += c.Exchange * d.Dot(d) / dx2
		}
		p := m[i].Dot(c.EasyAxis)
		e -= c.Anisotropy * p * p
		e -= c.Saturation * m[i].Dot(zeeman)
	}
	return e * c.CellSize
}
