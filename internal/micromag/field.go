package micromag

// EffectiveField returns the total field at every site: exchange (interior
// sites only), anisotropy along the easy axis and the uniform Zeeman field.
// The chain is only read; the result is a fresh slice.
func EffectiveField(chain *Chain, c Constants) []Vec3 {
	m := chain.moments
	h := make([]Vec3, len(m))
	zeeman := ZeemanField(c)

	parallelFor(len(m), c.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			h[i] = exchangeAt(m, i, c).Add(anisotropyAt(m[i], c)).Add(zeeman)
		}
	})

	return h
}

// ExchangeField returns the discrete-Laplacian exchange contribution.
// Sites 0 and N-1 get zero (open boundary).
func ExchangeField(chain *Chain, c Constants) []Vec3 {
	m := chain.moments
	h := make([]Vec3, len(m))
	for i := range m {
		h[i] = exchangeAt(m, i, c)
	}
	return h
}

// AnisotropyField returns (2Ku/(Ms·mu)) (m·e) e at every site.
func AnisotropyField(chain *Chain, c Constants) []Vec3 {
	m := chain.moments
	h := make([]Vec3, len(m))
	for i := range m {
		h[i] = anisotropyAt(m[i], c)
	}
	return h
}

// ZeemanField returns the applied field seen by every site.
func ZeemanField(c Constants) Vec3 {
	return c.ExternalField.Scale(1 / c.mu())
}

func exchangeAt(m []Vec3, i int, c Constants) Vec3 {
	if i == 0 || i >= len(m)-1 {
		return Vec3{}
	}
	coeff := 2 * c.Exchange / c.Saturation / (c.CellSize * c.CellSize)
	lap := m[i+1].Sub(m[i].Scale(2)).Add(m[i-1])
	return lap.Scale(coeff)
}

func anisotropyAt(m Vec3, c Constants) Vec3 {
	coeff := 2 * c.Anisotropy / (c.Saturation * c.mu())
	return c.EasyAxis.Scale(coeff * m.Dot(c.EasyAxis))
}
