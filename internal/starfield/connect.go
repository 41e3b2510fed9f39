package starfield

// Connect calls fn for every unordered pair of particles closer than
// threshold and returns the number of pairs. It checks all n(n-1)/2 pairs,
// which is only affordable because a field holds a fixed Count particles.
func Connect(ps []Particle, threshold float64, fn func(a, b Particle)) int {
	limit := threshold * threshold
	n := 0
	for i := 0; i < len(ps); i++ {
		a := ps[i]
		for j := i + 1; j < len(ps); j++ {
			b := ps[j]
			dx := a.Position.X - b.Position.X
			dy := a.Position.Y - b.Position.Y
			if dx*dx+dy*dy < limit {
				n++
				if fn != nil {
					fn(a, b)
				}
			}
		}
	}
	return n
}

func (f *Field) connect(ctx Context, stroke Color) int {
	return Connect(f.particles, Threshold, func(a, b Particle) {
		ctx.StrokeLine(a.Position.X, a.Position.Y, b.Position.X, b.Position.Y, LineWidth, stroke)
	})
}
