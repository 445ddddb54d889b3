package search

// CoordinateAscent runs a greedy line search along each dimension in turn,
// trying NumSteps offsets of StepSize on both sides of the current best value.
// An improvement is kept immediately and the offsets are measured from it.
type CoordinateAscent struct {
	cfg Config
}

// NewCoordinateAscent returns the method. cfg is completed with defaults.
func NewCoordinateAscent(cfg Config) *CoordinateAscent {
	cfg.SetDefaults()
	return &CoordinateAscent{cfg: cfg}
}

func (*CoordinateAscent) Name() string { return "coordinate" }

func (c *CoordinateAscent) Maximize(f Objective, dim, maxEvaluations int) Result {
	b := newBudget(f, maxEvaluations)
	x := make([]float64, dim)
	u, ok := b.eval(x)
	if !ok {
		return b.result(dim)
	}
	for {
		start := u
		for d := 0; d < dim && !b.exhausted(); d++ {
			center := x[d]
			for k := 1; k <= c.cfg.NumSteps && !b.exhausted(); k++ {
				for _, sign := range [2]float64{1, -1} {
					x[d] = center + sign*float64(k)*c.cfg.StepSize
					v, ok := b.eval(x)
					if ok && v > u {
						u = v
						break
					}
					x[d] = center
				}
				if x[d] != center {
					// offsets restart around the new best value
					center = x[d]
					k = 0
				}
			}
			x[d] = center
		}
		if !c.cfg.Repeat || b.exhausted() || u-start < c.cfg.Tolerance {
			break
		}
	}
	return b.result(dim)
}
