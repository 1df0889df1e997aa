package solver

import (
	"fmt"
	"math"
)

const curvatureFloor = 1e-15

// Newton minimizes with plain Newton steps, moving x against the first
// derivative scaled by the inverse of the second derivative.
type Newton struct {
	Settings Settings
}

// Minimize stops once |f'(x)| drops below the gradient threshold.
func (n *Newton) Minimize(p Problem, x0 float64) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}

	x := x0
	for iter := 0; iter < n.Settings.MaxIterations; iter++ {
		g := p.Grad(x)
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return Result{X: x, Iterations: iter}, fmt.Errorf("%w: non-finite gradient at x=%g", ErrDegenerate, x)
		}
		if math.Abs(g) < n.Settings.GradientThreshold {
			return Result{X: x, F: p.Func(x), Iterations: iter}, nil
		}

		h := p.Hess(x)
		if math.IsNaN(h) || h < curvatureFloor {
			return Result{X: x, Iterations: iter}, fmt.Errorf("%w: curvature %g at x=%g", ErrDegenerate, h, x)
		}
		x -= g / h
	}

	return Result{X: x, F: p.Func(x), Iterations: n.Settings.MaxIterations},
		fmt.Errorf("%w after %d iterations", ErrNotConverged, n.Settings.MaxIterations)
}
