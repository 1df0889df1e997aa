package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Gonum delegates to gonum's Newton method with a line search.
type Gonum struct {
	Settings Settings
}

// Minimize runs optimize.Minimize on the one-dimensional problem.
func (g *Gonum) Minimize(p Problem, x0 float64) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return p.Func(x[0])
		},
		Grad: func(grad, x []float64) {
			grad[0] = p.Grad(x[0])
		},
		Hess: func(hess *mat.SymDense, x []float64) {
			hess.SetSym(0, 0, p.Hess(x[0]))
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: g.Settings.GradientThreshold,
		MajorIterations:   g.Settings.MaxIterations,
	}

	res, err := optimize.Minimize(problem, []float64{x0}, settings, &optimize.Newton{})
	if err != nil {
		return Result{}, fmt.Errorf("%w: gonum: %v", ErrDegenerate, err)
	}
	if res == nil || len(res.X) != 1 || math.IsNaN(res.X[0]) {
		return Result{}, fmt.Errorf("%w: gonum returned no location", ErrDegenerate)
	}

	out := Result{X: res.X[0], F: res.F, Iterations: res.Stats.MajorIterations}
	if res.Status == optimize.IterationLimit {
		return out, fmt.Errorf("%w after %d iterations", ErrNotConverged, res.Stats.MajorIterations)
	}
	return out, nil
}
