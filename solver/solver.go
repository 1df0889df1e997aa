// Package solver minimizes one-dimensional objectives for the curve bootstrap.
//
// The bootstrap states each grid point as a minimization problem; the algorithm
// that solves it is pluggable. Gonum delegates to gonum's optimize package,
// Newton is a small bounded Newton iteration kept for environments that want
// no external optimizer in the loop.
package solver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConverged is returned when the iteration budget is exhausted.
	ErrNotConverged = errors.New("solver: did not converge")
	// ErrDegenerate is returned when the objective has no usable curvature.
	ErrDegenerate = errors.New("solver: degenerate problem")
)

// Backend names accepted by New.
const (
	BackendGonum  = "gonum"
	BackendNewton = "newton"
)

// Problem is a scalar objective with analytic first and second derivatives.
type Problem struct {
	Func func(x float64) float64
	Grad func(x float64) float64
	Hess func(x float64) float64
}

// Result is the minimizer location.
type Result struct {
	X          float64
	F          float64
	Iterations int
}

// Minimizer finds a local minimum of p starting from x0.
type Minimizer interface {
	Minimize(p Problem, x0 float64) (Result, error)
}

// Settings bound the work a minimizer may do.
type Settings struct {
	GradientThreshold float64
	MaxIterations     int
}

// DefaultSettings mirror the solver section of config.DefaultConfig.
var DefaultSettings = Settings{
	GradientThreshold: 1e-14,
	MaxIterations:     100,
}

// New returns the minimizer registered under backend.
func New(backend string, s Settings) (Minimizer, error) {
	if s.MaxIterations <= 0 {
		return nil, fmt.Errorf("solver.New: MaxIterations must be positive, got %d", s.MaxIterations)
	}
	if s.GradientThreshold <= 0 {
		return nil, fmt.Errorf("solver.New: GradientThreshold must be positive, got %g", s.GradientThreshold)
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendGonum, "":
		return &Gonum{Settings: s}, nil
	case BackendNewton:
		return &Newton{Settings: s}, nil
	default:
		return nil, fmt.Errorf("solver.New: unknown backend %q", backend)
	}
}

func (p Problem) validate() error {
	if p.Func == nil || p.Grad == nil || p.Hess == nil {
		return fmt.Errorf("%w: Func, Grad and Hess are required", ErrDegenerate)
	}
	return nil
}
