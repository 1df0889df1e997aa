package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/bondrisk/config"
	"github.com/meenmo/bondrisk/logger"
	"github.com/meenmo/bondrisk/solver"
)

// Node is one fine-grid point of a bootstrapped curve.
type Node struct {
	YearFrac       float64
	MarketRate     float64 // interpolated annual market rate
	CouponRate     float64 // MarketRate / frequency, paid per period
	DiscountFactor float64
	ZeroRate       float64 // annually compounded
}

// Bootstrapper turns market rates into a zero curve on a uniform grid of
// spacing 1/frequency, solving each grid point's discount factor so the
// synthetic par bond maturing there prices at exactly 1.
type Bootstrapper struct {
	// Horizon is the last grid year fraction (inclusive).
	Horizon float64
	// Tolerance is the largest accepted |par price - 1| per point.
	Tolerance float64
	Solver    solver.Minimizer

	log *logger.Entry
}

// NewBootstrapper builds a Bootstrapper from the curve and solver sections of c.
func NewBootstrapper(c config.Config) (*Bootstrapper, error) {
	m, err := solver.New(c.Solver.Backend, solver.Settings{
		GradientThreshold: c.Solver.GradientThreshold,
		MaxIterations:     c.Solver.MaxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("NewBootstrapper: %w", err)
	}
	if c.Curve.Horizon <= 0 {
		return nil, fmt.Errorf("NewBootstrapper: horizon must be positive, got %g", c.Curve.Horizon)
	}
	return &Bootstrapper{
		Horizon:   c.Curve.Horizon,
		Tolerance: c.Solver.Tolerance,
		Solver:    m,
		log:       logger.GetLogger().WithComponent("curve"),
	}, nil
}

// Default returns a Bootstrapper for the active configuration.
func Default() (*Bootstrapper, error) {
	return NewBootstrapper(config.GetConfig())
}

// Bootstrap builds a zero curve from mc with the default Bootstrapper.
func Bootstrap(mc *MarketCurve) (*ZeroCurve, error) {
	b, err := Default()
	if err != nil {
		return nil, err
	}
	return b.Build(mc)
}

// Grid returns the fine grid with interpolated market and coupon rates;
// discount factors and zero rates are left unset.
func (b *Bootstrapper) Grid(mc *MarketCurve) ([]Node, error) {
	if mc == nil || mc.Len() == 0 {
		return nil, &DomainError{Op: "Grid", Reason: "empty market curve"}
	}

	freq := float64(mc.Frequency())
	// Year fractions come from the index, not by accumulating 1/freq.
	count := int(math.Floor(b.Horizon*freq + 1e-9))
	if count < 1 {
		return nil, &DomainError{Op: "Grid", Reason: fmt.Sprintf("horizon %g shorter than grid spacing 1/%d", b.Horizon, mc.Frequency())}
	}

	nodes := make([]Node, count)
	for i := range nodes {
		t := float64(i+1) / freq
		rate := mc.RateAt(t)
		nodes[i] = Node{
			YearFrac:   t,
			MarketRate: rate,
			CouponRate: rate / freq,
		}
	}
	return nodes, nil
}

// Build bootstraps mc. Grid points are solved strictly in order: point i
// depends on the sum of every discount factor before it.
func (b *Bootstrapper) Build(mc *MarketCurve) (*ZeroCurve, error) {
	if b.Solver == nil {
		return nil, fmt.Errorf("Build: %w: no minimizer configured", ErrBootstrap)
	}
	started := time.Now()

	nodes, err := b.Grid(mc)
	if err != nil {
		return nil, err
	}

	solved := 0.0
	for i := range nodes {
		df, err := b.solvePoint(nodes[i].CouponRate, solved)
		if err != nil {
			return nil, &BootstrapError{
				Index:      i,
				YearFrac:   nodes[i].YearFrac,
				MarketRate: nodes[i].MarketRate,
				Err:        err,
			}
		}
		nodes[i].DiscountFactor = df
		nodes[i].ZeroRate = math.Pow(1/df, 1/nodes[i].YearFrac) - 1
		solved += df
	}

	if b.log != nil {
		logger.LogDuration(b.log, "bootstrap", started, logger.Fields{
			"grid_points": len(nodes),
			"frequency":   mc.Frequency(),
			"tenors":      mc.Len(),
		})
	}
	return newZeroCurve(nodes), nil
}

// solvePoint minimizes (coupon*solved + (1+coupon)*df - 1)^2 from df = 1.
func (b *Bootstrapper) solvePoint(coupon, solved float64) (float64, error) {
	par := func(df float64) float64 {
		return coupon*solved + (1+coupon)*df
	}
	problem := solver.Problem{
		Func: func(df float64) float64 {
			r := par(df) - 1
			return r * r
		},
		Grad: func(df float64) float64 {
			return 2 * (par(df) - 1) * (1 + coupon)
		},
		Hess: func(float64) float64 {
			return 2 * (1 + coupon) * (1 + coupon)
		},
	}

	res, err := b.Solver.Minimize(problem, 1.0)
	if err != nil {
		return 0, err
	}

	df := res.X
	if math.IsNaN(df) || math.IsInf(df, 0) || df <= 0 {
		return 0, fmt.Errorf("%w: solver returned df=%g", ErrInfeasible, df)
	}
	if r := math.Abs(par(df) - 1); r > b.Tolerance {
		return 0, fmt.Errorf("%w: |%.3g| > %.3g", ErrResidual, r, b.Tolerance)
	}
	return df, nil
}
