package bond

import (
	"fmt"
	"math"
	"time"
)

// YieldResult is the output of Yield and YieldFromPrice.
type YieldResult struct {
	// Yield is the flat annually compounded yield, in decimal.
	Yield float64
	// Price is the dirty price the yield reprices (per unit face).
	Price float64
	// ModifiedDuration is -(dP/dy)/P at Yield.
	ModifiedDuration float64
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
}

// Yield solves the flat yield that reprices the bond's remaining cashflows to
// its curve-implied price at eval.
func (b *Bond) Yield(eval time.Time) (YieldResult, error) {
	price, err := b.Price(eval)
	if err != nil {
		return YieldResult{}, fmt.Errorf("Yield: %w", err)
	}
	return YieldFromPrice(b.Cashflows(eval), price)
}

// YieldFromPrice solves y such that sum(amount / (1+y)^yearFrac) equals target.
//
// The solver uses Newton-Raphson with analytic first derivative.
func YieldFromPrice(cfs []Cashflow, target float64) (YieldResult, error) {
	if len(cfs) < 2 {
		return YieldResult{}, fmt.Errorf("YieldFromPrice: need at least two remaining cashflows, got %d", len(cfs))
	}
	if !(target > 0) || math.IsInf(target, 0) {
		return YieldResult{}, fmt.Errorf("YieldFromPrice: price must be positive, got %g", target)
	}

	y, iterations, err := solveYield(target, cfs)
	if err != nil {
		return YieldResult{}, err
	}

	price, dPdy := priceAndDeriv(y, cfs)
	return YieldResult{
		Yield:            y,
		Price:            price,
		ModifiedDuration: -dPdy / price,
		Iterations:       iterations,
	}, nil
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver (unexported)
// ---------------------------------------------------------------------------

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.05
	yieldCeiling   = 0.50
)

// solveYield finds y such that price(y) == target via Newton-Raphson.
func solveYield(target float64, cfs []Cashflow) (float64, int, error) {
	// Initial guess: mid-range (2.5 %).
	y := 0.025
	y = clamp(y, yieldFloor, yieldCeiling)

	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy := priceAndDeriv(y, cfs)
		f := price - target

		if math.Abs(f) < yieldTolerance {
			return y, iter + 1, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return y, iter + 1, fmt.Errorf("YieldFromPrice: derivative too small at iter %d", iter)
		}

		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}

	return y, yieldMaxIter, fmt.Errorf("YieldFromPrice: did not converge after %d iterations", yieldMaxIter)
}

// priceAndDeriv returns (price, dPrice/dy) with ACT/365 year fractions:
//
//	price = Σ CF_k / (1+y)^t_k
//	dP/dy = Σ −t_k · CF_k / (1+y)^(t_k+1)
func priceAndDeriv(y float64, cfs []Cashflow) (float64, float64) {
	var price, deriv float64
	for _, cf := range cfs {
		t := cf.YearFrac
		amt := cf.Amount()
		price += amt / math.Pow(1.0+y, t)
		deriv += -t * amt / math.Pow(1.0+y, t+1)
	}
	return price, deriv
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
