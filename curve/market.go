package curve

import (
	"math"
	"sort"
)

// MarketPoint is one quoted par-style rate. Tenor is in years, Rate is a decimal annual rate.
type MarketPoint struct {
	Tenor float64
	Rate  float64
}

// MarketCurve is an immutable, tenor-ascending set of market rates together
// with the coupon frequency that sets its bootstrap grid spacing.
type MarketCurve struct {
	tenors    []float64
	rates     []float64
	frequency int
}

// NewMarketCurve builds a curve from a tenor -> rate map.
func NewMarketCurve(quotes map[float64]float64, frequency int) (*MarketCurve, error) {
	points := make([]MarketPoint, 0, len(quotes))
	for tenor, rate := range quotes {
		points = append(points, MarketPoint{Tenor: tenor, Rate: rate})
	}
	return NewMarketCurveFromPoints(points, frequency)
}

// NewMarketCurveFromPoints sorts points by tenor and validates them.
func NewMarketCurveFromPoints(points []MarketPoint, frequency int) (*MarketCurve, error) {
	const op = "NewMarketCurve"

	if frequency < 1 {
		return nil, &DomainError{Op: op, Reason: "coupon frequency must be >= 1"}
	}
	if len(points) == 0 {
		return nil, &DomainError{Op: op, Reason: "empty market curve"}
	}

	sorted := make([]MarketPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Tenor < sorted[j].Tenor
	})

	c := &MarketCurve{
		tenors:    make([]float64, len(sorted)),
		rates:     make([]float64, len(sorted)),
		frequency: frequency,
	}
	for i, p := range sorted {
		if math.IsNaN(p.Tenor) || math.IsInf(p.Tenor, 0) || p.Tenor <= 0 {
			return nil, &DomainError{Op: op, Tenor: p.Tenor, Reason: "tenor must be positive and finite"}
		}
		if math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0) {
			return nil, &DomainError{Op: op, Tenor: p.Tenor, Reason: "rate must be finite"}
		}
		if i > 0 && p.Tenor == sorted[i-1].Tenor {
			return nil, &DomainError{Op: op, Tenor: p.Tenor, Reason: "duplicate tenor"}
		}
		c.tenors[i] = p.Tenor
		c.rates[i] = p.Rate
	}
	return c, nil
}

// Frequency returns the coupon frequency the curve bootstraps on.
func (c *MarketCurve) Frequency() int {
	return c.frequency
}

// Len returns the number of quoted tenors.
func (c *MarketCurve) Len() int {
	return len(c.tenors)
}

// Tenors returns a copy of the ascending tenors.
func (c *MarketCurve) Tenors() []float64 {
	out := make([]float64, len(c.tenors))
	copy(out, c.tenors)
	return out
}

// Rates returns a copy of the rates in tenor order.
func (c *MarketCurve) Rates() []float64 {
	out := make([]float64, len(c.rates))
	copy(out, c.rates)
	return out
}

// Points returns the curve as MarketPoints in tenor order.
func (c *MarketCurve) Points() []MarketPoint {
	out := make([]MarketPoint, len(c.tenors))
	for i := range c.tenors {
		out[i] = MarketPoint{Tenor: c.tenors[i], Rate: c.rates[i]}
	}
	return out
}

// Rate returns the quoted rate at an exact tenor.
func (c *MarketCurve) Rate(tenor float64) (float64, bool) {
	i := c.index(tenor)
	if i < 0 {
		return 0, false
	}
	return c.rates[i], true
}

// Has reports whether tenor is an exact key of the curve.
func (c *MarketCurve) Has(tenor float64) bool {
	return c.index(tenor) >= 0
}

// RateAt interpolates the market rate at t, flat outside the quoted range.
func (c *MarketCurve) RateAt(t float64) float64 {
	// Construction guarantees at least one node.
	y, _ := Linear(t, c.tenors, c.rates)
	return y
}

// WithRate returns a copy of the curve with the rate at tenor replaced.
func (c *MarketCurve) WithRate(tenor, rate float64) (*MarketCurve, error) {
	i := c.index(tenor)
	if i < 0 {
		return nil, &DomainError{Op: "WithRate", Tenor: tenor, Reason: "tenor not on curve"}
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, &DomainError{Op: "WithRate", Tenor: tenor, Reason: "rate must be finite"}
	}

	out := &MarketCurve{
		tenors:    c.Tenors(),
		rates:     c.Rates(),
		frequency: c.frequency,
	}
	out.rates[i] = rate
	return out, nil
}

// Bump returns a copy of the curve with shift added to the rate at tenor.
func (c *MarketCurve) Bump(tenor, shift float64) (*MarketCurve, error) {
	r, ok := c.Rate(tenor)
	if !ok {
		return nil, &DomainError{Op: "Bump", Tenor: tenor, Reason: "tenor not on curve"}
	}
	return c.WithRate(tenor, r+shift)
}

func (c *MarketCurve) index(tenor float64) int {
	i := sort.SearchFloat64s(c.tenors, tenor)
	if i < len(c.tenors) && c.tenors[i] == tenor {
		return i
	}
	return -1
}
