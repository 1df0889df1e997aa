package bond

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/meenmo/bondrisk/config"
	"github.com/meenmo/bondrisk/curve"
	"github.com/meenmo/bondrisk/logger"
)

// Bond is a fixed-coupon bond bound to a snapshot of its market curve.
// Terms and curve never change after construction; only the baseline
// price memo is written, once per evaluation date.
type Bond struct {
	terms Terms
	curve *curve.MarketCurve

	bootstrapper *curve.Bootstrapper
	bumpSize     float64
	workers      int
	log          *logger.Entry

	mu     sync.Mutex
	prices map[time.Time]float64
}

// New builds a Bond whose market curve is bootstrapped at the coupon frequency,
// using the active configuration.
func New(terms Terms, quotes map[float64]float64) (*Bond, error) {
	return NewWithConfig(terms, quotes, config.GetConfig())
}

// NewWithConfig is New with an explicit configuration.
func NewWithConfig(terms Terms, quotes map[float64]float64, c config.Config) (*Bond, error) {
	mc, err := curve.NewMarketCurve(quotes, terms.CouponFrequency)
	if err != nil {
		return nil, fmt.Errorf("bond.New: %w", err)
	}
	return NewFromCurve(terms, mc, c)
}

// NewFromCurve binds terms to an existing market curve, which must share the
// bond's coupon frequency.
func NewFromCurve(terms Terms, mc *curve.MarketCurve, c config.Config) (*Bond, error) {
	if err := terms.validate(); err != nil {
		return nil, err
	}
	if mc == nil {
		return nil, &curve.DomainError{Op: "bond.New", Reason: "market curve is required"}
	}
	if mc.Frequency() != terms.CouponFrequency {
		return nil, &curve.DomainError{
			Op:     "bond.New",
			Reason: fmt.Sprintf("curve frequency %d differs from coupon frequency %d", mc.Frequency(), terms.CouponFrequency),
		}
	}
	if !(c.Curve.BumpSize > 0) {
		return nil, fmt.Errorf("bond.New: bump size must be positive, got %g", c.Curve.BumpSize)
	}

	b, err := curve.NewBootstrapper(c)
	if err != nil {
		return nil, fmt.Errorf("bond.New: %w", err)
	}

	workers := c.Risk.Workers
	if workers < 1 {
		workers = 1
	}

	return &Bond{
		terms:        terms,
		curve:        mc,
		bootstrapper: b,
		bumpSize:     c.Curve.BumpSize,
		workers:      workers,
		log:          logger.GetLogger().WithComponent("bond"),
		prices:       make(map[time.Time]float64),
	}, nil
}

// Terms returns the contract terms.
func (b *Bond) Terms() Terms {
	return b.terms
}

// MarketCurve returns the bond's own market curve snapshot.
func (b *Bond) MarketCurve() *curve.MarketCurve {
	return b.curve
}

// BumpSize is the absolute shift applied by Delta.
func (b *Bond) BumpSize() float64 {
	return b.bumpSize
}

func (t Terms) validate() error {
	const op = "bond.New"

	if t.IssueDate.IsZero() || t.MaturityDate.IsZero() {
		return &curve.DomainError{Op: op, Reason: "issue and maturity dates are required"}
	}
	if !t.MaturityDate.After(t.IssueDate) {
		return &curve.DomainError{
			Op:     op,
			Reason: fmt.Sprintf("maturity %s must be after issue %s", t.MaturityDate.Format("2006-01-02"), t.IssueDate.Format("2006-01-02")),
		}
	}
	if math.IsNaN(t.CouponRate) || math.IsInf(t.CouponRate, 0) {
		return &curve.DomainError{Op: op, Reason: "coupon rate must be finite"}
	}
	if t.CouponFrequency < 1 || t.CouponFrequency > 12 {
		return &curve.DomainError{Op: op, Reason: fmt.Sprintf("coupon frequency %d must be between 1 and 12", t.CouponFrequency)}
	}
	if t.Direction != Forward && t.Direction != Backward {
		return &curve.DomainError{Op: op, Reason: fmt.Sprintf("unknown schedule direction %q", t.Direction)}
	}
	return nil
}

// periodMonths is the coupon period length in whole months, truncated when
// the frequency does not divide 12 (5 a year gives 2-month periods).
func (t Terms) periodMonths() int {
	return 12 / t.CouponFrequency
}
