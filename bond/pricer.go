package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/bondrisk/curve"
	"github.com/meenmo/bondrisk/logger"
)

// Price values the bond against its own market curve. The first successful
// result per evaluation date is memoized; later calls return it unchanged.
func (b *Bond) Price(eval time.Time) (float64, error) {
	key := eval.UTC()

	b.mu.Lock()
	p, ok := b.prices[key]
	b.mu.Unlock()
	if ok {
		return p, nil
	}

	p, err := b.PriceWith(eval, b.curve)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.prices[key]; ok {
		return cached, nil
	}
	b.prices[key] = p
	return p, nil
}

// PriceWith values the bond against mc, bootstrapping a fresh zero curve.
// It never reads or writes the Price memo.
//
// A schedule with exactly one remaining cashflow prices at 0.
func (b *Bond) PriceWith(eval time.Time, mc *curve.MarketCurve) (float64, error) {
	if mc == nil {
		return 0, &curve.DomainError{Op: "PriceWith", Reason: "market curve is required"}
	}

	cfs := b.Cashflows(eval)
	if len(cfs) == 1 {
		return 0, nil
	}

	started := time.Now()
	zc, err := b.bootstrapper.Build(mc)
	if err != nil {
		return 0, fmt.Errorf("PriceWith: %w", err)
	}

	price := Discount(cfs, zc)
	if b.log != nil {
		logger.LogDuration(b.log, "price", started, logger.Fields{
			"eval_date": eval.Format("2006-01-02"),
			"cashflows": len(cfs),
			"price":     price,
		})
	}
	return price, nil
}

// Discount sums amount x DF(yearFrac) over cfs.
func Discount(cfs []Cashflow, zc *curve.ZeroCurve) float64 {
	pv := 0.0
	for _, cf := range cfs {
		pv += cf.Amount() * zc.DiscountFactor(cf.YearFrac)
	}
	return pv
}
