package bond

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/bondrisk/logger"
)

// Delta is the symmetric bump-and-reprice sensitivity to one market tenor:
// (P(rate - bump) - P(rate + bump)) / 2. The tenor must be an exact curve key.
func (b *Bond) Delta(eval time.Time, tenor float64) (float64, error) {
	if !b.curve.Has(tenor) {
		return 0, &ArgumentError{Tenor: tenor, Available: b.curve.Tenors()}
	}

	down, err := b.curve.Bump(tenor, -b.bumpSize)
	if err != nil {
		return 0, fmt.Errorf("Delta: %w", err)
	}
	up, err := b.curve.Bump(tenor, b.bumpSize)
	if err != nil {
		return 0, fmt.Errorf("Delta: %w", err)
	}

	pDown, err := b.PriceWith(eval, down)
	if err != nil {
		return 0, fmt.Errorf("Delta: down bump at %g: %w", tenor, err)
	}
	pUp, err := b.PriceWith(eval, up)
	if err != nil {
		return 0, fmt.Errorf("Delta: up bump at %g: %w", tenor, err)
	}

	delta := (pDown - pUp) / 2
	if b.log != nil {
		b.log.WithFields(logger.Fields{
			"tenor":      tenor,
			"price_down": pDown,
			"price_up":   pUp,
			"delta":      delta,
		}).Debug("delta")
	}
	return delta, nil
}

// DeltaLadder computes Delta for every market tenor in ascending order.
// Tenors are independent and run on up to Risk.Workers goroutines; the first
// failure cancels the remaining tenors.
func (b *Bond) DeltaLadder(ctx context.Context, eval time.Time) ([]TenorDelta, error) {
	tenors := b.curve.Tenors()
	out := make([]TenorDelta, len(tenors))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, tenor := range tenors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := b.Delta(eval, tenor)
			if err != nil {
				return err
			}
			out[i] = TenorDelta{Tenor: tenor, Delta: d}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("DeltaLadder: %w", err)
	}
	return out, nil
}
