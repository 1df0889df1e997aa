package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/bondrisk/utils"
)

// ErrNoQuotes is returned when a feed has nothing for the requested curve date.
var ErrNoQuotes = errors.New("no curve quotes for date")

// QuoteFeed supplies par-style market rates (tenor in years -> decimal rate)
// for a curve date.
type QuoteFeed interface {
	Quotes(ctx context.Context, curveDate time.Time) (map[float64]float64, error)
}

// MapFeed is a static map-backed implementation for development/testing,
// keyed by YYYY-MM-DD.
type MapFeed struct {
	curves map[string]map[float64]float64
}

func NewMapFeed(curves map[string]map[float64]float64) *MapFeed {
	return &MapFeed{curves: curves}
}

// Quotes returns a copy of the stored curve for curveDate.
func (m *MapFeed) Quotes(ctx context.Context, curveDate time.Time) (map[float64]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	day := curveDate.Format(utils.DateLayout)
	stored, ok := m.curves[day]
	if !ok || len(stored) == 0 {
		return nil, fmt.Errorf("MapFeed: %w %s", ErrNoQuotes, day)
	}
	out := make(map[float64]float64, len(stored))
	for tenor, rate := range stored {
		out[tenor] = rate
	}
	return out, nil
}
