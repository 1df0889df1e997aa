package bond

import (
	"fmt"
	"strings"
	"time"
)

// Direction selects which end of the bond anchors the coupon schedule.
type Direction string

const (
	// Forward steps coupon dates out from the issue date; any stub is the last period.
	Forward Direction = "forward"
	// Backward steps coupon dates back from maturity; any stub is the first period.
	Backward Direction = "backward"
)

// ParseDirection accepts "forward"/"backward" (case-insensitive) and the
// boolean spellings used by spreadsheet hosts ("true" means forward).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "fwd", "true":
		return Forward, nil
	case "backward", "bwd", "false":
		return Backward, nil
	default:
		return "", fmt.Errorf("ParseDirection: unknown schedule direction %q", s)
	}
}

// Terms are the static contract terms of a fixed-coupon bullet bond with unit face.
type Terms struct {
	IssueDate    time.Time
	MaturityDate time.Time
	// CouponRate is annual, in decimal (0.05 == 5%).
	CouponRate float64
	// CouponFrequency is coupons per year, 1 to 12.
	CouponFrequency int
	Direction       Direction
}

// Cashflow is a single dated payment of a unit-face bond.
type Cashflow struct {
	Date time.Time
	// YearFrac is ACT/365 from the evaluation date to Date; always > 0.
	YearFrac  float64
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// TenorDelta is one rung of a delta ladder.
type TenorDelta struct {
	Tenor float64
	Delta float64
}
