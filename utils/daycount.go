package utils

import (
	"time"
)

// YearFraction computes the Actual/365 Fixed year fraction between two dates.
// No business-day or holiday adjustment is applied.
func YearFraction(start, end time.Time) float64 {
	return Days(start, end) / 365.0
}
