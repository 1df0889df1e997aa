package bond

import (
	"time"

	"github.com/meenmo/bondrisk/utils"
)

// Cashflows returns the bond's remaining cashflows seen from eval, ascending
// by year fraction. Payments on or before eval are dropped. Unit principal
// is added to the last surviving payment.
func (b *Bond) Cashflows(eval time.Time) []Cashflow {
	return b.terms.Cashflows(eval)
}

// Cashflows generates the schedule for t seen from eval. Coupons accrue
// CouponRate x ACT/365 over their own period.
func (t Terms) Cashflows(eval time.Time) []Cashflow {
	var periods [][2]time.Time
	switch t.Direction {
	case Backward:
		periods = t.backwardPeriods()
	default:
		periods = t.forwardPeriods()
	}

	out := make([]Cashflow, 0, len(periods))
	for _, p := range periods {
		start, pay := p[0], p[1]
		yf := utils.YearFraction(eval, pay)
		if yf <= 0 {
			continue
		}
		coupon := t.CouponRate * utils.YearFraction(start, pay)
		if n := len(out); n > 0 && out[n-1].YearFrac == yf {
			out[n-1].Coupon += coupon
			continue
		}
		out = append(out, Cashflow{Date: pay, YearFrac: yf, Coupon: coupon})
	}

	if n := len(out); n > 0 {
		out[n-1].Principal += 1
	}
	return out
}

// forwardPeriods anchors at issue: issue+k*period strictly before maturity,
// then a final (possibly short or long) period ending at maturity.
func (t Terms) forwardPeriods() [][2]time.Time {
	months := t.periodMonths()

	var periods [][2]time.Time
	prev := t.IssueDate
	for k := 1; ; k++ {
		d := utils.AddMonth(t.IssueDate, k*months)
		if !d.Before(t.MaturityDate) {
			break
		}
		periods = append(periods, [2]time.Time{prev, d})
		prev = d
	}
	return append(periods, [2]time.Time{prev, t.MaturityDate})
}

// backwardPeriods anchors at maturity: maturity-k*period strictly after issue.
// The earliest period starts at the issue date and is paid on the earliest
// schedule date, so a stub sits at the front.
func (t Terms) backwardPeriods() [][2]time.Time {
	months := t.periodMonths()

	dates := []time.Time{t.MaturityDate}
	for k := 1; ; k++ {
		d := utils.AddMonth(t.MaturityDate, -k*months)
		if !d.After(t.IssueDate) {
			break
		}
		dates = append(dates, d)
	}

	periods := make([][2]time.Time, len(dates))
	start := t.IssueDate
	for i := len(dates) - 1; i >= 0; i-- {
		periods[len(dates)-1-i] = [2]time.Time{start, dates[i]}
		start = dates[i]
	}
	return periods
}
