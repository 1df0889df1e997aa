package bond_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/bondrisk/bond"
	"github.com/meenmo/bondrisk/utils"
)

type wantFlow struct {
	date      string
	yearFrac  float64
	coupon    float64
	principal float64
}

func checkFlows(t *testing.T, got []bond.Cashflow, want []wantFlow) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("cashflow count: got %d want %d (%+v)", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if d := g.Date.Format(utils.DateLayout); d != w.date {
			t.Fatalf("cashflow %d date: got %s want %s", i, d, w.date)
		}
		if math.Abs(g.YearFrac-w.yearFrac) > 1e-15 {
			t.Fatalf("cashflow %d year fraction: got %.15f want %.15f", i, g.YearFrac, w.yearFrac)
		}
		if math.Abs(g.Coupon-w.coupon) > 1e-15 {
			t.Fatalf("cashflow %d coupon: got %.15f want %.15f", i, g.Coupon, w.coupon)
		}
		if g.Principal != w.principal {
			t.Fatalf("cashflow %d principal: got %g want %g", i, g.Principal, w.principal)
		}
	}
}

func stubTerms(dir bond.Direction) bond.Terms {
	return bond.Terms{
		IssueDate:       utils.MustParseDate("2021-01-15"),
		MaturityDate:    utils.MustParseDate("2022-03-15"),
		CouponRate:      0.05,
		CouponFrequency: 2,
		Direction:       dir,
	}
}

func TestCashflows_ForwardStubAtEnd(t *testing.T) {
	t.Parallel()

	terms := stubTerms(bond.Forward)
	got := terms.Cashflows(terms.IssueDate)
	checkFlows(t, got, []wantFlow{
		{"2021-07-15", 181.0 / 365, 0.05 * 181 / 365, 0},
		{"2022-01-15", 365.0 / 365, 0.05 * 184 / 365, 0},
		{"2022-03-15", 424.0 / 365, 0.05 * 59 / 365, 1},
	})
}

func TestCashflows_BackwardStubAtFront(t *testing.T) {
	t.Parallel()

	terms := stubTerms(bond.Backward)
	got := terms.Cashflows(terms.IssueDate)
	// The short first period accrues from issue and is paid on the first
	// schedule date; nothing is paid on the issue date itself.
	checkFlows(t, got, []wantFlow{
		{"2021-03-15", 59.0 / 365, 0.05 * 59 / 365, 0},
		{"2021-09-15", 243.0 / 365, 0.05 * 184 / 365, 0},
		{"2022-03-15", 424.0 / 365, 0.05 * 181 / 365, 1},
	})
	for i, cf := range got {
		if !(cf.Coupon > 0) {
			t.Fatalf("cashflow %d: coupon %g must be positive", i, cf.Coupon)
		}
	}
}

func TestCashflows_DropsPaidCoupons(t *testing.T) {
	t.Parallel()

	terms := stubTerms(bond.Forward)
	// The coupon paid on the evaluation date itself has year fraction 0.
	got := terms.Cashflows(utils.MustParseDate("2021-07-15"))
	checkFlows(t, got, []wantFlow{
		{"2022-01-15", 184.0 / 365, 0.05 * 184 / 365, 0},
		{"2022-03-15", 243.0 / 365, 0.05 * 59 / 365, 1},
	})

	if got := terms.Cashflows(utils.MustParseDate("2022-03-15")); len(got) != 0 {
		t.Fatalf("evaluated at maturity: expected empty schedule, got %+v", got)
	}
	if got := terms.Cashflows(utils.MustParseDate("2030-01-01")); len(got) != 0 {
		t.Fatalf("evaluated after maturity: expected empty schedule, got %+v", got)
	}
}

func TestCashflows_MonthEndAnchoring(t *testing.T) {
	t.Parallel()

	terms := bond.Terms{
		IssueDate:       utils.MustParseDate("2021-01-31"),
		MaturityDate:    utils.MustParseDate("2021-04-30"),
		CouponRate:      0.12,
		CouponFrequency: 12,
		Direction:       bond.Forward,
	}
	got := terms.Cashflows(terms.IssueDate)

	// Steps are taken from the issue date, so February's clamp does not leak into March.
	want := []string{"2021-02-28", "2021-03-31", "2021-04-30"}
	if len(got) != len(want) {
		t.Fatalf("cashflow count: got %d want %d", len(got), len(want))
	}
	for i, d := range want {
		if got[i].Date.Format(utils.DateLayout) != d {
			t.Fatalf("cashflow %d: got %s want %s", i, got[i].Date.Format(utils.DateLayout), d)
		}
	}
}

func TestCashflows_ShortBondSingleBackwardPeriod(t *testing.T) {
	t.Parallel()

	terms := bond.Terms{
		IssueDate:       utils.MustParseDate("2021-01-01"),
		MaturityDate:    utils.MustParseDate("2021-04-01"),
		CouponRate:      0.04,
		CouponFrequency: 2,
		Direction:       bond.Backward,
	}
	got := terms.Cashflows(terms.IssueDate)
	checkFlows(t, got, []wantFlow{
		{"2021-04-01", 90.0 / 365, 0.04 * 90 / 365, 1},
	})
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	cases := map[string]bond.Direction{
		"forward":   bond.Forward,
		" Backward": bond.Backward,
		"TRUE":      bond.Forward,
		"false":     bond.Backward,
	}
	for in, want := range cases {
		got, err := bond.ParseDirection(in)
		if err != nil || got != want {
			t.Fatalf("ParseDirection(%q): got %q, %v want %q", in, got, err, want)
		}
	}
	if _, err := bond.ParseDirection("sideways"); err == nil {
		t.Fatalf("ParseDirection(sideways): expected error")
	}
}

func TestCashflow_Amount(t *testing.T) {
	t.Parallel()

	cf := bond.Cashflow{Date: time.Now(), Coupon: 0.025, Principal: 1}
	if math.Abs(cf.Amount()-1.025) > 1e-15 {
		t.Fatalf("Amount: got %v want 1.025", cf.Amount())
	}
}

func TestCashflows_NonUTCDatesCountWholeDays(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	terms := bond.Terms{
		IssueDate:       time.Date(2021, 3, 1, 0, 0, 0, 0, ny),
		MaturityDate:    time.Date(2023, 3, 1, 0, 0, 0, 0, ny),
		CouponRate:      0.05,
		CouponFrequency: 2,
		Direction:       bond.Forward,
	}
	got := terms.Cashflows(terms.IssueDate)
	if len(got) != 4 {
		t.Fatalf("cashflow count: got %d want 4", len(got))
	}

	// 2021-03-01 -> 2021-09-01 spans the March DST change; 09-01 -> 03-01 the November one.
	if d := got[0].YearFrac * 365; math.Abs(d-184) > 1e-9 {
		t.Fatalf("first year fraction in days: got %.6f want 184", d)
	}
	if d := got[1].Coupon * 365 / 0.05; math.Abs(d-181) > 1e-9 {
		t.Fatalf("second accrual in days: got %.6f want 181", d)
	}

	utcTerms := terms
	utcTerms.IssueDate = utils.MustParseDate("2021-03-01")
	utcTerms.MaturityDate = utils.MustParseDate("2023-03-01")
	for i, cf := range utcTerms.Cashflows(utcTerms.IssueDate) {
		if cf.YearFrac != got[i].YearFrac || cf.Coupon != got[i].Coupon {
			t.Fatalf("cashflow %d differs from UTC schedule: %+v vs %+v", i, got[i], cf)
		}
	}
}

func TestCashflows_FrequencyNotDividingTwelve(t *testing.T) {
	t.Parallel()

	terms := bond.Terms{
		IssueDate:       utils.MustParseDate("2021-01-15"),
		MaturityDate:    utils.MustParseDate("2021-07-15"),
		CouponRate:      0.05,
		CouponFrequency: 5,
		Direction:       bond.Forward,
	}
	got := terms.Cashflows(terms.IssueDate)

	want := []string{"2021-03-15", "2021-05-15", "2021-07-15"}
	if len(got) != len(want) {
		t.Fatalf("cashflow count: got %d want %d", len(got), len(want))
	}
	for i, d := range want {
		if got[i].Date.Format(utils.DateLayout) != d {
			t.Fatalf("cashflow %d: got %s want %s", i, got[i].Date.Format(utils.DateLayout), d)
		}
	}
}
