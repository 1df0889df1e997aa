package bond_test

import (
	"math"
	"testing"

	"github.com/meenmo/bondrisk/bond"
	"github.com/meenmo/bondrisk/solver"
	"github.com/meenmo/bondrisk/utils"
)

func TestYield_RepricesModelPrice(t *testing.T) {
	t.Parallel()

	b := newBond(t, scenarioTerms(bond.Backward), scenarioQuotes, solver.BackendGonum)
	eval := utils.MustParseDate("2021-03-01")

	res, err := b.Yield(eval)
	if err != nil {
		t.Fatalf("Yield: %v", err)
	}
	price, _ := b.Price(eval)
	if math.Abs(res.Price-price) > 1e-10 {
		t.Fatalf("yield does not reprice: %.12f vs %.12f", res.Price, price)
	}
	// Year fractions are whole years here, so the yield is the IRR of the two flows.
	y := res.Yield
	if got := 0.05/(1+y) + 1.05/((1+y)*(1+y)); math.Abs(got-price) > 1e-10 {
		t.Fatalf("IRR check: got %.12f want %.12f", got, price)
	}
	if !(y > 0.03 && y < 0.04) {
		t.Fatalf("yield %.6f should sit between the 1y and 2y rates", y)
	}
	if !(res.ModifiedDuration > 1.5 && res.ModifiedDuration < 2) {
		t.Fatalf("modified duration: got %.6f", res.ModifiedDuration)
	}
}

func TestYieldFromPrice_Par(t *testing.T) {
	t.Parallel()

	cfs := []bond.Cashflow{
		{YearFrac: 1, Coupon: 0.06},
		{YearFrac: 2, Coupon: 0.06},
		{YearFrac: 3, Coupon: 0.06, Principal: 1},
	}
	res, err := bond.YieldFromPrice(cfs, 1)
	if err != nil {
		t.Fatalf("YieldFromPrice: %v", err)
	}
	if math.Abs(res.Yield-0.06) > 1e-10 {
		t.Fatalf("par yield: got %.12f want 0.06", res.Yield)
	}
	if res.Iterations < 1 {
		t.Fatalf("iterations: got %d", res.Iterations)
	}
}

func TestYieldFromPrice_Rejects(t *testing.T) {
	t.Parallel()

	one := []bond.Cashflow{{YearFrac: 1, Coupon: 0.05, Principal: 1}}
	if _, err := bond.YieldFromPrice(one, 1); err == nil {
		t.Fatalf("single cashflow: expected error")
	}
	two := append(one, bond.Cashflow{YearFrac: 2, Principal: 1})
	if _, err := bond.YieldFromPrice(two, 0); err == nil {
		t.Fatalf("zero price: expected error")
	}
	// A price far above the undiscounted cashflows needs a yield below the floor.
	if _, err := bond.YieldFromPrice(two, 50); err == nil {
		t.Fatalf("unreachable price: expected error")
	}
}
