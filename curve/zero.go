package curve

import (
	"math"
)

// ZeroCurve holds annually compounded zero rates by year fraction.
type ZeroCurve struct {
	nodes []Node
	xs    []float64
	ys    []float64
}

func newZeroCurve(nodes []Node) *ZeroCurve {
	z := &ZeroCurve{
		nodes: nodes,
		xs:    make([]float64, len(nodes)),
		ys:    make([]float64, len(nodes)),
	}
	for i, n := range nodes {
		z.xs[i] = n.YearFrac
		z.ys[i] = n.ZeroRate
	}
	return z
}

// NewZeroCurve wraps externally supplied (year fraction, zero rate) points.
// Year fractions must be positive and strictly increasing.
func NewZeroCurve(yearFracs, zeroRates []float64) (*ZeroCurve, error) {
	const op = "NewZeroCurve"

	if len(yearFracs) == 0 {
		return nil, &DomainError{Op: op, Reason: "empty zero curve"}
	}
	if len(yearFracs) != len(zeroRates) {
		return nil, &DomainError{Op: op, Reason: "year fractions and zero rates differ in length"}
	}

	nodes := make([]Node, len(yearFracs))
	for i, t := range yearFracs {
		if !(t > 0) || math.IsInf(t, 0) {
			return nil, &DomainError{Op: op, Tenor: t, Reason: "year fraction must be positive and finite"}
		}
		if i > 0 && t <= yearFracs[i-1] {
			return nil, &DomainError{Op: op, Tenor: t, Reason: "year fractions must strictly increase"}
		}
		z := zeroRates[i]
		if math.IsNaN(z) || math.IsInf(z, 0) || z <= -1 {
			return nil, &DomainError{Op: op, Tenor: t, Reason: "zero rate must be finite and above -100%"}
		}
		nodes[i] = Node{
			YearFrac:       t,
			DiscountFactor: 1 / math.Pow(1+z, t),
			ZeroRate:       z,
		}
	}
	return newZeroCurve(nodes), nil
}

// ZeroRate returns the effective zero rate at t under rate-times-time interpolation.
func (z *ZeroCurve) ZeroRate(t float64) float64 {
	// Construction guarantees at least one node.
	y, _ := RateTime(t, z.xs, z.ys)
	return y
}

// DiscountFactor returns 1/(1+r(t))^t with r from ZeroRate.
func (z *ZeroCurve) DiscountFactor(t float64) float64 {
	return 1 / math.Pow(1+z.ZeroRate(t), t)
}

// Len returns the number of grid nodes.
func (z *ZeroCurve) Len() int {
	return len(z.nodes)
}

// Nodes returns a copy of the grid nodes, for diagnostics.
func (z *ZeroCurve) Nodes() []Node {
	out := make([]Node, len(z.nodes))
	copy(out, z.nodes)
	return out
}
