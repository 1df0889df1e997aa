package curve

import "sort"

// Linear interpolates y at x over ascending xs, flat outside [xs[0], xs[n-1]].
func Linear(x float64, xs, ys []float64) (float64, error) {
	if err := checkNodes("Linear", xs, ys); err != nil {
		return 0, err
	}

	n := len(xs)
	if x <= xs[0] {
		return ys[0], nil
	}
	if x >= xs[n-1] {
		return ys[n-1], nil
	}

	i := upperIndex(x, xs)
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	return y0 + (x-x0)*(y1-y0)/(x1-x0), nil
}

// RateTime interpolates the product x*y linearly and divides by x. This is the
// discounting convention of ZeroCurve: it is not textbook zero-rate
// interpolation and must stay as is. Outside the node range it is flat in y.
func RateTime(x float64, xs, ys []float64) (float64, error) {
	if err := checkNodes("RateTime", xs, ys); err != nil {
		return 0, err
	}

	n := len(xs)
	if x <= xs[0] {
		return ys[0], nil
	}
	if x >= xs[n-1] {
		return ys[n-1], nil
	}

	i := upperIndex(x, xs)
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	xy := x0*y0 + (x-x0)*(x1*y1-x0*y0)/(x1-x0)
	return xy / x, nil
}

// upperIndex returns the smallest i with x < xs[i]. Callers guarantee
// xs[0] < x < xs[n-1], so 1 <= i <= n-1.
func upperIndex(x float64, xs []float64) int {
	return sort.Search(len(xs), func(i int) bool {
		return x < xs[i]
	})
}

func checkNodes(op string, xs, ys []float64) error {
	if len(xs) == 0 {
		return &DomainError{Op: op, Reason: "no interpolation nodes"}
	}
	if len(xs) != len(ys) {
		return &DomainError{Op: op, Reason: "xs and ys differ in length"}
	}
	return nil
}
