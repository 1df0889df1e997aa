package marketdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/meenmo/bondrisk/curve"
)

// StandardTenors is the 3M..20Y pillar layout quoted by the spreadsheet host.
var StandardTenors = []float64{0.25, 0.5, 0.75, 1, 1.5, 2, 2.5, 3, 4, 5, 7, 10, 15, 20}

// StandardQuotes keys rates by StandardTenors, in order.
func StandardQuotes(rates ...float64) (map[float64]float64, error) {
	if len(rates) != len(StandardTenors) {
		return nil, fmt.Errorf("StandardQuotes: need %d rates (3M..20Y), got %d", len(StandardTenors), len(rates))
	}
	quotes := make(map[float64]float64, len(rates))
	for i, tenor := range StandardTenors {
		quotes[tenor] = rates[i]
	}
	return quotes, nil
}

// StandardCurve builds a market curve on StandardTenors.
func StandardCurve(frequency int, rates ...float64) (*curve.MarketCurve, error) {
	quotes, err := StandardQuotes(rates...)
	if err != nil {
		return nil, err
	}
	return curve.NewMarketCurve(quotes, frequency)
}

// ParseTenor converts tenor strings like "1W", "3M", "10Y" to year fractions.
// A bare number is read as years. Month tenors divide by 12 so 3M, 6M, 9M and
// 18M land exactly on the pillar keys above.
func ParseTenor(value string) (float64, error) {
	t := strings.ToUpper(strings.TrimSpace(value))
	if t == "" {
		return 0, fmt.Errorf("ParseTenor: empty tenor")
	}

	parseNum := func(s string) (float64, error) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("ParseTenor %q: %w", value, err)
		}
		return n, nil
	}

	var years float64
	switch {
	case strings.HasSuffix(t, "Y"):
		n, err := parseNum(strings.TrimSuffix(t, "Y"))
		if err != nil {
			return 0, err
		}
		years = n
	case strings.HasSuffix(t, "M"):
		n, err := parseNum(strings.TrimSuffix(t, "M"))
		if err != nil {
			return 0, err
		}
		years = n / 12.0
	case strings.HasSuffix(t, "W"):
		n, err := parseNum(strings.TrimSuffix(t, "W"))
		if err != nil {
			return 0, err
		}
		years = n * 7.0 / 365.0
	case strings.HasSuffix(t, "D"):
		n, err := parseNum(strings.TrimSuffix(t, "D"))
		if err != nil {
			return 0, err
		}
		years = n / 365.0
	default:
		n, err := parseNum(t)
		if err != nil {
			return 0, err
		}
		years = n
	}

	if !(years > 0) || math.IsInf(years, 0) {
		return 0, fmt.Errorf("ParseTenor %q: tenor must be positive", value)
	}
	return years, nil
}

// FormatTenor renders whole years as "NY" and whole months as "NM";
// anything else falls back to the year fraction.
func FormatTenor(years float64) string {
	if years >= 1 && years == math.Trunc(years) {
		return strconv.Itoa(int(years)) + "Y"
	}
	if m := years * 12; math.Abs(m-math.Round(m)) < 1e-9 && m >= 1 {
		return strconv.Itoa(int(math.Round(m))) + "M"
	}
	return strconv.FormatFloat(years, 'g', -1, 64)
}
