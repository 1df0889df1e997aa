package job

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind selects what a batch computes for each input.
type Kind string

const (
	KindPrice  Kind = "price"
	KindDelta  Kind = "delta"
	KindLadder Kind = "ladder"
	KindCurve  Kind = "curve"
)

// Input defines the JSON/YAML input schema shared by every subcommand.
//
// Conventions:
// - dates are YYYY-MM-DD
// - coupon_rate and curve_quotes rates are decimals (0.05 means 5%)
// - tenors use "3M"/"10Y" or a bare year count
type Input struct {
	TaskID          string  `json:"task_id,omitempty" yaml:"task_id"`
	EvaluationDate  string  `json:"evaluation_date" yaml:"evaluation_date"`
	IssueDate       string  `json:"issue_date" yaml:"issue_date"`
	MaturityDate    string  `json:"maturity_date" yaml:"maturity_date"`
	CouponRate      float64 `json:"coupon_rate" yaml:"coupon_rate"`
	CouponFrequency int     `json:"coupon_frequency" yaml:"coupon_frequency"`
	Direction       string  `json:"direction" yaml:"direction"` // "forward" or "backward"

	// Tenor is the bumped curve point for delta jobs.
	Tenor string `json:"tenor,omitempty" yaml:"tenor"`

	// CurveQuotes is optional when a quote feed is configured; the feed is
	// then asked for CurveDate, which defaults to EvaluationDate.
	CurveQuotes []Quote `json:"curve_quotes,omitempty" yaml:"curve_quotes"`
	CurveDate   string  `json:"curve_date,omitempty" yaml:"curve_date"`
}

type Quote struct {
	Tenor string  `json:"tenor" yaml:"tenor"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// Output is one result line. Numeric fields are pointers so a legitimate
// zero price is still printed.
type Output struct {
	TaskID           string   `json:"task_id,omitempty"`
	EvaluationDate   string   `json:"evaluation_date,omitempty"`
	Price            *float64 `json:"price,omitempty"`
	Yield            *float64 `json:"yield,omitempty"`
	ModifiedDuration *float64 `json:"modified_duration,omitempty"`
	Tenor            string   `json:"tenor,omitempty"`
	Delta            *float64 `json:"delta,omitempty"`
	Ladder           []Rung   `json:"ladder,omitempty"`
	Curve            []Node   `json:"curve,omitempty"`
	Error            string   `json:"error,omitempty"`
}

type Rung struct {
	Tenor string  `json:"tenor"`
	Years float64 `json:"years"`
	Delta float64 `json:"delta"`
}

type Node struct {
	YearFrac       float64 `json:"year_frac"`
	MarketRate     float64 `json:"market_rate"`
	DiscountFactor float64 `json:"discount_factor"`
	ZeroRate       float64 `json:"zero_rate"`
}

// Parse reads a single input or a list of inputs. JSON is detected by a
// leading '{' or '['; anything else is read as YAML. The bool reports
// whether the input was a list, so output mirrors its shape.
func Parse(raw []byte) ([]Input, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}

	switch trimmed[0] {
	case '[':
		var inputs []Input
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	case '{':
		var input Input
		if err := json.Unmarshal(trimmed, &input); err != nil {
			return nil, false, err
		}
		return []Input{input}, false, nil
	}

	return parseYAML(trimmed)
}

func parseYAML(raw []byte) ([]Input, bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var inputs []Input
		if err := root.Decode(&inputs); err != nil {
			return nil, true, fmt.Errorf("yaml: %w", err)
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	case yaml.MappingNode:
		var input Input
		if err := root.Decode(&input); err != nil {
			return nil, false, fmt.Errorf("yaml: %w", err)
		}
		return []Input{input}, false, nil
	default:
		return nil, false, fmt.Errorf("yaml: expected a mapping or a list, got %q", strings.TrimSpace(root.Value))
	}
}
