package job

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/meenmo/bondrisk/config"
	"github.com/meenmo/bondrisk/marketdata"
)

func scenarioInput() Input {
	return Input{
		TaskID:          "scenario",
		EvaluationDate:  "2021-03-01",
		IssueDate:       "2021-03-01",
		MaturityDate:    "2023-03-01",
		CouponRate:      0.05,
		CouponFrequency: 1,
		Direction:       "backward",
		CurveQuotes:     []Quote{{Tenor: "1Y", Rate: 0.03}, {Tenor: "2Y", Rate: 0.04}},
	}
}

func TestParse_Shapes(t *testing.T) {
	t.Parallel()

	single := `{"task_id":"a","evaluation_date":"2021-03-01","curve_quotes":[{"tenor":"1Y","rate":0.03}]}`
	inputs, isArray, err := Parse([]byte(single))
	if err != nil || isArray || len(inputs) != 1 || inputs[0].TaskID != "a" || inputs[0].CurveQuotes[0].Rate != 0.03 {
		t.Fatalf("json object: got %+v, %v, %v", inputs, isArray, err)
	}

	inputs, isArray, err = Parse([]byte(" [" + single + "," + single + "]\n"))
	if err != nil || !isArray || len(inputs) != 2 {
		t.Fatalf("json array: got %d, %v, %v", len(inputs), isArray, err)
	}

	yamlList := `
- task_id: y1
  evaluation_date: "2021-03-01"
  coupon_frequency: 2
  curve_quotes:
    - {tenor: 3M, rate: 0.031}
- task_id: y2
`
	inputs, isArray, err = Parse([]byte(yamlList))
	if err != nil || !isArray || len(inputs) != 2 {
		t.Fatalf("yaml list: got %+v, %v, %v", inputs, isArray, err)
	}
	if inputs[0].CouponFrequency != 2 || inputs[0].CurveQuotes[0].Tenor != "3M" {
		t.Fatalf("yaml fields: got %+v", inputs[0])
	}

	inputs, isArray, err = Parse([]byte("task_id: m\ndirection: forward\n"))
	if err != nil || isArray || inputs[0].Direction != "forward" {
		t.Fatalf("yaml mapping: got %+v, %v, %v", inputs, isArray, err)
	}

	for _, bad := range []string{"", "   ", "[]", "just a string", "{not json"} {
		if _, _, err := Parse([]byte(bad)); err == nil {
			t.Fatalf("Parse(%q): expected error", bad)
		}
	}
}

func TestRun_PriceScenario(t *testing.T) {
	t.Parallel()

	r := NewRunner(config.DefaultConfig, nil)
	outputs, hadError, err := r.Run(context.Background(), KindPrice, []Input{scenarioInput()})
	if err != nil || hadError {
		t.Fatalf("Run: hadError=%v err=%v outputs=%+v", hadError, err, outputs)
	}

	out := outputs[0]
	if out.TaskID != "scenario" || out.Price == nil {
		t.Fatalf("output: %+v", out)
	}
	if math.Abs(*out.Price-1.018951) > 1e-6 {
		t.Fatalf("price: got %.9f want 1.018951", *out.Price)
	}
	if out.Yield == nil || out.ModifiedDuration == nil {
		t.Fatalf("expected yield and duration: %+v", out)
	}

	r.Precision = 6
	outputs, _, _ = r.Run(context.Background(), KindPrice, []Input{scenarioInput()})
	if got := *outputs[0].Price; got != 1.018951 {
		t.Fatalf("rounded price: got %v want 1.018951", got)
	}
}

func TestRun_DeltaAndLadder(t *testing.T) {
	t.Parallel()

	r := NewRunner(config.DefaultConfig, nil)
	in := scenarioInput()
	in.Tenor = "24M"

	outputs, hadError, err := r.Run(context.Background(), KindDelta, []Input{in})
	if err != nil || hadError {
		t.Fatalf("delta: %+v, %v", outputs, err)
	}
	if outputs[0].Tenor != "2Y" || outputs[0].Delta == nil || !(*outputs[0].Delta > 0) {
		t.Fatalf("delta output: %+v", outputs[0])
	}

	outputs, hadError, err = r.Run(context.Background(), KindLadder, []Input{scenarioInput()})
	if err != nil || hadError {
		t.Fatalf("ladder: %+v, %v", outputs, err)
	}
	ladder := outputs[0].Ladder
	if len(ladder) != 2 || ladder[0].Tenor != "1Y" || ladder[1].Tenor != "2Y" {
		t.Fatalf("ladder: %+v", ladder)
	}
	if ladder[1].Delta != *outputsDelta(t, r, "2Y") {
		t.Fatalf("ladder rung differs from single delta: %+v", ladder[1])
	}
}

func outputsDelta(t *testing.T, r *Runner, tenor string) *float64 {
	t.Helper()

	in := scenarioInput()
	in.Tenor = tenor
	outputs, _, err := r.Run(context.Background(), KindDelta, []Input{in})
	if err != nil || outputs[0].Delta == nil {
		t.Fatalf("delta %s: %+v, %v", tenor, outputs, err)
	}
	return outputs[0].Delta
}

func TestRun_PerInputErrors(t *testing.T) {
	t.Parallel()

	r := NewRunner(config.DefaultConfig, nil)

	noTenor := scenarioInput()
	badTenor := scenarioInput()
	badTenor.Tenor = "18M"
	noDate := scenarioInput()
	noDate.EvaluationDate = ""
	noQuotes := scenarioInput()
	noQuotes.CurveQuotes = nil
	noQuotes.TaskID = ""

	outputs, hadError, err := r.Run(context.Background(), KindDelta, []Input{noTenor, badTenor, noDate, noQuotes})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !hadError {
		t.Fatalf("expected hadError")
	}
	wants := []string{"tenor is required", "not a market curve point", "evaluation_date is required", "curve_quotes are required"}
	for i, want := range wants {
		if !strings.Contains(outputs[i].Error, want) {
			t.Fatalf("output %d: error %q does not mention %q", i, outputs[i].Error, want)
		}
	}
	if _, err := uuid.Parse(outputs[3].TaskID); err != nil {
		t.Fatalf("missing task_id should be replaced by a uuid, got %q", outputs[3].TaskID)
	}
}

func TestRun_FeedFallback(t *testing.T) {
	t.Parallel()

	feed := marketdata.NewMapFeed(map[string]map[float64]float64{
		"2021-02-26": {1: 0.03, 2: 0.04},
	})
	r := NewRunner(config.DefaultConfig, feed)

	in := scenarioInput()
	in.CurveQuotes = nil
	in.CurveDate = "2021-02-26"
	outputs, hadError, err := r.Run(context.Background(), KindPrice, []Input{in})
	if err != nil || hadError {
		t.Fatalf("feed price: %+v, %v", outputs, err)
	}
	if math.Abs(*outputs[0].Price-1.018951) > 1e-6 {
		t.Fatalf("price from feed: got %v", *outputs[0].Price)
	}

	in.CurveDate = ""
	outputs, hadError, _ = r.Run(context.Background(), KindPrice, []Input{in})
	if !hadError || !strings.Contains(outputs[0].Error, marketdata.ErrNoQuotes.Error()) {
		t.Fatalf("evaluation date has no quotes: %+v", outputs[0])
	}
}

func TestRun_Curve(t *testing.T) {
	t.Parallel()

	r := NewRunner(config.DefaultConfig, nil)
	in := Input{
		CouponFrequency: 2,
		CurveQuotes:     []Quote{{Tenor: "6M", Rate: 0.03}, {Tenor: "5Y", Rate: 0.035}},
	}
	outputs, hadError, err := r.Run(context.Background(), KindCurve, []Input{in})
	if err != nil || hadError {
		t.Fatalf("curve: %+v, %v", outputs, err)
	}
	nodes := outputs[0].Curve
	if len(nodes) != 100 || nodes[0].YearFrac != 0.5 || nodes[99].YearFrac != 50 {
		t.Fatalf("curve nodes: %d, first %+v", len(nodes), nodes[0])
	}
	if math.Abs(nodes[0].DiscountFactor-1/1.015) > 1e-12 {
		t.Fatalf("first df: got %.12f", nodes[0].DiscountFactor)
	}

	in.CouponFrequency = 0
	if outputs, _, _ := r.Run(context.Background(), KindCurve, []Input{in}); outputs[0].Error == "" {
		t.Fatalf("zero frequency: expected error")
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewRunner(config.DefaultConfig, nil).Run(ctx, KindPrice, []Input{scenarioInput()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
