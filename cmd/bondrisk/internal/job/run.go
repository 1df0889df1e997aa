package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/bondrisk/bond"
	"github.com/meenmo/bondrisk/config"
	"github.com/meenmo/bondrisk/curve"
	"github.com/meenmo/bondrisk/logger"
	"github.com/meenmo/bondrisk/marketdata"
	"github.com/meenmo/bondrisk/utils"
)

// Runner executes batches of inputs.
type Runner struct {
	Config config.Config
	// Feed supplies quotes for inputs without curve_quotes; may be nil.
	Feed marketdata.QuoteFeed
	// Precision rounds every reported number to this many decimals; negative
	// leaves them unrounded.
	Precision int32
	// Workers bounds concurrent inputs; < 1 falls back to Config.Risk.Workers.
	Workers int

	log *logger.Entry
}

func NewRunner(c config.Config, feed marketdata.QuoteFeed) *Runner {
	return &Runner{
		Config:    c,
		Feed:      feed,
		Precision: -1,
		log:       logger.GetLogger().WithComponent("job"),
	}
}

// Run processes inputs concurrently and returns outputs in input order. A
// failed input yields an Output with Error set; hadError reports whether any
// did. Only context cancellation aborts the batch.
func (r *Runner) Run(ctx context.Context, kind Kind, inputs []Input) (outputs []Output, hadError bool, err error) {
	workers := r.Workers
	if workers < 1 {
		workers = r.Config.Risk.Workers
	}
	if workers < 1 {
		workers = 1
	}

	outputs = make([]Output, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if in.TaskID == "" {
			in.TaskID = uuid.NewString()
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			out, err := r.process(ctx, kind, in)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if r.log != nil {
					r.log.WithFields(logger.Fields{"task_id": in.TaskID, "kind": string(kind)}).WithError(err).Warn("job failed")
				}
				out = Output{TaskID: in.TaskID, Error: err.Error()}
			}
			outputs[i] = out
			if r.log != nil {
				logger.LogDuration(r.log, string(kind), started, logger.Fields{"task_id": in.TaskID})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	for _, out := range outputs {
		if out.Error != "" {
			hadError = true
			break
		}
	}
	return outputs, hadError, nil
}

func (r *Runner) process(ctx context.Context, kind Kind, in Input) (Output, error) {
	switch kind {
	case KindCurve:
		return r.processCurve(ctx, in)
	case KindPrice, KindDelta, KindLadder:
	default:
		return Output{}, fmt.Errorf("unknown job kind %q", kind)
	}

	eval, err := requiredDate("evaluation_date", in.EvaluationDate)
	if err != nil {
		return Output{}, err
	}
	terms, err := parseTerms(in)
	if err != nil {
		return Output{}, err
	}
	quotes, err := r.quotes(ctx, in, eval)
	if err != nil {
		return Output{}, err
	}
	b, err := bond.NewWithConfig(terms, quotes, r.Config)
	if err != nil {
		return Output{}, err
	}

	out := Output{TaskID: in.TaskID, EvaluationDate: eval.Format(utils.DateLayout)}
	switch kind {
	case KindPrice:
		price, err := b.Price(eval)
		if err != nil {
			return Output{}, err
		}
		out.Price = r.round(price)
		// No yield for a settled or single-cashflow bond.
		if y, err := b.Yield(eval); err == nil {
			out.Yield = r.round(y.Yield)
			out.ModifiedDuration = r.round(y.ModifiedDuration)
		}

	case KindDelta:
		if strings.TrimSpace(in.Tenor) == "" {
			return Output{}, fmt.Errorf("tenor is required for delta")
		}
		tenor, err := marketdata.ParseTenor(in.Tenor)
		if err != nil {
			return Output{}, err
		}
		d, err := b.Delta(eval, tenor)
		if err != nil {
			return Output{}, err
		}
		out.Tenor = marketdata.FormatTenor(tenor)
		out.Delta = r.round(d)

	case KindLadder:
		ladder, err := b.DeltaLadder(ctx, eval)
		if err != nil {
			return Output{}, err
		}
		out.Ladder = make([]Rung, len(ladder))
		for i, rung := range ladder {
			out.Ladder[i] = Rung{
				Tenor: marketdata.FormatTenor(rung.Tenor),
				Years: rung.Tenor,
				Delta: *r.round(rung.Delta),
			}
		}
	}
	return out, nil
}

// processCurve bootstraps the quotes alone; bond terms other than
// coupon_frequency are ignored.
func (r *Runner) processCurve(ctx context.Context, in Input) (Output, error) {
	var eval time.Time
	if strings.TrimSpace(in.EvaluationDate) != "" {
		d, err := utils.ParseDate(in.EvaluationDate)
		if err != nil {
			return Output{}, fmt.Errorf("invalid evaluation_date: %w", err)
		}
		eval = d
	}
	quotes, err := r.quotes(ctx, in, eval)
	if err != nil {
		return Output{}, err
	}
	mc, err := curve.NewMarketCurve(quotes, in.CouponFrequency)
	if err != nil {
		return Output{}, err
	}
	bs, err := curve.NewBootstrapper(r.Config)
	if err != nil {
		return Output{}, err
	}
	zc, err := bs.Build(mc)
	if err != nil {
		return Output{}, err
	}

	out := Output{TaskID: in.TaskID}
	if !eval.IsZero() {
		out.EvaluationDate = eval.Format(utils.DateLayout)
	}
	for _, n := range zc.Nodes() {
		out.Curve = append(out.Curve, Node{
			YearFrac:       n.YearFrac,
			MarketRate:     *r.round(n.MarketRate),
			DiscountFactor: *r.round(n.DiscountFactor),
			ZeroRate:       *r.round(n.ZeroRate),
		})
	}
	return out, nil
}

func (r *Runner) quotes(ctx context.Context, in Input, eval time.Time) (map[float64]float64, error) {
	if len(in.CurveQuotes) > 0 {
		quotes := make(map[float64]float64, len(in.CurveQuotes))
		for _, q := range in.CurveQuotes {
			tenor, err := marketdata.ParseTenor(q.Tenor)
			if err != nil {
				return nil, fmt.Errorf("parse tenor %q: %w", q.Tenor, err)
			}
			if _, dup := quotes[tenor]; dup {
				return nil, fmt.Errorf("duplicate tenor %q in curve_quotes", q.Tenor)
			}
			quotes[tenor] = q.Rate
		}
		return quotes, nil
	}

	if r.Feed == nil {
		return nil, fmt.Errorf("curve_quotes are required (no quote feed configured)")
	}
	curveDate := eval
	if strings.TrimSpace(in.CurveDate) != "" {
		d, err := utils.ParseDate(in.CurveDate)
		if err != nil {
			return nil, fmt.Errorf("invalid curve_date: %w", err)
		}
		curveDate = d
	}
	if curveDate.IsZero() {
		return nil, fmt.Errorf("curve_date or evaluation_date is required to query the quote feed")
	}
	return r.Feed.Quotes(ctx, curveDate)
}

func (r *Runner) round(v float64) *float64 {
	if r.Precision >= 0 {
		v = decimal.NewFromFloat(v).Round(r.Precision).InexactFloat64()
	}
	return &v
}

func parseTerms(in Input) (bond.Terms, error) {
	issue, err := requiredDate("issue_date", in.IssueDate)
	if err != nil {
		return bond.Terms{}, err
	}
	maturity, err := requiredDate("maturity_date", in.MaturityDate)
	if err != nil {
		return bond.Terms{}, err
	}
	if strings.TrimSpace(in.Direction) == "" {
		return bond.Terms{}, fmt.Errorf("direction is required (forward or backward)")
	}
	dir, err := bond.ParseDirection(in.Direction)
	if err != nil {
		return bond.Terms{}, err
	}
	return bond.Terms{
		IssueDate:       issue,
		MaturityDate:    maturity,
		CouponRate:      in.CouponRate,
		CouponFrequency: in.CouponFrequency,
		Direction:       dir,
	}, nil
}

func requiredDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	d, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}
