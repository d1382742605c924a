package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-roi/internal/config"
	"github.com/iwvelando/property-roi/internal/forecast"
	"github.com/iwvelando/property-roi/pkg/constants"
	formatutil "github.com/iwvelando/property-roi/pkg/format"
	"github.com/iwvelando/property-roi/pkg/mathutil"
	"github.com/iwvelando/property-roi/pkg/optimization"
	"github.com/iwvelando/property-roi/pkg/roi"
	"go.uber.org/zap"
)

// defaultPriceSearchMultiplier sets the upper purchase price bound, relative
// to the scenario's own price, when a directive does not supply one.
const defaultPriceSearchMultiplier = 10

// Runner evaluates the optimizer directives of every active scenario.
type Runner struct {
	logger    *zap.Logger
	conf      *config.Configuration
	formatter formatutil.Formatter
}

type scenarioTarget struct {
	scenarioName string
	input        roi.Input
	optimizer    config.OptimizerConfig
}

type evaluation struct {
	value  float64
	metric float64
	floor  float64
}

func (e evaluation) feasible() bool {
	return e.metric >= e.floor
}

func (e evaluation) headroom() float64 {
	return e.metric - e.floor
}

// Result summarizes optimizer findings keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any optimizer summaries were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches optimizer summaries to the provided forecast results.
func (r Result) Apply(forecasts []forecast.Forecast) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range forecasts {
		summaries, ok := r.Summaries[forecasts[i].Name]
		if !ok {
			continue
		}
		forecasts[i].Optimizations = append(forecasts[i].Optimizations, summaries...)
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	formatter := formatutil.NewFormatter(conf.Currency.Symbol, conf.Currency.Style, conf.Currency.ExchangeRate, false)
	return &Runner{logger: logger, conf: conf, formatter: formatter}, nil
}

// Run executes all optimizer directives. The configuration is left untouched;
// findings are reported as summaries only.
func (r *Runner) Run() (*Result, error) {
	targets, err := r.collectTargets()
	if err != nil {
		return nil, err
	}

	summaries := make(map[string][]optimization.Summary)
	for _, target := range targets {
		summary, err := Optimize(target.input, target.optimizer, r.formatter)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", target.scenarioName, err)
		}
		summaries[target.scenarioName] = append(summaries[target.scenarioName], summary)

		r.logger.Info("optimizer evaluated scenario field",
			zap.String("op", "optimizer.Run"),
			zap.String("scenario", target.scenarioName),
			zap.String("field", summary.Field),
			zap.String("kind", summary.Kind),
			zap.Float64("originalNumeric", summary.Original),
			zap.String("originalDisplay", summary.OriginalDisplay),
			zap.Float64("optimizedNumeric", summary.Value),
			zap.String("optimizedDisplay", summary.ValueDisplay),
			zap.Float64("floor", summary.Floor),
			zap.Float64("achieved", summary.Achieved),
			zap.Float64("headroom", summary.Headroom),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) collectTargets() ([]scenarioTarget, error) {
	var targets []scenarioTarget

	for _, scenario := range r.conf.Scenarios {
		if !scenario.Active {
			continue
		}
		for _, directive := range scenario.Optimizers {
			directive := directive
			if err := directive.Validate(); err != nil {
				return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			targets = append(targets, scenarioTarget{
				scenarioName: scenario.Name,
				input:        scenario.Input,
				optimizer:    directive,
			})
		}
	}

	return targets, nil
}

// Optimize runs one directive against input. Down payment directives find the
// smallest down payment percent whose monthly cash flow is non-negative;
// purchase price directives find the highest price whose cap rate meets the
// target.
func Optimize(input roi.Input, cfg config.OptimizerConfig, formatter formatutil.Formatter) (optimization.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return optimization.Summary{}, err
	}
	input = roi.Sanitize(input)

	switch cfg.Field {
	case config.OptimizerFieldDownPayment:
		return optimizeDownPayment(input, cfg), nil
	case config.OptimizerFieldPurchasePrice:
		return optimizePurchasePrice(input, cfg, formatter), nil
	default:
		return optimization.Summary{}, fmt.Errorf("optimizer field %q is not supported", cfg.Field)
	}
}

func optimizeDownPayment(input roi.Input, cfg config.OptimizerConfig) optimization.Summary {
	evaluate := func(downPayment float64) evaluation {
		candidate := input
		candidate.DownPaymentPercent = downPayment
		return evaluation{value: downPayment, metric: roi.Compute(candidate).MonthlyCashFlow, floor: 0}
	}

	summary := optimization.Summary{
		Field:           cfg.Field,
		Kind:            cfg.Kind,
		Original:        input.DownPaymentPercent,
		OriginalDisplay: formatutil.Percent(input.DownPaymentPercent),
	}
	if !input.HasLoan {
		current := evaluate(constants.MaxPercentage)
		summary.Original = constants.MaxPercentage
		summary.OriginalDisplay = formatutil.Percent(constants.MaxPercentage)
		return finish(summary, current, 0, current.feasible(), formatutil.Percent,
			"scenario is not financed; the purchase is already fully paid in cash")
	}

	lower := evaluate(*cfg.Min)
	if lower.feasible() {
		return finish(summary, lower, 0, true, formatutil.Percent,
			fmt.Sprintf("monthly cash flow is non-negative at the minimum bound %s", formatutil.Percent(*cfg.Min)))
	}
	upper := evaluate(*cfg.Max)
	if !upper.feasible() {
		return finish(summary, upper, 0, false, formatutil.Percent,
			fmt.Sprintf("unable to reach non-negative monthly cash flow within bounds %s to %s",
				formatutil.Percent(*cfg.Min), formatutil.Percent(*cfg.Max)))
	}

	// lower is infeasible and upper feasible; cash flow rises with the down payment.
	best, iterations, converged := bisect(lower, upper, cfg, evaluate, false)
	return finish(summary, best, iterations, converged, formatutil.Percent, "")
}

func optimizePurchasePrice(input roi.Input, cfg config.OptimizerConfig, formatter formatutil.Formatter) optimization.Summary {
	target := cfg.TargetCapRatePercent
	evaluate := func(price float64) evaluation {
		candidate := input
		candidate.PurchasePrice = price
		return evaluation{value: price, metric: roi.Compute(candidate).CapRate, floor: target}
	}

	minPrice := cfg.Tolerance
	if cfg.Min != nil && *cfg.Min > 0 {
		minPrice = *cfg.Min
	}
	maxPrice := input.PurchasePrice * defaultPriceSearchMultiplier
	if cfg.Max != nil {
		maxPrice = *cfg.Max
	}
	maxPrice = math.Min(maxPrice, constants.MaxAmount)

	summary := optimization.Summary{
		Field:           cfg.Field,
		Kind:            cfg.Kind,
		Original:        input.PurchasePrice,
		OriginalDisplay: formatter.Money(input.PurchasePrice),
	}
	if maxPrice <= minPrice {
		return finish(summary, evaluate(minPrice), 0, false, formatter.Money,
			"purchase price search range is empty; set a positive purchase price or explicit bounds")
	}

	lower := evaluate(minPrice)
	if !lower.feasible() {
		return finish(summary, lower, 0, false, formatter.Money,
			fmt.Sprintf("no purchase price within bounds reaches a %s cap rate; net operating income is %s",
				formatutil.Percent(target), formatter.Money(roi.Compute(input).NetOperatingIncome)))
	}
	upper := evaluate(maxPrice)
	if upper.feasible() {
		return finish(summary, upper, 0, true, formatter.Money,
			fmt.Sprintf("cap rate stays above %s up to the maximum bound", formatutil.Percent(target)))
	}

	// lower is feasible and upper infeasible; cap rate falls as the price rises.
	best, iterations, converged := bisect(lower, upper, cfg, evaluate, true)
	return finish(summary, best, iterations, converged, formatter.Money, "")
}

// bisect narrows the bracket [a, b] where exactly one end is feasible until it
// is no wider than the tolerance. keepLow reports whether the feasible end is
// the lower one.
func bisect(a, b evaluation, cfg config.OptimizerConfig, evaluate func(float64) evaluation, keepLow bool) (evaluation, int, bool) {
	iterations := 0
	for !mathutil.WithinTolerance(a.value, b.value, cfg.Tolerance) && iterations < cfg.MaxIterations {
		iterations++
		mid := evaluate(a.value + (b.value-a.value)/2)
		if mid.feasible() == keepLow {
			a = mid
		} else {
			b = mid
		}
	}

	converged := mathutil.WithinTolerance(a.value, b.value, cfg.Tolerance)
	if keepLow {
		return a, iterations, converged
	}
	return b, iterations, converged
}

func finish(summary optimization.Summary, best evaluation, iterations int, converged bool, display func(float64) string, note string) optimization.Summary {
	summary.Value = best.value
	summary.ValueDisplay = display(best.value)
	summary.Floor = best.floor
	summary.Achieved = best.metric
	summary.Headroom = best.headroom()
	summary.Iterations = iterations
	summary.Converged = converged
	if note != "" {
		summary.Notes = append(summary.Notes, note)
	}
	return summary
}
