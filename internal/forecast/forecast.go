// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"github.com/iwvelando/property-roi/internal/config"
	"github.com/iwvelando/property-roi/pkg/optimization"
	"github.com/iwvelando/property-roi/pkg/roi"
	"github.com/iwvelando/property-roi/pkg/validation"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific scenario evaluation.
type Forecast struct {
	Name          string                 `json:"name"`
	Input         roi.Input              `json:"input"`
	Result        roi.Result             `json:"result"`
	Warnings      []string               `json:"warnings,omitempty"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// Evaluate runs a single named input through the engine and attaches the
// input hygiene warnings.
func Evaluate(name string, input roi.Input) Forecast {
	return Forecast{
		Name:     name,
		Input:    input,
		Result:   roi.Compute(input),
		Warnings: validation.ValidateInput(name, input),
	}
}

// GetForecast processes the Forecasts for all active Scenarios, in
// configuration order.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Forecast
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		result := Evaluate(scenario.Name, scenario.Input)
		for _, warning := range result.Warnings {
			logger.Warn(warning,
				zap.String("op", "forecast.GetForecast"),
				zap.String("scenario", scenario.Name),
			)
		}

		logger.Debug("evaluated scenario",
			zap.String("op", "forecast.GetForecast"),
			zap.String("scenario", scenario.Name),
			zap.Float64("monthlyCashFlow", result.Result.MonthlyCashFlow),
			zap.Float64("capRate", result.Result.CapRate),
			zap.Float64("totalROIPercent", result.Result.Summary.TotalROIPercent),
		)
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no active scenarios to evaluate")
	}

	return results, nil
}
