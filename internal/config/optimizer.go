package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-roi/pkg/constants"
)

const (
	OptimizerFieldDownPayment   = "downPaymentPercent"
	OptimizerFieldPurchasePrice = "purchasePrice"

	OptimizerKindCashFlowFloor = "cash_flow_floor"
	OptimizerKindCapRateFloor  = "cap_rate_floor"
)

// OptimizerConfig defines a single-parameter optimization directive for a
// scenario. A down payment directive searches for the smallest down payment
// that keeps monthly cash flow non-negative; a purchase price directive
// searches for the highest price whose cap rate stays at or above
// TargetCapRatePercent.
type OptimizerConfig struct {
	Field                string   `yaml:"field,omitempty" mapstructure:"field" json:"field,omitempty"`
	Kind                 string   `yaml:"kind,omitempty" mapstructure:"kind" json:"kind,omitempty"`
	Min                  *float64 `yaml:"min,omitempty" mapstructure:"min" json:"min,omitempty"`
	Max                  *float64 `yaml:"max,omitempty" mapstructure:"max" json:"max,omitempty"`
	TargetCapRatePercent float64  `yaml:"targetCapRatePercent,omitempty" mapstructure:"targetCapRatePercent" json:"targetCapRatePercent,omitempty"`
	Tolerance            float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance" json:"tolerance,omitempty"`
	MaxIterations        int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations" json:"maxIterations,omitempty"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldDownPayment
	}
	switch strings.ToLower(trimmed) {
	case "downpayment", "downpaymentpercent", "down_payment", "down-payment":
		return OptimizerFieldDownPayment
	case "purchaseprice", "price", "purchase_price", "purchase-price":
		return OptimizerFieldPurchasePrice
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)

	o.Kind = strings.ToLower(strings.TrimSpace(o.Kind))
	if o.Kind == "" {
		switch o.Field {
		case OptimizerFieldPurchasePrice:
			o.Kind = OptimizerKindCapRateFloor
		default:
			o.Kind = OptimizerKindCashFlowFloor
		}
	}

	switch o.Field {
	case OptimizerFieldDownPayment:
		if o.Min == nil {
			o.Min = floatPtr(0)
		}
		if o.Max == nil {
			o.Max = floatPtr(constants.MaxPercentage)
		}
		if o.Tolerance <= 0 {
			o.Tolerance = constants.DefaultOptimizerTolerance
		}
	case OptimizerFieldPurchasePrice:
		if o.Tolerance <= 0 {
			o.Tolerance = constants.ToleranceForComparison
		}
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = constants.DefaultOptimizerMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	switch o.Field {
	case OptimizerFieldDownPayment:
		if o.Kind != OptimizerKindCashFlowFloor {
			return fmt.Errorf("optimizer kind %q is not supported for %s", o.Kind, o.Field)
		}
		if *o.Min < 0 || *o.Max > constants.MaxPercentage {
			return fmt.Errorf("optimizer %s bounds must lie within 0-100%%", o.Field)
		}
	case OptimizerFieldPurchasePrice:
		if o.Kind != OptimizerKindCapRateFloor {
			return fmt.Errorf("optimizer kind %q is not supported for %s", o.Kind, o.Field)
		}
		if o.TargetCapRatePercent <= 0 {
			return fmt.Errorf("optimizer %s requires a positive targetCapRatePercent", o.Field)
		}
		if o.Min != nil && *o.Min < 0 {
			return fmt.Errorf("optimizer %s minimum %.2f must not be negative", o.Field, *o.Min)
		}
	default:
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}

	if o.Min != nil && o.Max != nil && *o.Min >= *o.Max {
		return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", *o.Min, *o.Max)
	}

	return nil
}

func floatPtr(value float64) *float64 {
	return &value
}
