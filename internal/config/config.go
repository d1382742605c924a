// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/property-roi/pkg/constants"
	"github.com/iwvelando/property-roi/pkg/roi"
	"github.com/iwvelando/property-roi/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for property-roi.
type Configuration struct {
	Logging   LoggingConfig  `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig   `yaml:"output,omitempty" mapstructure:"output"`
	Currency  CurrencyConfig `yaml:"currency,omitempty" mapstructure:"currency"`
	Scenarios []Scenario     `yaml:"scenarios" mapstructure:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, pdf
	File   string `yaml:"file,omitempty" mapstructure:"file"`     // destination for pdf output
}

// CurrencyConfig controls how amounts are displayed. The engine itself is
// currency-agnostic; ExchangeRate is applied at presentation time only.
type CurrencyConfig struct {
	Symbol       string  `yaml:"symbol,omitempty" mapstructure:"symbol"`
	ExchangeRate float64 `yaml:"exchangeRate,omitempty" mapstructure:"exchangeRate"`
	Style        string  `yaml:"style,omitempty" mapstructure:"style"` // indian, international
	Abbreviate   bool    `yaml:"abbreviate,omitempty" mapstructure:"abbreviate"`
}

// Scenario is one named property evaluation.
type Scenario struct {
	Name       string            `yaml:"name" mapstructure:"name"`
	Active     bool              `yaml:"active" mapstructure:"active"`
	Input      roi.Input         `yaml:"input" mapstructure:"input"`
	Optimizers []OptimizerConfig `yaml:"optimizers,omitempty" mapstructure:"optimizers"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
// Each call uses its own viper instance so concurrent callers do not share
// state.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	if r == nil {
		return nil, fmt.Errorf("configuration reader cannot be nil")
	}
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("PROPERTY_ROI")
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("currency.symbol", constants.DefaultCurrencySymbol)
	v.SetDefault("currency.style", constants.CurrencyStyleIndian)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// ActiveScenarios returns the scenarios flagged active, in file order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Scenarios) == 0 {
		return append(warnings, "No scenarios are defined")
	}
	if len(c.ActiveScenarios()) == 0 {
		warnings = append(warnings, "No active scenarios found; nothing will be evaluated")
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Currency.Style != "" {
		if err := validation.ValidateCurrencyStyle(c.Currency.Style); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Currency.ExchangeRate < 0 {
		warnings = append(warnings, fmt.Sprintf("currency exchangeRate %.4f is negative and will be ignored", c.Currency.ExchangeRate))
	}

	seen := make(map[string]bool)
	for i, scenario := range c.Scenarios {
		name := scenario.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
			warnings = append(warnings, fmt.Sprintf("Scenario %s has no name", name))
		} else if seen[name] {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is defined more than once", name))
		}
		seen[name] = true

		if !scenario.Active {
			continue
		}
		warnings = append(warnings, validation.ValidateInput(name, scenario.Input)...)
		for _, directive := range scenario.Optimizers {
			if err := directive.Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s': %v", name, err))
			}
		}
	}

	return warnings
}
