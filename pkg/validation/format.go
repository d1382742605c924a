// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-roi/pkg/constants"
)

var supportedOutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
	constants.OutputFormatPDF,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range supportedOutputFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s",
		strings.Join(supportedOutputFormats, ", "), format)
}

// ValidateCurrencyStyle checks the digit grouping style.
func ValidateCurrencyStyle(style string) error {
	if style != constants.CurrencyStyleIndian && style != constants.CurrencyStyleInternational {
		return fmt.Errorf("expected currency style of %s or %s, got %s",
			constants.CurrencyStyleIndian, constants.CurrencyStyleInternational, style)
	}
	return nil
}
