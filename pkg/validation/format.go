// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/agroplan/agroplan/pkg/constants"
)

// ValidateOutputFormat checks that the requested output format is supported.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (valid: %s, %s, %s)",
			format, constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatYAML)
	}
}
