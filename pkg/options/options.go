// Package options defines the shared module options surfaced as CLI flags.
package options

import (
	"fmt"
	"strconv"

	"github.com/praetorian-inc/blackcat/pkg/types"
)

var OutputOpt = types.Option{
	Name:        "output",
	Short:       "o",
	Description: "Output directory for module results",
	Type:        types.String,
	Value:       "blackcat-output",
}

var FormatOpt = types.Option{
	Name:        "format",
	Short:       "f",
	Description: "Output format (json, csv, table)",
	Type:        types.String,
	Value:       "table",
}

var ThrottleOpt = types.Option{
	Name:        "throttle",
	Short:       "t",
	Description: "Maximum number of concurrent workers",
	Type:        types.Int,
	Value:       "100",
}

// Validate checks required options and value formats. It must run before a
// module touches the network.
func Validate(opts []*types.Option) error {
	for _, opt := range opts {
		if opt.Required && opt.Value == "" {
			return fmt.Errorf("required option %q not set", opt.Name)
		}
		if opt.ValueFormat != nil && opt.Value != "" && !opt.ValueFormat.MatchString(opt.Value) {
			return fmt.Errorf("option %q value %q does not match expected format", opt.Name, opt.Value)
		}
	}
	return nil
}

// Int reads the named option as an integer, falling back to def when the
// option is missing or malformed.
func Int(name string, opts []*types.Option, def int) int {
	opt := types.GetOptionByName(name, opts)
	if opt == nil {
		return def
	}
	v, err := strconv.Atoi(opt.Value)
	if err != nil {
		return def
	}
	return v
}

// String reads the named option's value, or def when absent.
func String(name string, opts []*types.Option, def string) string {
	opt := types.GetOptionByName(name, opts)
	if opt == nil || opt.Value == "" {
		return def
	}
	return opt.Value
}
