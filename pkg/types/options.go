package types

import "regexp"

type OptionType string

const (
	String OptionType = "string"
	Bool   OptionType = "bool"
	Int    OptionType = "int"
)

// Option is a module parameter surfaced as a CLI flag. Values are carried
// as strings and converted at the point of use.
type Option struct {
	Name        string
	Short       string
	Description string
	Required    bool
	Type        OptionType
	Value       string
	ValueFormat *regexp.Regexp
	Sensitive   bool
}

// GetOptionByName returns the named option or nil.
func GetOptionByName(name string, opts []*Option) *Option {
	for _, opt := range opts {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

// WithValue returns a copy of opt carrying the given value.
func WithValue(opt Option, value string) *Option {
	opt.Value = value
	return &opt
}

// WithDefaultValue returns a copy of opt with a new default value.
func WithDefaultValue(opt Option, value string) *Option {
	opt.Value = value
	return &opt
}

// WithDescription returns a copy of opt with a new description.
func WithDescription(opt Option, description string) *Option {
	opt.Description = description
	return &opt
}
