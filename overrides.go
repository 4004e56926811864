package permrun

import (
	"strconv"
	"strings"
)

// Override is one user-supplied name=value pair. Overrides are parsed once
// per process and remapped into both namespaces whenever the active suite
// changes.
type Override struct {
	Name  string
	Value Value
}

// ParseOverride parses a single "NAME=value" argument. Values accept the
// usual integer prefixes (0x, 0o, 0b, leading 0 for octal) and may be
// negative.
func ParseOverride(arg string) (Override, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return Override{}, &ConfigurationError{Name: arg, Reason: "invalid define"}
	}
	value, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return Override{}, &ConfigurationError{Name: arg, Reason: "invalid define", Err: err}
	}
	return Override{Name: name, Value: Value(value)}, nil
}

// ParseOverrides parses each argument in order, preserving order so that a
// later override of the same name wins during mapping.
func ParseOverrides(args []string) ([]Override, error) {
	if len(args) == 0 {
		return nil, nil
	}
	overrides := make([]Override, 0, len(args))
	for _, arg := range args {
		override, err := ParseOverride(arg)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, override)
	}
	return overrides, nil
}
