package permrun

import "fmt"

// ConfigurationError reports inconsistent descriptor or command input: a key
// no layer defines, or a malformed override/numeric argument. It is fatal to
// the run that detects it.
type ConfigurationError struct {
	// Name identifies the offending key or argument.
	Name string
	// Reason explains the failure in one clause.
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("permrun: %s %q: %v", e.Reason, e.Name, e.Err)
	}
	return fmt.Sprintf("permrun: %s %q", e.Reason, e.Name)
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func undefinedKeyError(name string) error {
	return &ConfigurationError{Name: name, Reason: "undefined define"}
}

// FixtureError reports that the simulator could not construct or tear down a
// fixture for the resolved geometry. It is fatal to the run.
type FixtureError struct {
	CaseID string
	Index  int
	Op     string
	Err    error
}

func (e *FixtureError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("permrun: could not %s fixture for %s#%d: %v", e.Op, e.CaseID, e.Index, e.Err)
}

func (e *FixtureError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
