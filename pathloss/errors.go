package pathloss

import "fmt"

// ConfigurationError reports an unknown environment or a missing or
// unrecognised loss input.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return "pathloss: configuration: " + e.Reason
	}
	return fmt.Sprintf("pathloss: configuration %q: %s", e.Key, e.Reason)
}

// ShapeMismatchError reports two inputs that cannot be broadcast together
type ShapeMismatchError struct {
	Left, Right          string
	LeftRows, LeftCols   int
	RightRows, RightCols int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("pathloss: cannot broadcast %s (%dx%d) with %s (%dx%d)",
		e.Left, e.LeftRows, e.LeftCols, e.Right, e.RightRows, e.RightCols)
}
