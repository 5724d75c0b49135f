package classifier

import (
	"errors"
	"fmt"
)

// MissingIndicatorError reports a required indicator absent from a snapshot.
// Callers skip the sphere for that tick; it is never a crash.
type MissingIndicatorError struct {
	Indicator string
}

func (e *MissingIndicatorError) Error() string {
	return fmt.Sprintf("missing indicator %q", e.Indicator)
}

// InvalidConfigError reports a construction-time configuration problem.
// These are fatal: they surface immediately, never at runtime.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid classifier config: " + e.Reason
}

// IsMissingIndicator reports whether err is a MissingIndicatorError.
func IsMissingIndicator(err error) bool {
	var target *MissingIndicatorError
	return errors.As(err, &target)
}
