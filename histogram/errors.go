package histogram

import (
	"fmt"

	"github.com/tarstars/gbhist/pkg/errors"
)

// invalidArg builds an *errors.InvalidArgumentError tagged with op, for
// failures detected before dispatch: out-of-range sample index, shape
// mismatch, missing categorical bitset.
func invalidArg(op, format string, args ...interface{}) error {
	return errors.NewInvalidArgumentError(op, fmt.Sprintf(format, args...))
}

// resourceExhausted builds an *errors.ResourceExhaustionError tagged with
// op, for histogram allocation failures.
func resourceExhausted(op, format string, args ...interface{}) error {
	return errors.NewResourceExhaustionError(op, fmt.Sprintf(format, args...))
}
