package analysis

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDivisionUndefined marks a percentage whose denominator is zero.
	// Results carrying it are still usable and display as N/A.
	ErrDivisionUndefined = errors.New("division undefined: zero denominator")

	// ErrUndefinedRatio is returned when a ranking ratio would divide by zero
	ErrUndefinedRatio = errors.New("undefined ratio: zero users or impressions")

	// ErrEmptyDataset is returned when no rows remain for an aggregate that needs at least one
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrInvalidParameter is returned for out-of-domain caller parameters
	ErrInvalidParameter = errors.New("invalid parameter")
)

// InvalidRangeError is returned when a date range starts after it ends
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// InvalidParameter wraps ErrInvalidParameter with the offending parameter
func InvalidParameter(name string, value any) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidParameter, name, value)
}
