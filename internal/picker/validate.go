package picker

import (
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/datefmt"
)

// Validate parses text with spec and checks it against the bounds that are set.
// ref supplies date fields missing from the pattern. The returned error is
// always a *config.ValidationError.
func Validate(text string, spec datefmt.Spec, bounds config.Bounds, ref time.Time) (time.Time, error) {
	t, err := spec.Parse(text, ref)
	if err != nil {
		return time.Time{}, config.NewValidationError(config.ParseError, "invalid format, expected %s", spec)
	}
	if bounds.HasMin() && t.Before(bounds.Min) {
		return time.Time{}, config.NewValidationError(config.BoundsError, "must not be earlier than %s", spec.Format(bounds.Min))
	}
	if bounds.HasMax() && t.After(bounds.Max) {
		return time.Time{}, config.NewValidationError(config.BoundsError, "must not be later than %s", spec.Format(bounds.Max))
	}
	return t, nil
}

// Verdict is the outcome of a consistency check.
type Verdict struct {
	Valid   bool
	Message string
	Err     *config.ValidationError
}

// Check decides whether r is a valid selection. The window rule only
// applies when both bounds are set.
func Check(r config.Range, bounds config.Bounds, spec datefmt.Spec) Verdict {
	if r.Start.After(r.End) {
		return invalid(config.NewValidationError(config.RangeOrderError, "start must not be after end."))
	}
	if bounds.HasMin() && bounds.HasMax() {
		if !bounds.Contains(r.Start) || !bounds.Contains(r.End) {
			return invalid(config.NewValidationError(config.BoundsError, "date must be within %s .. %s.",
				spec.Format(bounds.Min), spec.Format(bounds.Max)))
		}
	}
	return Verdict{Valid: true}
}

func invalid(err *config.ValidationError) Verdict {
	return Verdict{Message: err.Message, Err: err}
}
