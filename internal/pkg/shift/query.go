package shift

import (
	"fmt"
	"strings"
	"time"
)

// Query resolves a shift named the way API callers name it: a local date
// and a kind. Both empty selects the shift in progress at now. A kind
// without a date uses the local date of now. A date without a kind is
// rejected.
func (r *Resolver) Query(date, kind string, now time.Time, loc *time.Location) (Window, error) {
	date, kind = strings.TrimSpace(date), strings.TrimSpace(kind)

	if date == "" && kind == "" {
		return r.ClassifyIn(now, loc).Window, nil
	}
	if kind == "" {
		return Window{}, fmt.Errorf("%w: shift is required when date is given", ErrInvalidWindowQuery)
	}

	k, err := ParseKind(kind)
	if err != nil {
		return Window{}, err
	}

	d := DateOf(now.In(loc))
	if date != "" {
		if d, err = ParseCivilDate(date); err != nil {
			return Window{}, err
		}
	}
	return r.windowIn(d, loc, k), nil
}
