package bucket

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

// Stamp is the bucketing instant of a record: either an already decoded
// time or the raw ISO string as stored by the source. Rule records how a
// decoded time was resolved; empty means exact.
type Stamp struct {
	Time time.Time
	Text string
	Rule shift.Rule
}

func At(t time.Time) Stamp {
	return Stamp{Time: t}
}

// Resolved is a decoded time that keeps the rule used when it was first
// resolved from a wall-clock reading.
func Resolved(t time.Time, rule shift.Rule) Stamp {
	return Stamp{Time: t, Rule: rule}
}

// AtPtr maps a nullable column; nil becomes an invalid stamp.
func AtPtr(t *time.Time) Stamp {
	if t == nil {
		return Stamp{}
	}
	return Stamp{Time: *t}
}

func Text(s string) Stamp {
	return Stamp{Text: s}
}

// Layouts carrying their own offset are absolute.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
}

// Layouts without an offset are wall-clock readings in the warehouse zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseStamp resolves a single stamp in loc, the way every aggregation does.
func ParseStamp(s Stamp, loc *time.Location) (time.Time, shift.Rule, error) {
	return parseStamp(s, loc)
}

// parseStamp resolves a stamp to an instant. Readings inside a DST gap do
// not exist and are rejected; readings inside an overlap take the earlier
// instant and report RuleOverlapEarlier.
func parseStamp(s Stamp, loc *time.Location) (time.Time, shift.Rule, error) {
	if !s.Time.IsZero() {
		if s.Rule == "" {
			return s.Time, shift.RuleExact, nil
		}
		return s.Time, s.Rule, nil
	}

	raw := strings.TrimSpace(s.Text)
	if raw == "" {
		return time.Time{}, "", fmt.Errorf("%w: empty", shift.ErrInvalidTimestamp)
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, shift.RuleExact, nil
		}
	}

	for _, layout := range localLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		at, rule := shift.ResolveLocal(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
		if rule == shift.RuleGapForward {
			return time.Time{}, rule, fmt.Errorf("%w: %q does not exist in %s", shift.ErrInvalidTimestamp, raw, loc)
		}
		return at, rule, nil
	}

	return time.Time{}, "", fmt.Errorf("%w: %q", shift.ErrInvalidTimestamp, raw)
}
