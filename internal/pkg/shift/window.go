package shift

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	Day   Kind = "day"
	Night Kind = "night"
)

// ParseKind accepts "day" or "night" in any letter case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Day:
		return Day, nil
	case Night:
		return Night, nil
	}
	return "", fmt.Errorf("%w: shift kind %q must be day or night", ErrInvalidWindowQuery, s)
}

func (k Kind) Valid() bool {
	return k == Day || k == Night
}

// Boundary holds the local hours at which the two shifts start.
type Boundary struct {
	DayStartHour   int
	NightStartHour int
}

// DefaultBoundary is 06:00 day start and 18:00 night start.
var DefaultBoundary = Boundary{DayStartHour: 6, NightStartHour: 18}

func (b Boundary) Validate() error {
	if b.DayStartHour < 0 || b.NightStartHour > 23 || b.DayStartHour >= b.NightStartHour {
		return fmt.Errorf("%w: boundary hours day=%d night=%d must satisfy 0 <= day < night <= 23",
			ErrInvalidWindowQuery, b.DayStartHour, b.NightStartHour)
	}
	return nil
}

// Window is a concrete shift on the timeline. It is half-open: an instant t
// belongs to it iff Start <= t < End. LocalDate is the civil date of Start,
// so a night shift is owned by the evening it begins.
type Window struct {
	Kind      Kind      `json:"kind"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	LocalDate CivilDate `json:"local_date"`

	// StartRule and EndRule report DST handling at each boundary.
	StartRule Rule `json:"start_rule"`
	EndRule   Rule `json:"end_rule"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Adjusted reports whether either boundary needed a DST rule.
func (w Window) Adjusted() bool {
	return w.StartRule != RuleExact || w.EndRule != RuleExact
}

// Equal compares windows by instant rather than by location pointer.
func (w Window) Equal(o Window) bool {
	return w.Kind == o.Kind &&
		w.Start.Equal(o.Start) &&
		w.End.Equal(o.End) &&
		w.LocalDate == o.LocalDate &&
		w.StartRule == o.StartRule &&
		w.EndRule == o.EndRule
}

// Label is the human key used in reports, e.g. "2024-06-10 night".
func (w Window) Label() string {
	return w.LocalDate.String() + " " + string(w.Kind)
}

func (w Window) String() string {
	return fmt.Sprintf("%s [%s, %s)", w.Label(), w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// Classification is the result of placing an instant into its shift.
type Classification struct {
	Kind   Kind   `json:"kind"`
	Window Window `json:"window"`
}
