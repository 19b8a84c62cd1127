package shift

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
)

// Resolver computes shift windows for a warehouse boundary. It holds no
// mutable state beyond the zone cache and is safe for concurrent use.
type Resolver struct {
	boundary Boundary
	zones    *clock.Zones
}

func NewResolver(boundary Boundary, zones *clock.Zones) (*Resolver, error) {
	if err := boundary.Validate(); err != nil {
		return nil, err
	}
	if zones == nil {
		zones = clock.NewZones()
	}
	return &Resolver{boundary: boundary, zones: zones}, nil
}

// DefaultResolver uses the 06:00/18:00 boundary.
func DefaultResolver() *Resolver {
	return &Resolver{boundary: DefaultBoundary, zones: clock.NewZones()}
}

func (r *Resolver) Boundary() Boundary {
	return r.boundary
}

// Location loads an IANA zone, reporting failures as invalid window queries.
func (r *Resolver) Location(tz string) (*time.Location, error) {
	loc, err := r.zones.Load(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindowQuery, err)
	}
	return loc, nil
}

// ResolveShiftWindow returns the day or night window that starts on the
// local calendar date of ref.
func (r *Resolver) ResolveShiftWindow(ref time.Time, tz string, kind Kind) (Window, error) {
	if !kind.Valid() {
		return Window{}, fmt.Errorf("%w: shift kind %q", ErrInvalidWindowQuery, kind)
	}
	loc, err := r.Location(tz)
	if err != nil {
		return Window{}, err
	}
	return r.windowIn(DateOf(ref.In(loc)), loc, kind), nil
}

// WindowFor returns the window of kind owned by an explicit civil date.
func (r *Resolver) WindowFor(date CivilDate, tz string, kind Kind) (Window, error) {
	if !kind.Valid() {
		return Window{}, fmt.Errorf("%w: shift kind %q", ErrInvalidWindowQuery, kind)
	}
	if date.IsZero() {
		return Window{}, fmt.Errorf("%w: missing date", ErrInvalidWindowQuery)
	}
	loc, err := r.Location(tz)
	if err != nil {
		return Window{}, err
	}
	return r.windowIn(date, loc, kind), nil
}

// ClassifyInstant places t into the shift containing it.
func (r *Resolver) ClassifyInstant(t time.Time, tz string) (Classification, error) {
	loc, err := r.Location(tz)
	if err != nil {
		return Classification{}, err
	}
	return r.ClassifyIn(t, loc), nil
}

// ClassifyIn is ClassifyInstant with an already loaded location.
//
// Before the day start hour the instant belongs to the night that began on
// the previous date. Candidates are tested by containment, so the windows
// tile the timeline even when a boundary hour is moved by DST.
func (r *Resolver) ClassifyIn(t time.Time, loc *time.Location) Classification {
	date := DateOf(t.In(loc))
	candidates := [...]Window{
		r.windowIn(date, loc, Day),
		r.windowIn(date, loc, Night),
		r.windowIn(date.AddDays(-1), loc, Night),
	}
	for _, w := range candidates {
		if w.Contains(t) {
			return Classification{Kind: w.Kind, Window: w}
		}
	}

	// Unreachable with a valid boundary; fall back to the plain hour rule.
	hour := t.In(loc).Hour()
	switch {
	case hour >= r.boundary.DayStartHour && hour < r.boundary.NightStartHour:
		return Classification{Kind: Day, Window: candidates[0]}
	case hour >= r.boundary.NightStartHour:
		return Classification{Kind: Night, Window: candidates[1]}
	default:
		return Classification{Kind: Night, Window: candidates[2]}
	}
}

// Next returns the shift immediately following w.
func (r *Resolver) Next(w Window, loc *time.Location) Window {
	if w.Kind == Day {
		return r.windowIn(w.LocalDate, loc, Night)
	}
	return r.windowIn(w.LocalDate.AddDays(1), loc, Day)
}

// Previous returns the shift immediately preceding w.
func (r *Resolver) Previous(w Window, loc *time.Location) Window {
	if w.Kind == Day {
		return r.windowIn(w.LocalDate.AddDays(-1), loc, Night)
	}
	return r.windowIn(w.LocalDate, loc, Day)
}

// ShiftsBetween lists every window owned by a date in [from, to], in order.
func (r *Resolver) ShiftsBetween(from, to CivilDate, tz string) ([]Window, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidWindowQuery, to, from)
	}
	loc, err := r.Location(tz)
	if err != nil {
		return nil, err
	}

	var windows []Window
	for d := from; !d.After(to); d = d.AddDays(1) {
		windows = append(windows, r.windowIn(d, loc, Day), r.windowIn(d, loc, Night))
	}
	return windows, nil
}

func (r *Resolver) windowIn(date CivilDate, loc *time.Location, kind Kind) Window {
	startHour, endDate, endHour := r.boundary.DayStartHour, date, r.boundary.NightStartHour
	if kind == Night {
		startHour, endDate, endHour = r.boundary.NightStartHour, date.AddDays(1), r.boundary.DayStartHour
	}

	start, startRule := ResolveLocal(date.Year, date.Month, date.Day, startHour, 0, 0, 0, loc)
	end, endRule := ResolveLocal(endDate.Year, endDate.Month, endDate.Day, endHour, 0, 0, 0, loc)

	return Window{
		Kind:      kind,
		Start:     start,
		End:       end,
		LocalDate: date,
		StartRule: startRule,
		EndRule:   endRule,
	}
}

var yearMonthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParseYearMonth parses a strict "YYYY-MM" string.
func ParseYearMonth(s string) (int, time.Month, error) {
	m := yearMonthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: month %q must be YYYY-MM", ErrInvalidWindowQuery, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month %q out of range", ErrInvalidWindowQuery, s)
	}
	return year, time.Month(month), nil
}

// MonthRange returns [first of month, first of next month) in loc.
func MonthRange(yearMonth string, loc *time.Location) (time.Time, time.Time, error) {
	year, month, err := ParseYearMonth(yearMonth)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	nextYear, nextMonth := year, month+1
	if nextMonth > time.December {
		nextYear, nextMonth = year+1, time.January
	}
	start, _ := ResolveLocal(year, month, 1, 0, 0, 0, 0, loc)
	end, _ := ResolveLocal(nextYear, nextMonth, 1, 0, 0, 0, 0, loc)
	return start, end, nil
}

// MonthOf formats the "YYYY-MM" key of t in loc.
func MonthOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}
