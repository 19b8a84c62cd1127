package bucket

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

// Reason explains why a record was left out of every bucket.
type Reason string

const ReasonInvalidTimestamp Reason = shift.CodeInvalidTimestamp

// Skipped is a record excluded from aggregation.
type Skipped[T any] struct {
	Record T      `json:"record"`
	Reason Reason `json:"reason"`
	Raw    string `json:"raw,omitempty"`
	Err    error  `json:"-"`
}

// Result of filtering records into one window. Ambiguous lists kept records
// whose local stamp hit a fall-back overlap and resolved to the earlier
// instant.
type Result[T any] struct {
	Records   []T          `json:"records"`
	Skipped   []Skipped[T] `json:"skipped"`
	Ambiguous []T          `json:"ambiguous,omitempty"`
}

func (r Result[T]) Len() int {
	return len(r.Records)
}

// Bucket is one shift window and the records inside it.
type Bucket[T any] struct {
	Window  shift.Window `json:"window"`
	Records []T          `json:"records"`
}

// DayGroups partitions records by local calendar date. Dates is ascending.
type DayGroups[T any] struct {
	Days      map[shift.CivilDate][]T
	Dates     []shift.CivilDate
	Skipped   []Skipped[T]
	Ambiguous []T
}

// ShiftGroups partitions records by the shift containing them.
type ShiftGroups[T any] struct {
	Buckets   []Bucket[T]
	Skipped   []Skipped[T]
	Ambiguous []T
}

// Aggregator groups records of type T by shift, day or month in one
// warehouse timezone. It is a pure transform over its inputs.
type Aggregator[T any] struct {
	resolver *shift.Resolver
	loc      *time.Location
	stamp    func(T) Stamp
}

func New[T any](resolver *shift.Resolver, tz string, stamp func(T) Stamp) (*Aggregator[T], error) {
	if resolver == nil {
		resolver = shift.DefaultResolver()
	}
	if stamp == nil {
		return nil, fmt.Errorf("%w: missing stamp extractor", shift.ErrInvalidWindowQuery)
	}
	loc, err := resolver.Location(tz)
	if err != nil {
		return nil, err
	}
	return &Aggregator[T]{resolver: resolver, loc: loc, stamp: stamp}, nil
}

func (a *Aggregator[T]) Location() *time.Location {
	return a.loc
}

// Instant extracts and resolves the bucketing instant of rec.
func (a *Aggregator[T]) Instant(rec T) (time.Time, shift.Rule, error) {
	return parseStamp(a.stamp(rec), a.loc)
}

// BucketByShift keeps records with window.Start <= instant < window.End.
func (a *Aggregator[T]) BucketByShift(records []T, window shift.Window) Result[T] {
	c := a.ShiftCollector(window)
	c.Feed(records)
	return c.Result()
}

// BucketByMonth keeps records inside [first of month, first of next month)
// for a "YYYY-MM" month in the aggregator's timezone.
func (a *Aggregator[T]) BucketByMonth(records []T, yearMonth string) (Result[T], error) {
	c, err := a.MonthCollector(yearMonth)
	if err != nil {
		return Result[T]{}, err
	}
	c.Feed(records)
	return c.Result(), nil
}

// GroupByDay partitions records by local calendar date, keeping input order
// within each day.
func (a *Aggregator[T]) GroupByDay(records []T) DayGroups[T] {
	g := DayGroups[T]{Days: make(map[shift.CivilDate][]T)}
	for _, rec := range records {
		at, rule, err := a.Instant(rec)
		if err != nil {
			g.Skipped = append(g.Skipped, a.skip(rec, err))
			continue
		}
		if rule == shift.RuleOverlapEarlier {
			g.Ambiguous = append(g.Ambiguous, rec)
		}
		day := shift.DateOf(at.In(a.loc))
		if _, ok := g.Days[day]; !ok {
			g.Dates = append(g.Dates, day)
		}
		g.Days[day] = append(g.Days[day], rec)
	}
	sort.Slice(g.Dates, func(i, j int) bool { return g.Dates[i].Before(g.Dates[j]) })
	return g
}

// GroupByShift partitions records by the shift each one falls in. Buckets
// are ordered by window start; input order is kept within a bucket.
func (a *Aggregator[T]) GroupByShift(records []T) ShiftGroups[T] {
	var g ShiftGroups[T]
	index := make(map[int64]int)
	for _, rec := range records {
		at, rule, err := a.Instant(rec)
		if err != nil {
			g.Skipped = append(g.Skipped, a.skip(rec, err))
			continue
		}
		if rule == shift.RuleOverlapEarlier {
			g.Ambiguous = append(g.Ambiguous, rec)
		}
		w := a.resolver.ClassifyIn(at, a.loc).Window
		key := w.Start.UnixNano()
		i, ok := index[key]
		if !ok {
			i = len(g.Buckets)
			index[key] = i
			g.Buckets = append(g.Buckets, Bucket[T]{Window: w})
		}
		g.Buckets[i].Records = append(g.Buckets[i].Records, rec)
	}
	sort.SliceStable(g.Buckets, func(i, j int) bool {
		return g.Buckets[i].Window.Start.Before(g.Buckets[j].Window.Start)
	})
	return g
}

func (a *Aggregator[T]) skip(rec T, err error) Skipped[T] {
	s := a.stamp(rec)
	raw := s.Text
	if raw == "" && !s.Time.IsZero() {
		raw = s.Time.Format(time.RFC3339Nano)
	}
	return Skipped[T]{Record: rec, Reason: ReasonInvalidTimestamp, Raw: raw, Err: err}
}
