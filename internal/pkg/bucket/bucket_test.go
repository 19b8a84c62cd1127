package bucket

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exceptionRecord struct {
	ID             string
	ErrorStartTime string
}

func exceptionStamp(r exceptionRecord) Stamp {
	return Text(r.ErrorStartTime)
}

func newExceptionAggregator(t *testing.T, tz string) *Aggregator[exceptionRecord] {
	t.Helper()
	agg, err := New(shift.DefaultResolver(), tz, exceptionStamp)
	require.NoError(t, err)
	return agg
}

func ids(records []exceptionRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestBucketByShift_HalfOpenBoundaries(t *testing.T) {
	agg := newExceptionAggregator(t, "UTC")
	window, err := shift.DefaultResolver().WindowFor(shift.CivilDate{Year: 2024, Month: time.June, Day: 10}, "UTC", shift.Night)
	require.NoError(t, err)

	records := []exceptionRecord{
		{ID: "at-start", ErrorStartTime: "2024-06-10T18:00:00.000Z"},
		{ID: "at-end", ErrorStartTime: "2024-06-11T06:00:00.000Z"},
		{ID: "just-before-end", ErrorStartTime: "2024-06-11T05:59:59.999Z"},
		{ID: "just-before-start", ErrorStartTime: "2024-06-10T17:59:59.999Z"},
	}

	result := agg.BucketByShift(records, window)
	assert.Equal(t, []string{"at-start", "just-before-end"}, ids(result.Records))
	assert.Empty(t, result.Skipped)
}

func TestBucketByShift_SkipsInvalidTimestamps(t *testing.T) {
	agg := newExceptionAggregator(t, "Europe/Warsaw")
	window, err := shift.DefaultResolver().WindowFor(shift.CivilDate{Year: 2024, Month: time.March, Day: 30}, "Europe/Warsaw", shift.Night)
	require.NoError(t, err)

	records := []exceptionRecord{
		{ID: "ok", ErrorStartTime: "2024-03-30 22:15:00"},
		{ID: "garbage", ErrorStartTime: "not-a-date"},
		{ID: "empty", ErrorStartTime: ""},
		{ID: "dst-gap", ErrorStartTime: "2024-03-31 02:30:00"},
		{ID: "absolute", ErrorStartTime: "2024-03-31T03:30:00+02:00"},
	}

	var result Result[exceptionRecord]
	require.NotPanics(t, func() { result = agg.BucketByShift(records, window) })

	assert.Equal(t, []string{"ok", "absolute"}, ids(result.Records))
	require.Len(t, result.Skipped, 3)
	for _, s := range result.Skipped {
		assert.Equal(t, ReasonInvalidTimestamp, s.Reason)
		assert.True(t, errors.Is(s.Err, shift.ErrInvalidTimestamp))
	}
	assert.Equal(t, "garbage", result.Skipped[0].Record.ID)
	assert.Equal(t, "dst-gap", result.Skipped[2].Record.ID)
	assert.Equal(t, "2024-03-31 02:30:00", result.Skipped[2].Raw)
}

func TestBucketByShift_AmbiguousLocalTimeTakesEarlierInstant(t *testing.T) {
	agg := newExceptionAggregator(t, "Europe/Warsaw")
	window, err := shift.DefaultResolver().WindowFor(shift.CivilDate{Year: 2024, Month: time.October, Day: 26}, "Europe/Warsaw", shift.Night)
	require.NoError(t, err)

	records := []exceptionRecord{{ID: "twice", ErrorStartTime: "2024-10-27 02:30:00"}}
	result := agg.BucketByShift(records, window)

	assert.Equal(t, []string{"twice"}, ids(result.Records))
	assert.Equal(t, []string{"twice"}, ids(result.Ambiguous))

	at, rule, err := agg.Instant(records[0])
	require.NoError(t, err)
	assert.Equal(t, shift.RuleOverlapEarlier, rule)
	assert.True(t, at.Equal(time.Date(2024, 10, 27, 0, 30, 0, 0, time.UTC)))
}

func TestParseStamp_ResolvedKeepsRule(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	instant := time.Date(2024, 10, 27, 0, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		stamp Stamp
		want  shift.Rule
	}{
		{name: "plain instant", stamp: At(instant), want: shift.RuleExact},
		{name: "resolved exact", stamp: Resolved(instant, shift.RuleExact), want: shift.RuleExact},
		{name: "resolved from overlap", stamp: Resolved(instant, shift.RuleOverlapEarlier), want: shift.RuleOverlapEarlier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, rule, err := ParseStamp(tt.stamp, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rule)
			assert.True(t, at.Equal(instant))
		})
	}
}

func TestBucketByMonth_Rollover(t *testing.T) {
	agg := newExceptionAggregator(t, "UTC")
	records := []exceptionRecord{
		{ID: "first", ErrorStartTime: "2024-12-01T00:00:00Z"},
		{ID: "last-second", ErrorStartTime: "2024-12-31T23:59:59Z"},
		{ID: "next-year", ErrorStartTime: "2025-01-01T00:00:01Z"},
		{ID: "november", ErrorStartTime: "2024-11-30T23:59:59Z"},
	}

	result, err := agg.BucketByMonth(records, "2024-12")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "last-second"}, ids(result.Records))
}

func TestBucketByMonth_LocalTimezone(t *testing.T) {
	agg := newExceptionAggregator(t, "Europe/Warsaw")
	records := []exceptionRecord{
		// 2024-06-30T22:30Z is already July 1st in Warsaw.
		{ID: "july-local", ErrorStartTime: "2024-06-30T22:30:00Z"},
		{ID: "june-local", ErrorStartTime: "2024-06-30T21:30:00Z"},
	}

	result, err := agg.BucketByMonth(records, "2024-07")
	require.NoError(t, err)
	assert.Equal(t, []string{"july-local"}, ids(result.Records))
}

func TestBucketByMonth_InvalidQueryFailsFast(t *testing.T) {
	agg := newExceptionAggregator(t, "UTC")
	for _, month := range []string{"2024-13", "December", "", "2024-1"} {
		_, err := agg.BucketByMonth(nil, month)
		assert.True(t, errors.Is(err, shift.ErrInvalidWindowQuery), "month %q", month)
	}
}

func TestBucketByMonth_PagedEqualsWhole(t *testing.T) {
	agg := newExceptionAggregator(t, "UTC")

	start := time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)
	records := make([]exceptionRecord, 2400)
	for i := range records {
		at := start.Add(time.Duration(i) * 37 * time.Minute)
		stamp := at.Format(time.RFC3339)
		if i%250 == 0 {
			stamp = "broken"
		}
		records[i] = exceptionRecord{ID: fmt.Sprintf("r-%04d", i), ErrorStartTime: stamp}
	}

	whole, err := agg.BucketByMonth(records, "2024-12")
	require.NoError(t, err)

	c, err := agg.MonthCollector("2024-12")
	require.NoError(t, err)
	c.Feed(records[:1000])
	c.Feed(records[1000:2000])
	c.Feed(records[2000:])

	paged := c.Result()
	assert.Equal(t, whole, paged)
	assert.Equal(t, 2400, c.Seen())
	assert.NotEmpty(t, whole.Records)
	assert.Len(t, whole.Skipped, 10)
}

func TestCollector_ResultIsSnapshot(t *testing.T) {
	agg := newExceptionAggregator(t, "UTC")
	c, err := agg.MonthCollector("2024-06")
	require.NoError(t, err)

	c.Feed([]exceptionRecord{{ID: "a", ErrorStartTime: "2024-06-01T10:00:00Z"}})
	first := c.Result()
	c.Feed([]exceptionRecord{{ID: "b", ErrorStartTime: "2024-06-02T10:00:00Z"}})

	assert.Equal(t, []string{"a"}, ids(first.Records))
	assert.Equal(t, []string{"a", "b"}, ids(c.Result().Records))
}

func TestGroupByDay(t *testing.T) {
	agg := newExceptionAggregator(t, "Europe/Warsaw")
	records := []exceptionRecord{
		{ID: "d2-late", ErrorStartTime: "2024-06-11T22:30:00Z"},
		{ID: "d1", ErrorStartTime: "2024-06-10T08:00:00Z"},
		{ID: "d2-early", ErrorStartTime: "2024-06-11T00:30:00+02:00"},
		{ID: "bad", ErrorStartTime: "2024-06-99"},
		{ID: "d1-night", ErrorStartTime: "2024-06-10 23:00:00"},
	}

	g := agg.GroupByDay(records)
	require.Equal(t, []shift.CivilDate{
		{Year: 2024, Month: time.June, Day: 10},
		{Year: 2024, Month: time.June, Day: 11},
		{Year: 2024, Month: time.June, Day: 12},
	}, g.Dates)

	assert.Equal(t, []string{"d1", "d1-night"}, ids(g.Days[shift.CivilDate{Year: 2024, Month: time.June, Day: 10}]))
	assert.Equal(t, []string{"d2-early"}, ids(g.Days[shift.CivilDate{Year: 2024, Month: time.June, Day: 11}]))
	assert.Equal(t, []string{"d2-late"}, ids(g.Days[shift.CivilDate{Year: 2024, Month: time.June, Day: 12}]))
	require.Len(t, g.Skipped, 1)
	assert.Equal(t, "bad", g.Skipped[0].Record.ID)
}

func TestGroupByShift(t *testing.T) {
	agg := newExceptionAggregator(t, "UTC")
	records := []exceptionRecord{
		{ID: "n1-after-midnight", ErrorStartTime: "2024-06-11T02:00:00Z"},
		{ID: "d1", ErrorStartTime: "2024-06-10T09:00:00Z"},
		{ID: "n1", ErrorStartTime: "2024-06-10T19:00:00Z"},
		{ID: "d2", ErrorStartTime: "2024-06-11T06:00:00Z"},
	}

	g := agg.GroupByShift(records)
	require.Len(t, g.Buckets, 3)

	assert.Equal(t, "2024-06-10 day", g.Buckets[0].Window.Label())
	assert.Equal(t, []string{"d1"}, ids(g.Buckets[0].Records))

	assert.Equal(t, "2024-06-10 night", g.Buckets[1].Window.Label())
	assert.Equal(t, []string{"n1-after-midnight", "n1"}, ids(g.Buckets[1].Records))

	assert.Equal(t, "2024-06-11 day", g.Buckets[2].Window.Label())
}

func TestNew_Validation(t *testing.T) {
	_, err := New[exceptionRecord](nil, "UTC", nil)
	assert.True(t, errors.Is(err, shift.ErrInvalidWindowQuery))

	_, err = New(nil, "Atlantis/Capital", exceptionStamp)
	assert.True(t, errors.Is(err, shift.ErrInvalidWindowQuery))
}

func TestTimeStamps(t *testing.T) {
	type statusChange struct {
		CreatedAt *time.Time
	}
	agg, err := New(nil, "UTC", func(s statusChange) Stamp { return AtPtr(s.CreatedAt) })
	require.NoError(t, err)

	at := time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)
	window, err := shift.DefaultResolver().WindowFor(shift.CivilDate{Year: 2024, Month: time.June, Day: 10}, "UTC", shift.Day)
	require.NoError(t, err)

	result := agg.BucketByShift([]statusChange{{CreatedAt: &at}, {CreatedAt: nil}}, window)
	assert.Len(t, result.Records, 1)
	assert.Len(t, result.Skipped, 1)
}
