package bucket

import (
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

// Collector filters records into a fixed [start, end) range one page at a
// time. Feeding pages p1..pn yields the same result as feeding their
// concatenation; a prefix of pages is a valid, possibly incomplete result.
type Collector[T any] struct {
	agg    *Aggregator[T]
	start  time.Time
	end    time.Time
	seen   int
	result Result[T]
}

// ShiftCollector collects records for one shift window.
func (a *Aggregator[T]) ShiftCollector(w shift.Window) *Collector[T] {
	return &Collector[T]{agg: a, start: w.Start, end: w.End}
}

// MonthCollector collects records for a "YYYY-MM" month.
func (a *Aggregator[T]) MonthCollector(yearMonth string) (*Collector[T], error) {
	start, end, err := shift.MonthRange(yearMonth, a.loc)
	if err != nil {
		return nil, err
	}
	return &Collector[T]{agg: a, start: start, end: end}, nil
}

// Feed merges one page into the running result.
func (c *Collector[T]) Feed(page []T) {
	c.seen += len(page)
	for _, rec := range page {
		at, rule, err := c.agg.Instant(rec)
		if err != nil {
			c.result.Skipped = append(c.result.Skipped, c.agg.skip(rec, err))
			continue
		}
		if at.Before(c.start) || !at.Before(c.end) {
			continue
		}
		c.result.Records = append(c.result.Records, rec)
		if rule == shift.RuleOverlapEarlier {
			c.result.Ambiguous = append(c.result.Ambiguous, rec)
		}
	}
}

// Sink adapts Feed to Drain.
func (c *Collector[T]) Sink(page []T) error {
	c.Feed(page)
	return nil
}

// Seen is the number of records fed so far, kept or not.
func (c *Collector[T]) Seen() int {
	return c.seen
}

// Result returns a snapshot that later Feed calls do not modify.
func (c *Collector[T]) Result() Result[T] {
	return Result[T]{
		Records:   append([]T(nil), c.result.Records...),
		Skipped:   append([]Skipped[T](nil), c.result.Skipped...),
		Ambiguous: append([]T(nil), c.result.Ambiguous...),
	}
}
