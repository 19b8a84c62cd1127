package bucket

import (
	"sort"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
)

// AssembleRows flattens buckets into report rows. Buckets are visited in
// ascending window start, records in insertion order. The input slice is
// not reordered.
func AssembleRows[T, R any](buckets []Bucket[T], enrich func(shift.Window, T) R) []R {
	ordered := make([]Bucket[T], len(buckets))
	copy(ordered, buckets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Window.Start.Before(ordered[j].Window.Start)
	})

	n := 0
	for _, b := range ordered {
		n += len(b.Records)
	}

	rows := make([]R, 0, n)
	for _, b := range ordered {
		for _, rec := range b.Records {
			rows = append(rows, enrich(b.Window, rec))
		}
	}
	return rows
}
