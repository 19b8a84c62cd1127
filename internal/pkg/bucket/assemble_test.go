package bucket

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/stretchr/testify/assert"
)

func TestAssembleRows_OrdersByWindowStart(t *testing.T) {
	r := shift.DefaultResolver()
	date := shift.CivilDate{Year: 2024, Month: time.June, Day: 10}
	day, _ := r.WindowFor(date, "UTC", shift.Day)
	night, _ := r.WindowFor(date, "UTC", shift.Night)

	buckets := []Bucket[string]{
		{Window: night, Records: []string{"n1", "n2"}},
		{Window: day, Records: []string{"d1", "d2", "d3"}},
	}

	rows := AssembleRows(buckets, func(w shift.Window, rec string) string {
		return string(w.Kind) + ":" + rec
	})

	assert.Equal(t, []string{"day:d1", "day:d2", "day:d3", "night:n1", "night:n2"}, rows)
	assert.Equal(t, shift.Night, buckets[0].Window.Kind, "input must not be reordered")
}

func TestAssembleRows_Empty(t *testing.T) {
	rows := AssembleRows[string, int](nil, func(shift.Window, string) int { return 1 })
	assert.Empty(t, rows)
}
