package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRange_InRange(t *testing.T) {
	start := day("2024-05-10")
	end := day("2024-05-20")

	tests := []struct {
		name string
		r    DateRange
		day  time.Time
		want bool
	}{
		{"no bounds includes everything", DateRange{}, day("1999-01-01"), true},
		{"closed interval includes start", DateRange{Start: start, End: end}, start, true},
		{"closed interval includes end", DateRange{Start: start, End: end}, end, true},
		{"closed interval excludes before", DateRange{Start: start, End: end}, day("2024-05-09"), false},
		{"closed interval excludes after", DateRange{Start: start, End: end}, day("2024-05-21"), false},
		{"start only includes the start day", DateRange{Start: start}, start, true},
		{"start only excludes the day before", DateRange{Start: start}, day("2024-05-09"), false},
		{"start only is unbounded above", DateRange{Start: start}, day("2999-12-31"), true},
		{"end only includes the end day", DateRange{End: end}, end, true},
		{"end only excludes the day after", DateRange{End: end}, day("2024-05-21"), false},
		{"end only is unbounded below", DateRange{End: end}, day("1999-01-01"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.InRange(tt.day))
		})
	}
}

func TestDateRange_NormalizesTimeOfDay(t *testing.T) {
	r := DateRange{
		Start: time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 20, 0, 0, 1, 0, time.UTC),
	}

	// A morning timestamp on the start day is still in range even though
	// it is "before" the start instant.
	assert.True(t, r.InRange(time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC)))
	// A late timestamp on the end day does not fall out of range.
	assert.True(t, r.InRange(time.Date(2024, 5, 20, 23, 0, 0, 0, time.UTC)))
	assert.False(t, r.InRange(time.Date(2024, 5, 9, 23, 59, 59, 0, time.UTC)))
}
