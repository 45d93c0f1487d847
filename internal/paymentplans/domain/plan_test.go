package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	from := date(2026, time.January, 15)

	cases := []struct {
		name      string
		frequency Frequency
		interval  int
		want      time.Time
	}{
		{"weekly", FrequencyWeekly, 0, date(2026, time.January, 22)},
		{"monthly", FrequencyMonthly, 0, date(2026, time.February, 15)},
		{"quarterly", FrequencyQuarterly, 0, date(2026, time.April, 15)},
		{"yearly", FrequencyYearly, 0, date(2027, time.January, 15)},
		{"custom with interval", FrequencyCustom, 10, date(2026, time.January, 25)},
		{"custom without interval unchanged", FrequencyCustom, 0, from},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextDueDate(tc.frequency, from, tc.interval)
			if !got.Equal(tc.want) {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNextDueDateMonthEndNormalization(t *testing.T) {
	// Go's AddDate normalizes Jan 31 + 1 month to Mar 2/3.
	got := NextDueDate(FrequencyMonthly, date(2026, time.January, 31), 0)
	if got.Before(date(2026, time.February, 28)) {
		t.Fatalf("got %s, want a date at or after Feb 28", got)
	}
}
