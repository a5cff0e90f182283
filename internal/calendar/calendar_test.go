package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamps(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"jan31 non-leap", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"jan31 leap", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"mar31 back", date(2024, time.March, 31), -1, date(2024, time.February, 29)},
		{"dec to jan", date(2024, time.December, 15), 1, date(2025, time.January, 15)},
		{"aug31 to sep", date(2024, time.August, 31), 1, date(2024, time.September, 30)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddMonths(tc.in, tc.n)
			if !got.Equal(tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAddYearsLeapDay(t *testing.T) {
	got := AddYears(date(2024, time.February, 29), 1)
	if !got.Equal(date(2025, time.February, 28)) {
		t.Errorf("Expected 2025-02-28, got %v", got)
	}
}

func TestAddMonthsKeepsClock(t *testing.T) {
	in := time.Date(2024, time.January, 31, 9, 45, 12, 0, time.UTC)
	got := AddMonths(in, 1)
	if got.Hour() != 9 || got.Minute() != 45 || got.Second() != 12 {
		t.Errorf("Expected 09:45:12, got %s", got.Format("15:04:05"))
	}
}

func TestWeekBounds(t *testing.T) {
	now := time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC) // среда

	start := StartOfWeek(now)
	if !start.Equal(date(2024, time.June, 10)) {
		t.Errorf("Expected Monday 2024-06-10, got %v", start)
	}

	end := EndOfWeek(now)
	want := time.Date(2024, time.June, 16, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !end.Equal(want) {
		t.Errorf("Expected %v, got %v", want, end)
	}

	sunday := time.Date(2024, time.June, 16, 10, 0, 0, 0, time.UTC)
	if !StartOfWeek(sunday).Equal(date(2024, time.June, 10)) {
		t.Errorf("Sunday should belong to the week starting on Monday 10th, got %v", StartOfWeek(sunday))
	}
}

func TestMonthBounds(t *testing.T) {
	now := time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)
	if !StartOfMonth(now).Equal(date(2024, time.February, 1)) {
		t.Errorf("Expected 2024-02-01, got %v", StartOfMonth(now))
	}
	want := time.Date(2024, time.February, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !EndOfMonth(now).Equal(want) {
		t.Errorf("Expected %v, got %v", want, EndOfMonth(now))
	}
}
