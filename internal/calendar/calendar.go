// Package calendar содержит календарную арифметику в локации переданного времени.
package calendar

import "time"

// AddMonths сдвигает t на n месяцев, сохраняя число месяца. Если в целевом
// месяце дней меньше, берется последний день месяца (31 янв + 1 = 28/29 фев).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hour, min, sec := t.Clock()

	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hour, min, sec, t.Nanosecond(), t.Location())
}

// AddYears - то же, что AddMonths(t, 12*n): 29 фев переходит в 28 фев
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay - последняя миллисекунда дня (23:59:59.999)
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfWeek - понедельник 00:00 недели, содержащей t
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// EndOfWeek - воскресенье 23:59:59.999
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Millisecond)
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Millisecond)
}
