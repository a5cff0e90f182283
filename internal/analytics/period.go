package analytics

import (
	"time"

	"github.com/St1cky1/task-planner/internal/calendar"
	"github.com/St1cky1/task-planner/internal/entity"
)

// Windows - текущее и предыдущее окна периода, обе границы включительно
type Windows struct {
	Period   entity.Period
	Current  entity.DateRange
	Previous entity.DateRange
}

// ResolveWindows строит окна для period относительно now.
// Неизвестный период считается неделей.
func ResolveWindows(period string, now time.Time) Windows {
	switch entity.Period(period) {
	case entity.PeriodDay:
		prev := now.AddDate(0, 0, -1)
		return Windows{
			Period:   entity.PeriodDay,
			Current:  entity.DateRange{Start: calendar.StartOfDay(now), End: calendar.EndOfDay(now)},
			Previous: entity.DateRange{Start: calendar.StartOfDay(prev), End: calendar.EndOfDay(prev)},
		}
	case entity.PeriodMonth:
		prev := calendar.AddMonths(now, -1)
		return Windows{
			Period:   entity.PeriodMonth,
			Current:  entity.DateRange{Start: calendar.StartOfMonth(now), End: calendar.EndOfMonth(now)},
			Previous: entity.DateRange{Start: calendar.StartOfMonth(prev), End: calendar.EndOfMonth(prev)},
		}
	default:
		prev := now.AddDate(0, 0, -7)
		return Windows{
			Period:   entity.PeriodWeek,
			Current:  entity.DateRange{Start: calendar.StartOfWeek(now), End: calendar.EndOfWeek(now)},
			Previous: entity.DateRange{Start: calendar.StartOfWeek(prev), End: calendar.EndOfWeek(prev)},
		}
	}
}
