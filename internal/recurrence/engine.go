// Package recurrence вычисляет следующее вхождение повторяющейся задачи.
// Пакет не обращается к хранилищу и не читает текущее время сам.
package recurrence

import (
	"fmt"
	"time"

	"github.com/St1cky1/task-planner/internal/calendar"
	"github.com/St1cky1/task-planner/internal/entity"
)

// GenerateNext строит запись следующего вхождения задачи source относительно now.
// Исходная задача не изменяется.
func GenerateNext(source entity.Task, now time.Time) (*entity.CreateTaskRequest, error) {
	if source.Recurrence == entity.RecurrenceNone || source.Recurrence == "" {
		return nil, entity.ErrNotRecurring
	}
	if source.RecurrenceEnd != nil && now.After(*source.RecurrenceEnd) {
		return nil, entity.ErrRecurrenceEnded
	}

	base := now
	if source.DueDate != nil {
		base = *source.DueDate
	}

	next, err := Advance(source.Recurrence, base)
	if err != nil {
		return nil, err
	}

	// время суток берем из исходного срока
	if source.DueDate != nil {
		due := *source.DueDate
		y, m, d := next.Date()
		next = time.Date(y, m, d, due.Hour(), due.Minute(), next.Second(), next.Nanosecond(), next.Location())
	}

	record := &entity.CreateTaskRequest{
		UserID:           source.UserID,
		Title:            source.Title,
		Description:      cloneString(source.Description),
		DueDate:          &next,
		Priority:         source.Priority,
		Recurrence:       source.Recurrence,
		RecurrenceEnd:    cloneTime(source.RecurrenceEnd),
		EstimatedMinutes: cloneInt(source.EstimatedMinutes),
		Category:         cloneString(source.Category),
	}
	if source.Tags != nil {
		record.Tags = append([]string(nil), source.Tags...)
	}

	// смещение напоминания сохраняется, без срока напоминание не переносится
	if source.ReminderTime != nil && source.DueDate != nil {
		offset := source.DueDate.Sub(*source.ReminderTime)
		reminder := next.Add(-offset)
		record.ReminderTime = &reminder
	}

	return record, nil
}

// Advance применяет правило повторения к дате base
func Advance(rule entity.Recurrence, base time.Time) (time.Time, error) {
	switch rule {
	case entity.RecurrenceDaily:
		return base.AddDate(0, 0, 1), nil
	case entity.RecurrenceWeekdays:
		// выходной результат сдвигается еще на 2 дня, воскресенье дает вторник
		next := base.AddDate(0, 0, 1)
		if calendar.IsWeekend(next) {
			next = next.AddDate(0, 0, 2)
		}
		return next, nil
	case entity.RecurrenceWeekly:
		return base.AddDate(0, 0, 7), nil
	case entity.RecurrenceBiweekly:
		return base.AddDate(0, 0, 14), nil
	case entity.RecurrenceMonthly:
		return calendar.AddMonths(base, 1), nil
	case entity.RecurrenceYearly:
		return calendar.AddYears(base, 1), nil
	case entity.RecurrenceCustom:
		return advanceCustom(base), nil
	case entity.RecurrenceNone:
		return time.Time{}, entity.ErrNotRecurring
	default:
		return time.Time{}, fmt.Errorf("unknown recurrence %q: %w", rule, entity.ErrInvalidTaskData)
	}
}

// advanceCustom пока совпадает с DAILY: своих правил у CUSTOM нет.
// TODO: наборы дней недели для CUSTOM, когда появится формат хранения правил.
func advanceCustom(base time.Time) time.Time {
	return base.AddDate(0, 0, 1)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
