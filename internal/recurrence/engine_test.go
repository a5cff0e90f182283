package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/google/uuid"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func recurringTask(rule entity.Recurrence, due *time.Time) entity.Task {
	return entity.Task{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Title:      "Standup",
		Priority:   entity.PriorityHigh,
		Recurrence: rule,
		DueDate:    due,
	}
}

func TestGenerateNextNotRecurring(t *testing.T) {
	task := recurringTask(entity.RecurrenceNone, ptr(at(2024, time.June, 14, 9, 0)))

	result, err := GenerateNext(task, at(2024, time.June, 14, 8, 0))
	if !errors.Is(err, entity.ErrNotRecurring) {
		t.Fatalf("Expected ErrNotRecurring, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil record, got %v", result)
	}
}

func TestGenerateNextRecurrenceEnded(t *testing.T) {
	task := recurringTask(entity.RecurrenceDaily, ptr(at(2024, time.June, 14, 9, 0)))
	task.RecurrenceEnd = ptr(at(2024, time.June, 20, 0, 0))

	_, err := GenerateNext(task, at(2024, time.June, 20, 0, 1))
	if !errors.Is(err, entity.ErrRecurrenceEnded) {
		t.Fatalf("Expected ErrRecurrenceEnded, got %v", err)
	}

	// ровно в момент окончания еще можно генерировать
	if _, err := GenerateNext(task, at(2024, time.June, 20, 0, 0)); err != nil {
		t.Fatalf("Expected no error at the end instant, got %v", err)
	}
}

func TestGenerateNextNeverEndsWithoutRecurrenceEnd(t *testing.T) {
	rules := []entity.Recurrence{
		entity.RecurrenceDaily, entity.RecurrenceWeekdays, entity.RecurrenceWeekly,
		entity.RecurrenceBiweekly, entity.RecurrenceMonthly, entity.RecurrenceYearly,
		entity.RecurrenceCustom,
	}
	farFuture := at(2999, time.January, 1, 0, 0)

	for _, rule := range rules {
		task := recurringTask(rule, ptr(at(2024, time.June, 14, 9, 0)))
		if _, err := GenerateNext(task, farFuture); err != nil {
			t.Errorf("%s: expected no error, got %v", rule, err)
		}
	}
}

func TestGenerateNextAdvancement(t *testing.T) {
	friday := at(2024, time.June, 14, 9, 30)

	cases := []struct {
		name string
		rule entity.Recurrence
		due  time.Time
		want time.Time
	}{
		{"daily from friday", entity.RecurrenceDaily, friday, at(2024, time.June, 15, 9, 30)},
		{"weekdays from friday", entity.RecurrenceWeekdays, friday, at(2024, time.June, 17, 9, 30)},
		{"weekdays from thursday", entity.RecurrenceWeekdays, at(2024, time.June, 13, 9, 30), friday},
		{"weekdays from saturday", entity.RecurrenceWeekdays, at(2024, time.June, 15, 9, 30), at(2024, time.June, 18, 9, 30)},
		{"weekdays from sunday", entity.RecurrenceWeekdays, at(2024, time.June, 16, 9, 30), at(2024, time.June, 17, 9, 30)},
		{"weekly", entity.RecurrenceWeekly, friday, at(2024, time.June, 21, 9, 30)},
		{"biweekly", entity.RecurrenceBiweekly, friday, at(2024, time.June, 28, 9, 30)},
		{"monthly jan31 non-leap", entity.RecurrenceMonthly, at(2023, time.January, 31, 18, 0), at(2023, time.February, 28, 18, 0)},
		{"monthly jan31 leap", entity.RecurrenceMonthly, at(2024, time.January, 31, 18, 0), at(2024, time.February, 29, 18, 0)},
		{"yearly leap day", entity.RecurrenceYearly, at(2024, time.February, 29, 7, 0), at(2025, time.February, 28, 7, 0)},
		{"custom aliases daily", entity.RecurrenceCustom, friday, at(2024, time.June, 15, 9, 30)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := recurringTask(tc.rule, ptr(tc.due))
			result, err := GenerateNext(task, at(2024, time.June, 1, 0, 0))
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if result.DueDate == nil || !result.DueDate.Equal(tc.want) {
				t.Errorf("Expected due date %v, got %v", tc.want, result.DueDate)
			}
		})
	}
}

func TestGenerateNextWithoutDueDateUsesNow(t *testing.T) {
	now := time.Date(2024, time.June, 12, 13, 17, 42, 0, time.UTC)
	task := recurringTask(entity.RecurrenceWeekly, nil)
	task.ReminderTime = ptr(at(2024, time.June, 12, 12, 0))

	result, err := GenerateNext(task, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := now.AddDate(0, 0, 7)
	if !result.DueDate.Equal(want) {
		t.Errorf("Expected due date %v, got %v", want, result.DueDate)
	}
	if result.ReminderTime != nil {
		t.Errorf("Expected reminder to be dropped without due date, got %v", result.ReminderTime)
	}
}

func TestGenerateNextPreservesReminderOffset(t *testing.T) {
	due := at(2024, time.June, 14, 9, 30)
	task := recurringTask(entity.RecurrenceWeekdays, &due)
	task.ReminderTime = ptr(due.Add(-30 * time.Minute))

	result, err := GenerateNext(task, at(2024, time.June, 14, 8, 0))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.ReminderTime == nil {
		t.Fatal("Expected reminder time to be set")
	}
	if offset := result.DueDate.Sub(*result.ReminderTime); offset != 30*time.Minute {
		t.Errorf("Expected offset 30m, got %v", offset)
	}
}

func TestGenerateNextReminderAfterDueDate(t *testing.T) {
	due := at(2024, time.June, 14, 9, 30)
	task := recurringTask(entity.RecurrenceDaily, &due)
	task.ReminderTime = ptr(due.Add(15 * time.Minute))

	result, err := GenerateNext(task, due)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if offset := result.ReminderTime.Sub(*result.DueDate); offset != 15*time.Minute {
		t.Errorf("Expected reminder 15m after due date, got %v", offset)
	}
}

func TestGenerateNextPreservesTimeOfDayAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 30 марта 2024 - переход на летнее время в ночь на 31
	due := time.Date(2024, time.March, 30, 9, 0, 0, 0, loc)
	task := recurringTask(entity.RecurrenceDaily, &due)

	result, err := GenerateNext(task, due)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.DueDate.Hour() != 9 || result.DueDate.Minute() != 0 {
		t.Errorf("Expected 09:00 local, got %s", result.DueDate.Format("15:04"))
	}
}

func TestGenerateNextCopiesFields(t *testing.T) {
	due := at(2024, time.June, 14, 9, 30)
	task := recurringTask(entity.RecurrenceMonthly, &due)
	task.Description = ptr("weekly sync")
	task.Category = ptr("Work")
	task.Tags = []string{"team", "sync"}
	task.EstimatedMinutes = ptr(45)
	task.RecurrenceEnd = ptr(at(2025, time.January, 1, 0, 0))
	task.Completed = true

	result, err := GenerateNext(task, due)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Title != task.Title || *result.Description != "weekly sync" || *result.Category != "Work" {
		t.Errorf("Expected text fields to be copied, got %+v", result)
	}
	if result.Priority != entity.PriorityHigh || result.Recurrence != entity.RecurrenceMonthly {
		t.Errorf("Expected priority and recurrence to be copied, got %s %s", result.Priority, result.Recurrence)
	}
	if *result.EstimatedMinutes != 45 || !result.RecurrenceEnd.Equal(*task.RecurrenceEnd) {
		t.Errorf("Expected estimate and recurrence end to be copied, got %+v", result)
	}
	if result.UserID != task.UserID {
		t.Errorf("Expected owner %s, got %s", task.UserID, result.UserID)
	}

	// запись не должна разделять память с исходной задачей
	result.Tags[0] = "changed"
	*result.Category = "changed"
	if task.Tags[0] != "team" || *task.Category != "Work" {
		t.Error("Expected source task to stay unchanged")
	}
	if !task.DueDate.Equal(due) {
		t.Error("Expected source due date to stay unchanged")
	}
}

func TestAdvanceUnknownRule(t *testing.T) {
	_, err := Advance(entity.Recurrence("HOURLY"), at(2024, time.June, 14, 9, 0))
	if !errors.Is(err, entity.ErrInvalidTaskData) {
		t.Errorf("Expected ErrInvalidTaskData, got %v", err)
	}
}
