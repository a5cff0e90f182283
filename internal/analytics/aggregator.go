// Package analytics считает метрики продуктивности пользователя за период
// и сравнивает их с предыдущим периодом.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
)

// DueSoonWindow - горизонт для метрики tasksDueSoon
const DueSoonWindow = 48 * time.Hour

type Aggregator struct {
	query repository.ITaskQuery
}

func NewAggregator(query repository.ITaskQuery) *Aggregator {
	return &Aggregator{query: query}
}

// Compute строит снимок метрик. Результат зависит только от period, now и
// состояния задач, поэтому повторный вызов с теми же данными дает тот же снимок.
func (a *Aggregator) Compute(ctx context.Context, userID uuid.UUID, period string, now time.Time) (*entity.AnalyticsSnapshot, error) {
	if period == "" {
		period = string(entity.PeriodWeek)
	}
	w := ResolveWindows(period, now)

	completed := true
	notCompleted := false
	current := entity.Between(w.Current.Start, w.Current.End)
	previous := entity.Between(w.Previous.Start, w.Previous.End)
	soon := now.Add(DueSoonWindow)

	snapshot := &entity.AnalyticsSnapshot{
		Period:            period,
		DateRange:         w.Current,
		PreviousDateRange: w.Previous,
	}

	var err error

	// 1. Всего задач
	if snapshot.TotalTasks, err = a.query.Count(ctx, userID, entity.TaskFilter{}); err != nil {
		return nil, fmt.Errorf("count total tasks: %w", err)
	}

	// 2-3. Выполненные в текущем и предыдущем периоде
	if snapshot.CompletedTasksCurrentPeriod, err = a.query.Count(ctx, userID, entity.TaskFilter{
		Completed: &completed,
		UpdatedAt: current,
	}); err != nil {
		return nil, fmt.Errorf("count completed current: %w", err)
	}
	if snapshot.CompletedTasksPreviousPeriod, err = a.query.Count(ctx, userID, entity.TaskFilter{
		Completed: &completed,
		UpdatedAt: previous,
	}); err != nil {
		return nil, fmt.Errorf("count completed previous: %w", err)
	}

	// 4. Оценка времени по выполненным задачам
	if snapshot.TotalTimeSpent, err = a.query.SumEstimatedMinutes(ctx, userID, entity.TaskFilter{
		Completed:        &completed,
		UpdatedAt:        current,
		RequireEstimated: true,
	}); err != nil {
		return nil, fmt.Errorf("sum estimated minutes: %w", err)
	}

	// 5-6. Группировки
	byCategory, err := a.query.GroupCount(ctx, userID, entity.GroupByCategory)
	if err != nil {
		return nil, fmt.Errorf("group by category: %w", err)
	}
	snapshot.TasksByCategory = categoryCounts(byCategory)

	byPriority, err := a.query.GroupCount(ctx, userID, entity.GroupByPriority)
	if err != nil {
		return nil, fmt.Errorf("group by priority: %w", err)
	}
	snapshot.TasksByPriority = priorityCounts(byPriority)

	// 7. Просроченные
	if snapshot.OverdueTasks, err = a.query.Count(ctx, userID, entity.TaskFilter{
		Completed: &notCompleted,
		DueDate:   &entity.TimeRange{Lt: &now},
	}); err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	// 8. Срок в ближайшие 48 часов
	if snapshot.TasksDueSoon, err = a.query.Count(ctx, userID, entity.TaskFilter{
		Completed: &notCompleted,
		DueDate:   entity.Between(now, soon),
	}); err != nil {
		return nil, fmt.Errorf("count due soon: %w", err)
	}

	// 9. Доля выполненных от созданных в периоде
	createdCurrent, err := a.query.Count(ctx, userID, entity.TaskFilter{CreatedAt: current})
	if err != nil {
		return nil, fmt.Errorf("count created current: %w", err)
	}
	snapshot.CompletionRate = CompletionRate(snapshot.CompletedTasksCurrentPeriod, createdCurrent)

	// 10. Тренд относительно предыдущего периода
	snapshot.ProductivityTrend = ProductivityTrend(snapshot.CompletedTasksCurrentPeriod, snapshot.CompletedTasksPreviousPeriod)

	return snapshot, nil
}

// CompletionRate - процент выполненных от созданных, 0 при пустом знаменателе
func CompletionRate(completed, created int) int {
	if created == 0 {
		return 0
	}
	return roundPercent(float64(completed) / float64(created))
}

// ProductivityTrend - изменение числа выполненных задач в процентах
func ProductivityTrend(current, previous int) int {
	if previous > 0 {
		return roundPercent(float64(current-previous) / float64(previous))
	}
	if current > 0 {
		return 100
	}
	return 0
}

// половины округляются вверх: -87.5 -> -87, 62.5 -> 63
func roundPercent(ratio float64) int {
	return int(math.Floor(ratio*100 + 0.5))
}

func categoryCounts(groups map[entity.GroupKey]int) []entity.CategoryCount {
	keys := sortedKeys(groups)
	out := make([]entity.CategoryCount, 0, len(keys))
	for _, key := range keys {
		item := entity.CategoryCount{Count: groups[key]}
		if !key.Null {
			category := key.Value
			item.Category = &category
		}
		out = append(out, item)
	}
	return out
}

func priorityCounts(groups map[entity.GroupKey]int) []entity.PriorityCount {
	keys := sortedKeys(groups)
	out := make([]entity.PriorityCount, 0, len(keys))
	for _, key := range keys {
		out = append(out, entity.PriorityCount{Priority: entity.Priority(key.Value), Count: groups[key]})
	}
	return out
}

// null-группа первой, остальные по значению
func sortedKeys(groups map[entity.GroupKey]int) []entity.GroupKey {
	keys := make([]entity.GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Null != keys[j].Null {
			return keys[i].Null
		}
		return keys[i].Value < keys[j].Value
	})
	return keys
}
