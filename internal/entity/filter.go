package entity

import "time"

// TimeRange - границы по времени, nil означает отсутствие границы
type TimeRange struct {
	Gte *time.Time
	Gt  *time.Time
	Lte *time.Time
	Lt  *time.Time
}

func (r *TimeRange) Contains(t *time.Time) bool {
	if r == nil {
		return true
	}
	if t == nil {
		return false
	}
	if r.Gte != nil && t.Before(*r.Gte) {
		return false
	}
	if r.Gt != nil && !t.After(*r.Gt) {
		return false
	}
	if r.Lte != nil && t.After(*r.Lte) {
		return false
	}
	if r.Lt != nil && !t.Before(*r.Lt) {
		return false
	}
	return true
}

// Between - закрытый интервал [from, to]
func Between(from, to time.Time) *TimeRange {
	return &TimeRange{Gte: &from, Lte: &to}
}

// TaskFilter - условия выборки задач одного пользователя.
// SearchTerm и Tags объединяются через OR.
type TaskFilter struct {
	Completed        *bool
	Category         *string
	Priority         *Priority
	Recurrence       *Recurrence
	NotRecurrence    *Recurrence
	SearchTerm       string
	Tags             []string
	CreatedAt        *TimeRange
	UpdatedAt        *TimeRange
	DueDate          *TimeRange
	EstimatedLT      *int
	EstimatedGT      *int
	RequireEstimated bool
}

type GroupField string

const (
	GroupByCategory GroupField = "category"
	GroupByPriority GroupField = "priority"
)

// GroupKey - значение поля группировки, Null для задач без значения
type GroupKey struct {
	Value string
	Null  bool
}
