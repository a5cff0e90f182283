package entity

import "time"

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type CategoryCount struct {
	Category *string `json:"category"`
	Count    int     `json:"count"`
}

type PriorityCount struct {
	Priority Priority `json:"priority"`
	Count    int      `json:"count"`
}

// AnalyticsSnapshot вычисляется на каждый запрос и не сохраняется
type AnalyticsSnapshot struct {
	Period                       string          `json:"period"`
	TotalTasks                   int             `json:"total_tasks"`
	CompletedTasksCurrentPeriod  int             `json:"completed_tasks_current_period"`
	CompletedTasksPreviousPeriod int             `json:"completed_tasks_previous_period"`
	TotalTimeSpent               int             `json:"total_time_spent"`
	TasksByCategory              []CategoryCount `json:"tasks_by_category"`
	TasksByPriority              []PriorityCount `json:"tasks_by_priority"`
	OverdueTasks                 int             `json:"overdue_tasks"`
	TasksDueSoon                 int             `json:"tasks_due_soon"`
	CompletionRate               int             `json:"completion_rate"`
	ProductivityTrend            int             `json:"productivity_trend"`
	DateRange                    DateRange       `json:"date_range"`
	PreviousDateRange            DateRange       `json:"previous_date_range"`
}
