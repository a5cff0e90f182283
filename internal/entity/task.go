package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Recurrence string

const (
	RecurrenceNone     Recurrence = "NONE"
	RecurrenceDaily    Recurrence = "DAILY"
	RecurrenceWeekdays Recurrence = "WEEKDAYS"
	RecurrenceWeekly   Recurrence = "WEEKLY"
	RecurrenceBiweekly Recurrence = "BIWEEKLY"
	RecurrenceMonthly  Recurrence = "MONTHLY"
	RecurrenceYearly   Recurrence = "YEARLY"
	RecurrenceCustom   Recurrence = "CUSTOM"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekdays, RecurrenceWeekly,
		RecurrenceBiweekly, RecurrenceMonthly, RecurrenceYearly, RecurrenceCustom:
		return true
	}
	return false
}

type Task struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"user_id"`
	Title                 string     `json:"title"`
	Description           *string    `json:"description"`
	DueDate               *time.Time `json:"due_date"`
	Priority              Priority   `json:"priority"`
	Completed             bool       `json:"completed"`
	Recurrence            Recurrence `json:"recurrence"`
	RecurrenceEnd         *time.Time `json:"recurrence_end"`
	EstimatedMinutes      *int       `json:"estimated_minutes"`
	ReminderTime          *time.Time `json:"reminder_time"`
	Tags                  []string   `json:"tags"`
	Category              *string    `json:"category"`
	OccurrenceGeneratedAt *time.Time `json:"occurrence_generated_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// CreateTaskRequest - запись новой задачи, id и временные метки назначает хранилище.
// Completed всегда false.
type CreateTaskRequest struct {
	UserID           uuid.UUID  `json:"-"`
	Title            string     `json:"title" validate:"required,min=1,max=255"`
	Description      *string    `json:"description"`
	DueDate          *time.Time `json:"due_date"`
	Priority         Priority   `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Recurrence       Recurrence `json:"recurrence" validate:"omitempty,oneof=NONE DAILY WEEKDAYS WEEKLY BIWEEKLY MONTHLY YEARLY CUSTOM"`
	RecurrenceEnd    *time.Time `json:"recurrence_end"`
	EstimatedMinutes *int       `json:"estimated_minutes" validate:"omitempty,gt=0"`
	ReminderTime     *time.Time `json:"reminder_time"`
	Tags             []string   `json:"tags"`
	Category         *string    `json:"category"`
}

// ApplyDefaults заполняет значения по умолчанию
func (r *CreateTaskRequest) ApplyDefaults() {
	if r.Priority == "" {
		r.Priority = PriorityNormal
	}
	if r.Recurrence == "" {
		r.Recurrence = RecurrenceNone
	}
}

// UpdateTaskRequest - частичное обновление. Для nullable полей Set* отличает
// "не передано" от "передано null".
type UpdateTaskRequest struct {
	Title            *string
	Description      *string
	SetDescription   bool
	DueDate          *time.Time
	SetDueDate       bool
	Priority         *Priority
	Completed        *bool
	Recurrence       *Recurrence
	RecurrenceEnd    *time.Time
	SetRecurrenceEnd bool
	EstimatedMinutes *int
	SetEstimated     bool
	ReminderTime     *time.Time
	SetReminderTime  bool
	Tags             []string
	SetTags          bool
	Category         *string
	SetCategory      bool
}

// Empty - нет ни одного поля для обновления
func (r *UpdateTaskRequest) Empty() bool {
	return r.Title == nil && !r.SetDescription && !r.SetDueDate && r.Priority == nil &&
		r.Completed == nil && r.Recurrence == nil && !r.SetRecurrenceEnd && !r.SetEstimated &&
		!r.SetReminderTime && !r.SetTags && !r.SetCategory
}

// Apply применяет обновление к копии задачи
func (r *UpdateTaskRequest) Apply(task Task) Task {
	if r.Title != nil {
		task.Title = *r.Title
	}
	if r.SetDescription {
		task.Description = r.Description
	}
	if r.SetDueDate {
		task.DueDate = r.DueDate
	}
	if r.Priority != nil {
		task.Priority = *r.Priority
	}
	if r.Completed != nil {
		task.Completed = *r.Completed
	}
	if r.Recurrence != nil {
		task.Recurrence = *r.Recurrence
	}
	if r.SetRecurrenceEnd {
		task.RecurrenceEnd = r.RecurrenceEnd
	}
	if r.SetEstimated {
		task.EstimatedMinutes = r.EstimatedMinutes
	}
	if r.SetReminderTime {
		task.ReminderTime = r.ReminderTime
	}
	if r.SetTags {
		task.Tags = r.Tags
	}
	if r.SetCategory {
		task.Category = r.Category
	}
	return task
}

// JoinTags сериализует теги в строку через запятую для хранилища
func JoinTags(tags []string) *string {
	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		clean = append(clean, tag)
	}
	if len(clean) == 0 {
		return nil
	}
	joined := strings.Join(clean, ",")
	return &joined
}

// ParseTags разбирает строку тегов из хранилища
func ParseTags(raw *string) []string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parts := strings.Split(*raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
