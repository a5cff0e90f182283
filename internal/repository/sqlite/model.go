package sqlite

import (
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/google/uuid"
)

type taskModel struct {
	ID                    uuid.UUID `gorm:"type:text;primaryKey"`
	UserID                uuid.UUID `gorm:"type:text;index"`
	Title                 string    `gorm:"size:255;not null"`
	Description           *string
	DueDate               *time.Time `gorm:"index"`
	Priority              string     `gorm:"size:16;not null;default:NORMAL"`
	Completed             bool       `gorm:"not null;default:false"`
	Recurrence            string     `gorm:"size:16;not null;default:NONE"`
	RecurrenceEnd         *time.Time
	EstimatedMinutes      *int
	ReminderTime          *time.Time
	Tags                  *string
	Category              *string `gorm:"size:255"`
	OccurrenceGeneratedAt *time.Time
	CreatedAt             time.Time `gorm:"index"`
	UpdatedAt             time.Time `gorm:"index"`
}

func (taskModel) TableName() string { return "task" }

type taskAuditModel struct {
	ID         int       `gorm:"primaryKey;autoIncrement"`
	UserID     uuid.UUID `gorm:"type:text;not null"`
	Action     string    `gorm:"size:32;not null"`
	EntityType string    `gorm:"size:32;not null"`
	EntityID   uuid.UUID `gorm:"type:text;index;not null"`
	OldValues  *string
	NewValues  *string
	Changes    *string
	ChangedAt  time.Time
}

func (taskAuditModel) TableName() string { return "task_audit" }

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func fromTask(task *entity.Task) taskModel {
	return taskModel{
		ID:                    task.ID,
		UserID:                task.UserID,
		Title:                 task.Title,
		Description:           task.Description,
		DueDate:               utc(task.DueDate),
		Priority:              string(task.Priority),
		Completed:             task.Completed,
		Recurrence:            string(task.Recurrence),
		RecurrenceEnd:         utc(task.RecurrenceEnd),
		EstimatedMinutes:      task.EstimatedMinutes,
		ReminderTime:          utc(task.ReminderTime),
		Tags:                  entity.JoinTags(task.Tags),
		Category:              task.Category,
		OccurrenceGeneratedAt: utc(task.OccurrenceGeneratedAt),
		CreatedAt:             task.CreatedAt.UTC(),
		UpdatedAt:             task.UpdatedAt.UTC(),
	}
}

func (m taskModel) toEntity() entity.Task {
	return entity.Task{
		ID:                    m.ID,
		UserID:                m.UserID,
		Title:                 m.Title,
		Description:           m.Description,
		DueDate:               m.DueDate,
		Priority:              entity.Priority(m.Priority),
		Completed:             m.Completed,
		Recurrence:            entity.Recurrence(m.Recurrence),
		RecurrenceEnd:         m.RecurrenceEnd,
		EstimatedMinutes:      m.EstimatedMinutes,
		ReminderTime:          m.ReminderTime,
		Tags:                  entity.ParseTags(m.Tags),
		Category:              m.Category,
		OccurrenceGeneratedAt: m.OccurrenceGeneratedAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
