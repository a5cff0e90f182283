package repository

import (
	"context"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/google/uuid"
)

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByTaskId(ctx context.Context, taskId uuid.UUID) (*entity.Task, error)
	Update(ctx context.Context, task *entity.Task) (*entity.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) ([]entity.Task, error)
	// ListRecurringPending - выполненные повторяющиеся задачи без сгенерированного следующего вхождения
	ListRecurringPending(ctx context.Context, limit int) ([]entity.Task, error)
	MarkOccurrenceGenerated(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ITaskQuery - агрегирующие запросы по задачам одного пользователя
type ITaskQuery interface {
	Count(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error)
	SumEstimatedMinutes(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error)
	GroupCount(ctx context.Context, userID uuid.UUID, field entity.GroupField) (map[entity.GroupKey]int, error)
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]entity.TaskAudit, error)
}
