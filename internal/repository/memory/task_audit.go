package memory

import (
	"context"
	"sync"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
)

var _ repository.ITaskAuditRepository = (*TaskAuditStore)(nil)

type TaskAuditStore struct {
	mu     sync.RWMutex
	nextID int
	audits []entity.TaskAudit
}

func NewTaskAuditStore() *TaskAuditStore {
	return &TaskAuditStore{}
}

func (s *TaskAuditStore) Create(ctx context.Context, audit *entity.TaskAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	audit.ID = s.nextID
	s.audits = append(s.audits, *audit)
	return nil
}

func (s *TaskAuditStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]entity.TaskAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.TaskAudit
	for _, audit := range s.audits {
		if audit.EntityID == taskID {
			out = append(out, audit)
		}
	}
	return out, nil
}
