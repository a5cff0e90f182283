package sqlite

import (
	"context"
	"fmt"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ repository.ITaskAuditRepository = (*TaskAuditRepository)(nil)

type TaskAuditRepository struct {
	db *gorm.DB
}

func NewTaskAuditRepository(db *gorm.DB) *TaskAuditRepository {
	return &TaskAuditRepository{db: db}
}

func (r *TaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	if audit.ChangedAt.IsZero() {
		audit.ChangedAt = r.db.NowFunc()
	}
	model := taskAuditModel{
		UserID:     audit.UserID,
		Action:     string(audit.Action),
		EntityType: audit.EntityType,
		EntityID:   audit.EntityID,
		OldValues:  audit.OldValues,
		NewValues:  audit.NewValues,
		Changes:    audit.Changes,
		ChangedAt:  audit.ChangedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("create audit: %w", err)
	}
	audit.ID = model.ID
	return nil
}

func (r *TaskAuditRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]entity.TaskAudit, error) {
	var models []taskAuditModel
	err := r.db.WithContext(ctx).
		Where("entity_id = ? AND entity_type = ?", taskID, "task").
		Order("changed_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	audits := make([]entity.TaskAudit, 0, len(models))
	for _, m := range models {
		audits = append(audits, entity.TaskAudit{
			ID:         m.ID,
			UserID:     m.UserID,
			Action:     entity.ActionType(m.Action),
			EntityType: m.EntityType,
			EntityID:   m.EntityID,
			OldValues:  m.OldValues,
			NewValues:  m.NewValues,
			Changes:    m.Changes,
			ChangedAt:  m.ChangedAt,
		})
	}
	return audits, nil
}
