package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	_ repository.ITaskRepository = (*TaskRepository)(nil)
	_ repository.ITaskQuery      = (*TaskRepository)(nil)
)

// TaskRepository handles CRUD and aggregate queries for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	req.ApplyDefaults()
	now := r.db.NowFunc()

	model := fromTask(&entity.Task{
		ID:               uuid.New(),
		UserID:           req.UserID,
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          req.DueDate,
		Priority:         req.Priority,
		Recurrence:       req.Recurrence,
		RecurrenceEnd:    req.RecurrenceEnd,
		EstimatedMinutes: req.EstimatedMinutes,
		ReminderTime:     req.ReminderTime,
		Tags:             req.Tags,
		Category:         req.Category,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	task := model.toEntity()
	return &task, nil
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId uuid.UUID) (*entity.Task, error) {
	var model taskModel
	if err := r.db.WithContext(ctx).Where("id = ?", taskId).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	task := model.toEntity()
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	model := fromTask(task)
	model.UpdatedAt = r.db.NowFunc()

	result := r.db.WithContext(ctx).Model(&taskModel{}).
		Where("id = ?", task.ID).
		Select("*").
		Omit("id", "user_id", "created_at", "occurrence_generated_at").
		Updates(&model)
	if result.Error != nil {
		return nil, fmt.Errorf("update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entity.ErrTaskNotFound
	}

	return r.GetByTaskId(ctx, task.ID)
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskModel{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) ([]entity.Task, error) {
	var models []taskModel
	err := r.scoped(ctx, userID, filter).
		Order("completed ASC, due_date IS NULL, due_date ASC, created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

func (r *TaskRepository) ListRecurringPending(ctx context.Context, limit int) ([]entity.Task, error) {
	var models []taskModel
	err := r.db.WithContext(ctx).
		Where("completed = ? AND recurrence <> ? AND occurrence_generated_at IS NULL", true, string(entity.RecurrenceNone)).
		Order("updated_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

func (r *TaskRepository) MarkOccurrenceGenerated(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&taskModel{}).
		Where("id = ?", id).
		UpdateColumn("occurrence_generated_at", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Count(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error) {
	var count int64
	if err := r.scoped(ctx, userID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *TaskRepository) SumEstimatedMinutes(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error) {
	var total int64
	err := r.scoped(ctx, userID, filter).
		Select("COALESCE(SUM(estimated_minutes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *TaskRepository) GroupCount(ctx context.Context, userID uuid.UUID, field entity.GroupField) (map[entity.GroupKey]int, error) {
	var column string
	switch field {
	case entity.GroupByCategory:
		column = "category"
	case entity.GroupByPriority:
		column = "priority"
	default:
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	rows, err := r.db.WithContext(ctx).Model(&taskModel{}).
		Select(column+", COUNT(*)").
		Where("user_id = ?", userID).
		Group(column).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make(map[entity.GroupKey]int)
	for rows.Next() {
		var value *string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, err
		}
		if value == nil {
			groups[entity.GroupKey{Null: true}] += count
		} else {
			groups[entity.GroupKey{Value: *value}] += count
		}
	}
	return groups, rows.Err()
}

// scoped применяет фильтр к запросу по задачам пользователя
func (r *TaskRepository) scoped(ctx context.Context, userID uuid.UUID, f entity.TaskFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&taskModel{}).Where("user_id = ?", userID)

	if f.Completed != nil {
		q = q.Where("completed = ?", *f.Completed)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", string(*f.Priority))
	}
	if f.Recurrence != nil {
		q = q.Where("recurrence = ?", string(*f.Recurrence))
	}
	if f.NotRecurrence != nil {
		q = q.Where("recurrence <> ?", string(*f.NotRecurrence))
	}
	q = whereRange(q, "created_at", f.CreatedAt)
	q = whereRange(q, "updated_at", f.UpdatedAt)
	q = whereRange(q, "due_date", f.DueDate)
	if f.RequireEstimated {
		q = q.Where("estimated_minutes IS NOT NULL")
	}
	if f.EstimatedLT != nil {
		q = q.Where("estimated_minutes < ?", *f.EstimatedLT)
	}
	if f.EstimatedGT != nil {
		q = q.Where("estimated_minutes > ?", *f.EstimatedGT)
	}

	// instr чувствителен к регистру, в отличие от LIKE в SQLite
	var anyOf []string
	var args []any
	if f.SearchTerm != "" {
		anyOf = append(anyOf, "instr(title, ?) > 0", "instr(COALESCE(description, ''), ?) > 0")
		args = append(args, f.SearchTerm, f.SearchTerm)
	}
	for _, tag := range f.Tags {
		anyOf = append(anyOf, "instr(COALESCE(tags, ''), ?) > 0")
		args = append(args, tag)
	}
	if len(anyOf) > 0 {
		q = q.Where("("+strings.Join(anyOf, " OR ")+")", args...)
	}

	return q
}

func whereRange(q *gorm.DB, column string, r *entity.TimeRange) *gorm.DB {
	if r == nil {
		return q
	}
	if r.Gte != nil {
		q = q.Where(column+" >= ?", r.Gte.UTC())
	}
	if r.Gt != nil {
		q = q.Where(column+" > ?", r.Gt.UTC())
	}
	if r.Lte != nil {
		q = q.Where(column+" <= ?", r.Lte.UTC())
	}
	if r.Lt != nil {
		q = q.Where(column+" < ?", r.Lt.UTC())
	}
	return q
}

func toEntities(models []taskModel) []entity.Task {
	tasks := make([]entity.Task, 0, len(models))
	for _, m := range models {
		tasks = append(tasks, m.toEntity())
	}
	return tasks
}
