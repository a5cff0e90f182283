package usecase

import (
	"context"
	"log"
	"reflect"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
)

// AuditPublisher интерфейс для публикации событий аудита
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

type TaskService struct {
	taskRepo  repository.ITaskRepository
	auditRepo repository.ITaskAuditRepository
	publisher AuditPublisher
	now       func() time.Time
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	auditRepo repository.ITaskAuditRepository,
	publisher AuditPublisher,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest, userID uuid.UUID) (*entity.Task, error) {
	// владелец всегда из токена
	req.UserID = userID
	req.ApplyDefaults()

	if !req.Priority.Valid() || !req.Recurrence.Valid() {
		return nil, entity.ErrInvalidTaskData
	}
	if req.EstimatedMinutes != nil && *req.EstimatedMinutes <= 0 {
		return nil, entity.ErrInvalidTaskData
	}

	task, err := s.taskRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionCreate, userID, task.ID, nil, task)

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID uuid.UUID, userID uuid.UUID) (*entity.Task, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	if task.UserID != userID {
		return nil, entity.ErrForbidden
	}

	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID uuid.UUID, userID uuid.UUID, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	if req.Empty() {
		return nil, entity.ErrNoFieldsToUpdate
	}

	oldTask, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	next := req.Apply(*oldTask)
	if next.Title == "" || !next.Priority.Valid() || !next.Recurrence.Valid() {
		return nil, entity.ErrInvalidTaskData
	}
	if next.EstimatedMinutes != nil && *next.EstimatedMinutes <= 0 {
		return nil, entity.ErrInvalidTaskData
	}

	updatedTask, err := s.taskRepo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionUpdate, userID, taskID, oldTask, updatedTask)

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID uuid.UUID, userID uuid.UUID) error {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}

	s.sendAuditMessage(entity.ActionDelete, userID, taskID, task, nil)

	return nil
}

// ListTasks возвращает задачи пользователя по фильтру, в том числе для поиска
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) ([]entity.Task, error) {
	return s.taskRepo.List(ctx, userID, filter)
}

// TaskHistory - записи аудита по задаче, новые первыми
func (s *TaskService) TaskHistory(ctx context.Context, taskID uuid.UUID, userID uuid.UUID) ([]entity.TaskAudit, error) {
	if _, err := s.GetTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByTask(ctx, taskID)
}

func (s *TaskService) sendAuditMessage(action entity.ActionType, userID, taskID uuid.UUID, oldTask, newTask *entity.Task) {
	publishAudit(s.publisher, buildAuditMessage(action, userID, taskID, oldTask, newTask, s.now()))
}

func buildAuditMessage(action entity.ActionType, userID, taskID uuid.UUID, oldTask, newTask *entity.Task, at time.Time) *entity.AuditMessage {
	msg := &entity.AuditMessage{
		Action:    action,
		UserID:    userID,
		EntityID:  taskID,
		Timestamp: at,
	}

	if oldTask != nil {
		msg.OldValues = taskSnapshot(oldTask)
	}
	if newTask != nil {
		msg.NewValues = taskSnapshot(newTask)
	}

	if msg.OldValues != nil && msg.NewValues != nil {
		changes := make(map[string]any)
		for key, oldValue := range msg.OldValues {
			newValue := msg.NewValues[key]
			if !reflect.DeepEqual(oldValue, newValue) {
				changes[key] = map[string]any{"old": oldValue, "new": newValue}
			}
		}
		msg.Changes = changes
	}

	return msg
}

// publishAudit отправляет событие асинхронно, ошибка только логируется
func publishAudit(publisher AuditPublisher, msg *entity.AuditMessage) {
	if publisher == nil {
		return
	}
	go func() {
		if err := publisher.PublishAuditMessage(context.Background(), msg); err != nil {
			log.Printf("Ошибка отправки аудита: %v", err)
		}
	}()
}

func taskSnapshot(task *entity.Task) map[string]any {
	return map[string]any{
		"title":             task.Title,
		"description":       deref(task.Description),
		"due_date":          deref(task.DueDate),
		"priority":          string(task.Priority),
		"completed":         task.Completed,
		"recurrence":        string(task.Recurrence),
		"recurrence_end":    deref(task.RecurrenceEnd),
		"estimated_minutes": deref(task.EstimatedMinutes),
		"reminder_time":     deref(task.ReminderTime),
		"tags":              task.Tags,
		"category":          deref(task.Category),
		"user_id":           task.UserID.String(),
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
