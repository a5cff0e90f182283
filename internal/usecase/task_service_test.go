package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc                  func(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByTaskIdFunc             func(ctx context.Context, taskId uuid.UUID) (*entity.Task, error)
	UpdateFunc                  func(ctx context.Context, task *entity.Task) (*entity.Task, error)
	DeleteFunc                  func(ctx context.Context, id uuid.UUID) error
	ListFunc                    func(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) ([]entity.Task, error)
	ListRecurringPendingFunc    func(ctx context.Context, limit int) ([]entity.Task, error)
	MarkOccurrenceGeneratedFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByTaskId(ctx context.Context, taskId uuid.UUID) (*entity.Task, error) {
	if m.GetByTaskIdFunc != nil {
		return m.GetByTaskIdFunc(ctx, taskId)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskRepository) List(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) ([]entity.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (m *MockTaskRepository) ListRecurringPending(ctx context.Context, limit int) ([]entity.Task, error) {
	if m.ListRecurringPendingFunc != nil {
		return m.ListRecurringPendingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockTaskRepository) MarkOccurrenceGenerated(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.MarkOccurrenceGeneratedFunc != nil {
		return m.MarkOccurrenceGeneratedFunc(ctx, id, at)
	}
	return nil
}

// MockTaskAuditRepository - мок для ITaskAuditRepository
type MockTaskAuditRepository struct {
	CreateFunc     func(ctx context.Context, audit *entity.TaskAudit) error
	ListByTaskFunc func(ctx context.Context, taskID uuid.UUID) ([]entity.TaskAudit, error)
}

var _ repository.ITaskAuditRepository = (*MockTaskAuditRepository)(nil)

func (m *MockTaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, audit)
	}
	return nil
}

func (m *MockTaskAuditRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]entity.TaskAudit, error) {
	if m.ListByTaskFunc != nil {
		return m.ListByTaskFunc(ctx, taskID)
	}
	return nil, nil
}

// ChanPublisher складывает отправленные сообщения в канал
type ChanPublisher struct {
	messages chan *entity.AuditMessage
}

var _ AuditPublisher = (*ChanPublisher)(nil)

func NewChanPublisher() *ChanPublisher {
	return &ChanPublisher{messages: make(chan *entity.AuditMessage, 16)}
}

func (p *ChanPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	p.messages <- message
	return nil
}

func (p *ChanPublisher) next(t *testing.T) *entity.AuditMessage {
	t.Helper()
	select {
	case msg := <-p.messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("Expected audit message, got none")
		return nil
	}
}

func ptr[T any](v T) *T { return &v }

// Tests

func TestCreateTaskSuccess(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	publisher := NewChanPublisher()

	var captured *entity.CreateTaskRequest
	mockTaskRepo := &MockTaskRepository{
		CreateFunc: func(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
			captured = req
			return &entity.Task{ID: uuid.New(), UserID: req.UserID, Title: req.Title, Priority: req.Priority, Recurrence: req.Recurrence}, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, publisher)

	req := &entity.CreateTaskRequest{UserID: uuid.New(), Title: "Test Task"}
	result, err := service.CreateTask(ctx, req, owner)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if captured.UserID != owner {
		t.Errorf("Expected owner %s, got %s", owner, captured.UserID)
	}
	if result.Priority != entity.PriorityNormal || result.Recurrence != entity.RecurrenceNone {
		t.Errorf("Expected defaults NORMAL/NONE, got %s/%s", result.Priority, result.Recurrence)
	}

	msg := publisher.next(t)
	if msg.Action != entity.ActionCreate || msg.EntityID != result.ID {
		t.Errorf("Unexpected audit message %+v", msg)
	}
	if msg.OldValues != nil {
		t.Errorf("Expected no old values on create, got %v", msg.OldValues)
	}
}

func TestCreateTaskInvalidData(t *testing.T) {
	service := NewTaskService(&MockTaskRepository{}, &MockTaskAuditRepository{}, nil)

	cases := []*entity.CreateTaskRequest{
		{Title: "x", Priority: "SOMEDAY"},
		{Title: "x", Recurrence: "HOURLY"},
		{Title: "x", EstimatedMinutes: ptr(0)},
	}
	for _, req := range cases {
		if _, err := service.CreateTask(context.Background(), req, uuid.New()); err != entity.ErrInvalidTaskData {
			t.Errorf("Expected ErrInvalidTaskData for %+v, got %v", req, err)
		}
	}
}

func TestGetTaskForbidden(t *testing.T) {
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId uuid.UUID) (*entity.Task, error) {
			return &entity.Task{ID: taskId, UserID: uuid.New()}, nil
		},
	}
	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, nil)

	if _, err := service.GetTask(context.Background(), uuid.New(), uuid.New()); err != entity.ErrForbidden {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	service := NewTaskService(&MockTaskRepository{}, &MockTaskAuditRepository{}, nil)

	if _, err := service.GetTask(context.Background(), uuid.New(), uuid.New()); err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateTaskSuccess(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	taskID := uuid.New()
	publisher := NewChanPublisher()

	existing := &entity.Task{
		ID:         taskID,
		UserID:     owner,
		Title:      "Old Title",
		Priority:   entity.PriorityLow,
		Recurrence: entity.RecurrenceNone,
		Category:   ptr("Work"),
	}

	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
			copied := *existing
			return &copied, nil
		},
		UpdateFunc: func(ctx context.Context, task *entity.Task) (*entity.Task, error) {
			return task, nil
		},
	}
	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, publisher)

	result, err := service.UpdateTask(ctx, taskID, owner, &entity.UpdateTaskRequest{
		Title:     ptr("New Title"),
		Completed: ptr(true),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Title != "New Title" || !result.Completed {
		t.Errorf("Expected updated title and completed, got %+v", result)
	}
	if result.Category == nil || *result.Category != "Work" {
		t.Errorf("Expected untouched category, got %v", result.Category)
	}

	msg := publisher.next(t)
	if msg.Action != entity.ActionUpdate {
		t.Errorf("Expected Update action, got %s", msg.Action)
	}
	if len(msg.Changes) != 2 {
		t.Errorf("Expected 2 changed fields, got %v", msg.Changes)
	}
	if _, ok := msg.Changes["title"]; !ok {
		t.Errorf("Expected title in changes, got %v", msg.Changes)
	}
}

func TestUpdateTaskNoFields(t *testing.T) {
	service := NewTaskService(&MockTaskRepository{}, &MockTaskAuditRepository{}, nil)

	_, err := service.UpdateTask(context.Background(), uuid.New(), uuid.New(), &entity.UpdateTaskRequest{})
	if err != entity.ErrNoFieldsToUpdate {
		t.Errorf("Expected ErrNoFieldsToUpdate, got %v", err)
	}
}

func TestUpdateTaskRejectsEmptyTitle(t *testing.T) {
	owner := uuid.New()
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
			return &entity.Task{ID: id, UserID: owner, Title: "t", Priority: entity.PriorityLow, Recurrence: entity.RecurrenceNone}, nil
		},
	}
	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, nil)

	_, err := service.UpdateTask(context.Background(), uuid.New(), owner, &entity.UpdateTaskRequest{Title: ptr("")})
	if err != entity.ErrInvalidTaskData {
		t.Errorf("Expected ErrInvalidTaskData, got %v", err)
	}
}

func TestDeleteTaskSuccess(t *testing.T) {
	owner := uuid.New()
	taskID := uuid.New()
	publisher := NewChanPublisher()
	deleted := false

	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
			return &entity.Task{ID: id, UserID: owner, Title: "bye"}, nil
		},
		DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
			deleted = id == taskID
			return nil
		},
	}
	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, publisher)

	if err := service.DeleteTask(context.Background(), taskID, owner); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !deleted {
		t.Error("Expected repository delete to be called")
	}

	msg := publisher.next(t)
	if msg.Action != entity.ActionDelete || msg.NewValues != nil || msg.OldValues["title"] != "bye" {
		t.Errorf("Unexpected audit message %+v", msg)
	}
}

func TestDeleteTaskRepositoryError(t *testing.T) {
	owner := uuid.New()
	boom := errors.New("db down")
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
			return &entity.Task{ID: id, UserID: owner}, nil
		},
		DeleteFunc: func(ctx context.Context, id uuid.UUID) error { return boom },
	}
	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, nil)

	if err := service.DeleteTask(context.Background(), uuid.New(), owner); !errors.Is(err, boom) {
		t.Errorf("Expected repository error, got %v", err)
	}
}

func TestTaskHistoryChecksOwner(t *testing.T) {
	owner := uuid.New()
	taskID := uuid.New()
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
			return &entity.Task{ID: id, UserID: owner}, nil
		},
	}
	mockAuditRepo := &MockTaskAuditRepository{
		ListByTaskFunc: func(ctx context.Context, id uuid.UUID) ([]entity.TaskAudit, error) {
			return []entity.TaskAudit{{ID: 1, EntityID: id, Action: entity.ActionCreate}}, nil
		},
	}
	service := NewTaskService(mockTaskRepo, mockAuditRepo, nil)

	history, err := service.TaskHistory(context.Background(), taskID, owner)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(history) != 1 || history[0].EntityID != taskID {
		t.Errorf("Unexpected history %+v", history)
	}

	if _, err := service.TaskHistory(context.Background(), taskID, uuid.New()); err != entity.ErrForbidden {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}
