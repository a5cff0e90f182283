// Package memory - хранилище задач в памяти процесса.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
)

var (
	_ repository.ITaskRepository = (*TaskStore)(nil)
	_ repository.ITaskQuery      = (*TaskStore)(nil)
)

type TaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]entity.Task
	now   func() time.Time
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[uuid.UUID]entity.Task),
		now:   time.Now,
	}
}

// WithClock подменяет источник времени для created_at/updated_at
func (s *TaskStore) WithClock(now func() time.Time) *TaskStore {
	s.now = now
	return s
}

// Put сохраняет задачу как есть, включая id и временные метки
func (s *TaskStore) Put(tasks ...entity.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range tasks {
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		s.tasks[task.ID] = task
	}
}

func (s *TaskStore) Create(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	req.ApplyDefaults()
	now := s.now()

	task := entity.Task{
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
		Tags:             cloneTags(req.Tags),
		Category:         req.Category,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	task.Tags = cloneTags(task.Tags)
	return &task, nil
}

func (s *TaskStore) GetByTaskId(ctx context.Context, taskId uuid.UUID) (*entity.Task, error) {
	s.mu.RLock()
	task, ok := s.tasks[taskId]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	task.Tags = cloneTags(task.Tags)
	return &task, nil
}

func (s *TaskStore) Update(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return nil, entity.ErrTaskNotFound
	}
	updated := *task
	updated.Tags = cloneTags(task.Tags)
	updated.UpdatedAt = s.now()
	s.tasks[task.ID] = updated

	updated.Tags = cloneTags(updated.Tags)
	return &updated, nil
}

// cloneTags копирует срез тегов, чтобы хранилище не делило память с вызывающим
func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	return append([]string(nil), tags...)
}

func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.tasks, id)
	s.mu.Unlock()
	return nil
}

func (s *TaskStore) List(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) ([]entity.Task, error) {
	tasks := s.collect(userID, filter)
	sortTasks(tasks)
	return tasks, nil
}

func (s *TaskStore) ListRecurringPending(ctx context.Context, limit int) ([]entity.Task, error) {
	s.mu.RLock()
	var pending []entity.Task
	for _, task := range s.tasks {
		if task.Completed && task.Recurrence != entity.RecurrenceNone && task.OccurrenceGeneratedAt == nil {
			pending = append(pending, task)
		}
	}
	s.mu.RUnlock()

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].UpdatedAt.Before(pending[j].UpdatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *TaskStore) MarkOccurrenceGenerated(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return entity.ErrTaskNotFound
	}
	task.OccurrenceGeneratedAt = &at
	s.tasks[id] = task
	return nil
}

func (s *TaskStore) Count(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error) {
	return len(s.collect(userID, filter)), nil
}

func (s *TaskStore) SumEstimatedMinutes(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error) {
	total := 0
	for _, task := range s.collect(userID, filter) {
		if task.EstimatedMinutes != nil {
			total += *task.EstimatedMinutes
		}
	}
	return total, nil
}

func (s *TaskStore) GroupCount(ctx context.Context, userID uuid.UUID, field entity.GroupField) (map[entity.GroupKey]int, error) {
	groups := make(map[entity.GroupKey]int)
	for _, task := range s.collect(userID, entity.TaskFilter{}) {
		var key entity.GroupKey
		switch field {
		case entity.GroupByCategory:
			if task.Category == nil {
				key.Null = true
			} else {
				key.Value = *task.Category
			}
		case entity.GroupByPriority:
			key.Value = string(task.Priority)
		}
		groups[key]++
	}
	return groups, nil
}

func (s *TaskStore) collect(userID uuid.UUID, filter entity.TaskFilter) []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Task
	for _, task := range s.tasks {
		if task.UserID == userID && Match(task, filter) {
			out = append(out, task)
		}
	}
	return out
}

// Match проверяет задачу на соответствие фильтру
func Match(task entity.Task, f entity.TaskFilter) bool {
	if f.Completed != nil && task.Completed != *f.Completed {
		return false
	}
	if f.Category != nil && (task.Category == nil || *task.Category != *f.Category) {
		return false
	}
	if f.Priority != nil && task.Priority != *f.Priority {
		return false
	}
	if f.Recurrence != nil && task.Recurrence != *f.Recurrence {
		return false
	}
	if f.NotRecurrence != nil && task.Recurrence == *f.NotRecurrence {
		return false
	}
	if f.CreatedAt != nil && !f.CreatedAt.Contains(&task.CreatedAt) {
		return false
	}
	if f.UpdatedAt != nil && !f.UpdatedAt.Contains(&task.UpdatedAt) {
		return false
	}
	if f.DueDate != nil && !f.DueDate.Contains(task.DueDate) {
		return false
	}
	if f.RequireEstimated && task.EstimatedMinutes == nil {
		return false
	}
	if f.EstimatedLT != nil && (task.EstimatedMinutes == nil || *task.EstimatedMinutes >= *f.EstimatedLT) {
		return false
	}
	if f.EstimatedGT != nil && (task.EstimatedMinutes == nil || *task.EstimatedMinutes <= *f.EstimatedGT) {
		return false
	}
	if f.SearchTerm != "" || len(f.Tags) > 0 {
		return matchText(task, f)
	}
	return true
}

func matchText(task entity.Task, f entity.TaskFilter) bool {
	if f.SearchTerm != "" {
		if strings.Contains(task.Title, f.SearchTerm) {
			return true
		}
		if task.Description != nil && strings.Contains(*task.Description, f.SearchTerm) {
			return true
		}
	}
	if joined := entity.JoinTags(task.Tags); joined != nil {
		for _, tag := range f.Tags {
			if strings.Contains(*joined, tag) {
				return true
			}
		}
	}
	return false
}

// completed asc, due_date asc nulls last, created_at desc
func sortTasks(tasks []entity.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
