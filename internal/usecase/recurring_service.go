package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/recurrence"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RecurringService создает следующие вхождения повторяющихся задач
type RecurringService struct {
	taskRepo  repository.ITaskRepository
	publisher AuditPublisher
	now       func() time.Time

	workers   int
	batchSize int
}

func NewRecurringService(taskRepo repository.ITaskRepository, publisher AuditPublisher, workers, batchSize int) *RecurringService {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &RecurringService{
		taskRepo:  taskRepo,
		publisher: publisher,
		now:       time.Now,
		workers:   workers,
		batchSize: batchSize,
	}
}

func (s *RecurringService) ListRecurring(ctx context.Context, userID uuid.UUID) ([]entity.Task, error) {
	none := entity.RecurrenceNone
	return s.taskRepo.List(ctx, userID, entity.TaskFilter{NotRecurrence: &none})
}

// GenerateNextOccurrence создает следующее вхождение задачи по запросу владельца.
// Чужая задача неотличима от отсутствующей.
func (s *RecurringService) GenerateNextOccurrence(ctx context.Context, taskID, userID uuid.UUID) (*entity.Task, error) {
	source, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if source == nil || source.UserID != userID {
		return nil, entity.ErrTaskNotFound
	}

	return s.generate(ctx, *source)
}

// Sweep обрабатывает пачку выполненных повторяющихся задач без следующего вхождения.
// Возвращает число созданных задач; ошибки отдельных задач только логируются.
func (s *RecurringService) Sweep(ctx context.Context) (int, error) {
	pending, err := s.taskRepo.ListRecurringPending(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending recurring tasks: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, task := range pending {
		g.Go(func() error {
			_, err := s.generate(gctx, task)
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, entity.ErrRecurrenceEnded), errors.Is(err, entity.ErrNotRecurring):
				// серия закончилась, больше не выбираем эту задачу
				if err := s.taskRepo.MarkOccurrenceGenerated(gctx, task.ID, s.now()); err != nil {
					log.Printf("Ошибка отметки задачи %s: %v", task.ID, err)
				}
			default:
				log.Printf("Ошибка генерации вхождения для задачи %s: %v", task.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(created.Load()), err
	}
	return int(created.Load()), ctx.Err()
}

func (s *RecurringService) generate(ctx context.Context, source entity.Task) (*entity.Task, error) {
	now := s.now()

	record, err := recurrence.GenerateNext(source, now)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	// вхождение уже сохранено, ошибку отметки только логируем
	if err := s.taskRepo.MarkOccurrenceGenerated(ctx, source.ID, now); err != nil {
		log.Printf("Ошибка отметки задачи %s после генерации %s: %v", source.ID, task.ID, err)
	}

	msg := buildAuditMessage(entity.ActionOccurrence, source.UserID, task.ID, nil, task, now)
	msg.Changes = map[string]any{"source_task_id": source.ID.String()}
	publishAudit(s.publisher, msg)

	return task, nil
}
