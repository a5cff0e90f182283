package usecase

import (
	"context"
	"time"

	"github.com/St1cky1/task-planner/internal/analytics"
	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/google/uuid"
)

type AnalyticsService struct {
	aggregator *analytics.Aggregator
	now        func() time.Time
}

func NewAnalyticsService(query repository.ITaskQuery) *AnalyticsService {
	return &AnalyticsService{
		aggregator: analytics.NewAggregator(query),
		now:        time.Now,
	}
}

// Snapshot считает метрики пользователя за период относительно текущего времени
func (s *AnalyticsService) Snapshot(ctx context.Context, userID uuid.UUID, period string) (*entity.AnalyticsSnapshot, error) {
	return s.aggregator.Compute(ctx, userID, period, s.now())
}
