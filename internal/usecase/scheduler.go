package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler запускает фоновые задания по расписанию
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
	}
}

// ScheduleInterval регистрирует задание с периодом interval
func (s *Scheduler) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	return s.cron.AddFunc("@every "+interval.String(), job)
}

// ScheduleSweep запускает обход повторяющихся задач каждые interval
func (s *Scheduler) ScheduleSweep(ctx context.Context, interval time.Duration, recurring *RecurringService) (cron.EntryID, error) {
	return s.ScheduleInterval(interval, func() {
		created, err := recurring.Sweep(ctx)
		if err != nil {
			log.Printf("Ошибка обхода повторяющихся задач: %v", err)
			return
		}
		if created > 0 {
			log.Printf("Создано вхождений повторяющихся задач: %d", created)
		}
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop ждет завершения запущенных заданий
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
