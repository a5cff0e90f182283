package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/task-planner/internal/api"
	grpcapi "github.com/St1cky1/task-planner/internal/api/grpc"
	"github.com/St1cky1/task-planner/internal/api/handlers"
	"github.com/St1cky1/task-planner/internal/config"
	"github.com/St1cky1/task-planner/internal/infrastructure/auth"
	"github.com/St1cky1/task-planner/internal/infrastructure/client"
	"github.com/St1cky1/task-planner/internal/repository"
	"github.com/St1cky1/task-planner/internal/repository/memory"
	"github.com/St1cky1/task-planner/internal/repository/sqlite"
	"github.com/St1cky1/task-planner/internal/usecase"
	"github.com/St1cky1/task-planner/internal/worker"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type healthFunc func(ctx context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// storage - выбранное хранилище задач и аудита
type storage struct {
	tasks  repository.ITaskRepository
	query  repository.ITaskQuery
	audits repository.ITaskAuditRepository
	health api.HealthChecker
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Ошибка конфигурации: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка подключения к хранилищу: ", err)
	}
	defer store.close()
	log.Printf("Хранилище %s подключено", cfg.StorageDriver)

	var wg sync.WaitGroup
	checks := []grpcapi.HealthChecker{store.health}

	// без RabbitMQ аудит пишется напрямую в хранилище
	var publisher usecase.AuditPublisher = worker.NewStorePublisher(store.audits)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("Ошибка подключения к RabbitMQ: ", err)
		}
		defer rabbitMQ.Close()
		log.Println("Подключение к RabbitMQ установлено")

		publisher = rabbitMQ
		checks = append(checks, rabbitMQ)

		auditWorker := worker.NewAuditWorker(rabbitMQ, store.audits)
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(ctx)
		}()
	}

	taskService := usecase.NewTaskService(store.tasks, store.audits, publisher)
	recurringService := usecase.NewRecurringService(store.tasks, publisher, cfg.SweepWorkers, cfg.SweepBatchSize)
	analyticsService := usecase.NewAnalyticsService(store.query)

	scheduler := usecase.NewScheduler()
	if _, err := scheduler.ScheduleSweep(ctx, cfg.SweepInterval, recurringService); err != nil {
		log.Fatal("Ошибка планировщика: ", err)
	}
	scheduler.Start()
	log.Printf("Обход повторяющихся задач каждые %s", cfg.SweepInterval)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	taskHandler := handlers.NewTaskHandler(taskService, recurringService, analyticsService)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(taskHandler, jwtManager, store.health),
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP сервер на порту %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	grpcServer := grpcapi.NewGRPCServer(10*time.Second, checks...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := grpcServer.Start(ctx, cfg.GRPCPort); err != nil {
			log.Printf("gRPC server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Завершение работы...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	grpcServer.Stop()
	scheduler.Stop()

	wg.Wait()
	log.Println("Приложение завершено корректно")
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbURL := cfg.Postgres.URL()
		if err := runMigrations(cfg.MigrationsPath, dbURL); err != nil {
			return nil, err
		}

		pg, err := client.NewPostgresClient(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		tasks := repository.NewTaskRepository(pg.Pool)
		return &storage{
			tasks:  tasks,
			query:  tasks,
			audits: repository.NewTaskAuditRepository(pg.Pool),
			health: pg,
			close:  pg.Close,
		}, nil

	case config.StorageSQLite:
		db, err := sqlite.NewDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqliteClient := client.NewSQLiteClient(db)
		tasks := sqlite.NewTaskRepository(db)
		return &storage{
			tasks:  tasks,
			query:  tasks,
			audits: sqlite.NewTaskAuditRepository(db),
			health: sqliteClient,
			close: func() {
				if err := sqliteClient.Close(); err != nil {
					log.Printf("Ошибка закрытия SQLite: %v", err)
				}
			},
		}, nil

	default:
		tasks := memory.NewTaskStore()
		return &storage{
			tasks:  tasks,
			query:  tasks,
			audits: memory.NewTaskAuditStore(),
			health: healthFunc(func(context.Context) error { return nil }),
			close:  func() {},
		}, nil
	}
}

func runMigrations(source, dbURL string) error {
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return fmt.Errorf("ошибка создания мигратора: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	log.Println("Миграции выполнены успешно")
	return nil
}
