package api

import (
	"context"
	"net/http"
	"time"

	"github.com/St1cky1/task-planner/internal/api/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthChecker - хранилище или брокер, которые умеют проверить соединение
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

func NewRouter(taskHandler *handlers.TaskHandler, tokens TokenValidator, health HealthChecker) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", healthz(health))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Auth(tokens))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Post("/search", taskHandler.SearchTasks)
			r.Get("/analytics", taskHandler.Analytics)
			r.Get("/recurring", taskHandler.ListRecurring)
			r.Post("/recurring", taskHandler.GenerateOccurrence)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Patch("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Get("/history", taskHandler.TaskHistory)
			})
		})
	})

	return r
}

func healthz(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := health.HealthCheck(ctx); err != nil {
			handlers.WriteError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}
