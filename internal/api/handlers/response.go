package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/google/uuid"
)

type ctxKey struct{}

// WithUserID кладет проверенный id пользователя в контекст запроса
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return userID, ok
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Ошибка записи ответа: %v", err)
	}
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError переводит ошибки сервисов в HTTP статусы
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrTaskNotFound):
		WriteError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, entity.ErrForbidden):
		WriteError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, entity.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, entity.ErrNoFieldsToUpdate):
		WriteError(w, http.StatusBadRequest, "no fields to update")
	case errors.Is(err, entity.ErrInvalidTaskData):
		WriteError(w, http.StatusBadRequest, "invalid task data")
	case errors.Is(err, entity.ErrNotRecurring):
		WriteError(w, http.StatusBadRequest, "task is not recurring")
	case errors.Is(err, entity.ErrRecurrenceEnded):
		WriteError(w, http.StatusBadRequest, "recurrence has ended")
	default:
		log.Printf("Внутренняя ошибка: %v", err)
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
