package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type TaskHandler struct {
	taskService      *usecase.TaskService
	recurringService *usecase.RecurringService
	analyticsService *usecase.AnalyticsService
}

func NewTaskHandler(
	taskService *usecase.TaskService,
	recurringService *usecase.RecurringService,
	analyticsService *usecase.AnalyticsService,
) *TaskHandler {
	return &TaskHandler{
		taskService:      taskService,
		recurringService: recurringService,
		analyticsService: analyticsService,
	}
}

// CreateTask создает задачу текущего пользователя
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req entity.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req, err := decodeUpdate(body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTasks - GET /tasks с фильтрами из query
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter, err := listFilter(r.URL.Query())
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": nonNil(tasks)})
}

func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req searchTasksRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, req.filter())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": nonNil(tasks)})
}

func (h *TaskHandler) TaskHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	audits, err := h.taskService.TaskHistory(r.Context(), taskID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if audits == nil {
		audits = []entity.TaskAudit{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": audits})
}

func (h *TaskHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.recurringService.ListRecurring(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": nonNil(tasks)})
}

// GenerateOccurrence - POST /tasks/recurring, создает следующее вхождение
func (h *TaskHandler) GenerateOccurrence(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req generateOccurrenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.recurringService.GenerateNextOccurrence(r.Context(), taskID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// Analytics - GET /tasks/analytics?period=day|week|month
func (h *TaskHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	snapshot, err := h.analyticsService.Snapshot(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}

func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid task id")
		return uuid.Nil, false
	}
	return taskID, true
}

// decodeBody читает JSON и проверяет validate-теги
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func nonNil(tasks []entity.Task) []entity.Task {
	if tasks == nil {
		return []entity.Task{}
	}
	return tasks
}
