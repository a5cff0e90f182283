package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// searchTasksRequest - тело POST /tasks/search, все поля необязательны
type searchTasksRequest struct {
	SearchTerm      string             `json:"search_term" validate:"max=255"`
	Priority        *entity.Priority   `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Completed       *bool              `json:"completed"`
	DueBefore       *time.Time         `json:"due_before"`
	DueAfter        *time.Time         `json:"due_after"`
	Category        *string            `json:"category"`
	Tags            string             `json:"tags"`
	Recurrence      *entity.Recurrence `json:"recurrence" validate:"omitempty,oneof=NONE DAILY WEEKDAYS WEEKLY BIWEEKLY MONTHLY YEARLY CUSTOM"`
	EstimatedTimeLT *int               `json:"estimated_time_lt" validate:"omitempty,gt=0"`
	EstimatedTimeGT *int               `json:"estimated_time_gt" validate:"omitempty,gte=0"`
}

func (r searchTasksRequest) filter() entity.TaskFilter {
	f := entity.TaskFilter{
		Completed:   r.Completed,
		Priority:    r.Priority,
		Recurrence:  r.Recurrence,
		SearchTerm:  r.SearchTerm,
		EstimatedLT: r.EstimatedTimeLT,
		EstimatedGT: r.EstimatedTimeGT,
	}
	if r.Category != nil && *r.Category != "" {
		f.Category = r.Category
	}
	if r.DueBefore != nil || r.DueAfter != nil {
		f.DueDate = &entity.TimeRange{Lt: r.DueBefore, Gt: r.DueAfter}
	}
	if r.Tags != "" {
		f.Tags = entity.ParseTags(&r.Tags)
	}
	return f
}

type generateOccurrenceRequest struct {
	TaskID string `json:"task_id" validate:"required,uuid"`
}

// listFilter разбирает query-параметры GET /tasks
func listFilter(q url.Values) (entity.TaskFilter, error) {
	var f entity.TaskFilter

	if v := q.Get("category"); v != "" {
		f.Category = &v
	}
	if v := q.Get("priority"); v != "" {
		p := entity.Priority(v)
		if !p.Valid() {
			return f, fmt.Errorf("invalid priority %q", v)
		}
		f.Priority = &p
	}
	if v := q.Get("recurrence"); v != "" {
		r := entity.Recurrence(v)
		if !r.Valid() {
			return f, fmt.Errorf("invalid recurrence %q", v)
		}
		f.Recurrence = &r
	}
	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid completed %q", v)
		}
		f.Completed = &completed
	}

	before, err := parseTimeParam(q, "due_before")
	if err != nil {
		return f, err
	}
	after, err := parseTimeParam(q, "due_after")
	if err != nil {
		return f, err
	}
	if before != nil || after != nil {
		f.DueDate = &entity.TimeRange{Lt: before, Gt: after}
	}

	return f, nil
}

func parseTimeParam(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected RFC3339", key)
	}
	return &t, nil
}

// decodeUpdate разбирает PATCH тело. Присутствие ключа со значением null
// очищает nullable поле, отсутствие ключа оставляет его как есть.
func decodeUpdate(body []byte) (*entity.UpdateTaskRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	req := &entity.UpdateTaskRequest{}
	for key, value := range raw {
		isNull := strings.TrimSpace(string(value)) == "null"

		var err error
		switch key {
		case "title":
			err = decodeRequired(value, isNull, &req.Title)
		case "description":
			req.SetDescription = true
			err = decodeNullable(value, isNull, &req.Description)
		case "due_date":
			req.SetDueDate = true
			err = decodeNullable(value, isNull, &req.DueDate)
		case "priority":
			err = decodeRequired(value, isNull, &req.Priority)
			if err == nil && !req.Priority.Valid() {
				err = fmt.Errorf("invalid priority %q", *req.Priority)
			}
		case "completed":
			err = decodeRequired(value, isNull, &req.Completed)
		case "recurrence":
			err = decodeRequired(value, isNull, &req.Recurrence)
			if err == nil && !req.Recurrence.Valid() {
				err = fmt.Errorf("invalid recurrence %q", *req.Recurrence)
			}
		case "recurrence_end":
			req.SetRecurrenceEnd = true
			err = decodeNullable(value, isNull, &req.RecurrenceEnd)
		case "estimated_minutes":
			req.SetEstimated = true
			err = decodeNullable(value, isNull, &req.EstimatedMinutes)
			if err == nil && req.EstimatedMinutes != nil && *req.EstimatedMinutes <= 0 {
				err = errors.New("estimated_minutes must be positive")
			}
		case "reminder_time":
			req.SetReminderTime = true
			err = decodeNullable(value, isNull, &req.ReminderTime)
		case "tags":
			req.SetTags = true
			if !isNull {
				err = json.Unmarshal(value, &req.Tags)
			}
		case "category":
			req.SetCategory = true
			err = decodeNullable(value, isNull, &req.Category)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	return req, nil
}

func decodeRequired[T any](value json.RawMessage, isNull bool, dst **T) error {
	if isNull {
		return errors.New("must not be null")
	}
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func decodeNullable[T any](value json.RawMessage, isNull bool, dst **T) error {
	if isNull {
		*dst = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
