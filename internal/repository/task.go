package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ ITaskRepository = (*TaskRepository)(nil)
	_ ITaskQuery      = (*TaskRepository)(nil)
)

const taskColumns = `id, user_id, title, description, due_date, priority, completed, recurrence,
	recurrence_end, estimated_minutes, reminder_time, tags, category, occurrence_generated_at,
	created_at, updated_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	task.ApplyDefaults()

	query := `
	INSERT INTO task (user_id, title, description, due_date, priority, recurrence, recurrence_end,
		estimated_minutes, reminder_time, tags, category)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING ` + taskColumns

	createdTask, err := scanTask(r.db.QueryRow(ctx, query,
		task.UserID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Recurrence,
		task.RecurrenceEnd,
		task.EstimatedMinutes,
		task.ReminderTime,
		entity.JoinTags(task.Tags),
		task.Category,
	))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return createdTask, nil
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId uuid.UUID) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return task, nil
}

// Update - полное обновление изменяемых полей задачи
func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	query := `
	UPDATE task
	SET title = $1, description = $2, due_date = $3, priority = $4, completed = $5,
		recurrence = $6, recurrence_end = $7, estimated_minutes = $8, reminder_time = $9,
		tags = $10, category = $11, updated_at = CURRENT_TIMESTAMP
	WHERE id = $12
	RETURNING ` + taskColumns

	updated, err := scanTask(r.db.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Completed,
		task.Recurrence,
		task.RecurrenceEnd,
		task.EstimatedMinutes,
		task.ReminderTime,
		entity.JoinTags(task.Tags),
		task.Category,
		task.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTaskNotFound
		}
		return nil, err
	}

	return updated, nil
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM task WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// List - список задач с фильтрацией
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) ([]entity.Task, error) {
	where, args := buildWhere(userID, filter)
	query := `SELECT ` + taskColumns + ` FROM task WHERE ` + where +
		` ORDER BY completed ASC, due_date ASC NULLS LAST, created_at DESC`

	return r.queryTasks(ctx, query, args...)
}

func (r *TaskRepository) ListRecurringPending(ctx context.Context, limit int) ([]entity.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM task
	WHERE completed = true AND recurrence <> 'NONE' AND occurrence_generated_at IS NULL
	ORDER BY updated_at ASC
	LIMIT $1
	`
	return r.queryTasks(ctx, query, limit)
}

func (r *TaskRepository) MarkOccurrenceGenerated(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE task SET occurrence_generated_at = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Count(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error) {
	where, args := buildWhere(userID, filter)

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM task WHERE `+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TaskRepository) SumEstimatedMinutes(ctx context.Context, userID uuid.UUID, filter entity.TaskFilter) (int, error) {
	where, args := buildWhere(userID, filter)

	var total int64
	query := `SELECT COALESCE(SUM(estimated_minutes), 0) FROM task WHERE ` + where
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *TaskRepository) GroupCount(ctx context.Context, userID uuid.UUID, field entity.GroupField) (map[entity.GroupKey]int, error) {
	column, err := groupColumn(field)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + column + `, COUNT(*) FROM task WHERE user_id = $1 GROUP BY ` + column
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make(map[entity.GroupKey]int)
	for rows.Next() {
		var value *string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, err
		}
		if value == nil {
			groups[entity.GroupKey{Null: true}] += count
		} else {
			groups[entity.GroupKey{Value: *value}] += count
		}
	}

	return groups, rows.Err()
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func groupColumn(field entity.GroupField) (string, error) {
	switch field {
	case entity.GroupByCategory:
		return "category", nil
	case entity.GroupByPriority:
		return "priority", nil
	}
	return "", fmt.Errorf("unsupported group field %q", field)
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	var tags *string
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Completed,
		&task.Recurrence,
		&task.RecurrenceEnd,
		&task.EstimatedMinutes,
		&task.ReminderTime,
		&tags,
		&task.Category,
		&task.OccurrenceGeneratedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Tags = entity.ParseTags(tags)
	return &task, nil
}

// whereBuilder собирает условия с плейсхолдерами $n
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) add(column, op string, v any) {
	b.clauses = append(b.clauses, column+" "+op+" "+b.arg(v))
}

func (b *whereBuilder) addRange(column string, r *entity.TimeRange) {
	if r == nil {
		return
	}
	if r.Gte != nil {
		b.add(column, ">=", *r.Gte)
	}
	if r.Gt != nil {
		b.add(column, ">", *r.Gt)
	}
	if r.Lte != nil {
		b.add(column, "<=", *r.Lte)
	}
	if r.Lt != nil {
		b.add(column, "<", *r.Lt)
	}
}

func buildWhere(userID uuid.UUID, f entity.TaskFilter) (string, []any) {
	b := &whereBuilder{}
	b.add("user_id", "=", userID)

	if f.Completed != nil {
		b.add("completed", "=", *f.Completed)
	}
	if f.Category != nil {
		b.add("category", "=", *f.Category)
	}
	if f.Priority != nil {
		b.add("priority", "=", *f.Priority)
	}
	if f.Recurrence != nil {
		b.add("recurrence", "=", *f.Recurrence)
	}
	if f.NotRecurrence != nil {
		b.add("recurrence", "<>", *f.NotRecurrence)
	}
	b.addRange("created_at", f.CreatedAt)
	b.addRange("updated_at", f.UpdatedAt)
	b.addRange("due_date", f.DueDate)
	if f.RequireEstimated {
		b.clauses = append(b.clauses, "estimated_minutes IS NOT NULL")
	}
	if f.EstimatedLT != nil {
		b.add("estimated_minutes", "<", *f.EstimatedLT)
	}
	if f.EstimatedGT != nil {
		b.add("estimated_minutes", ">", *f.EstimatedGT)
	}

	// поиск по тексту и тегам объединяется через OR
	var anyOf []string
	if f.SearchTerm != "" {
		p := b.arg(escapeLike(f.SearchTerm))
		anyOf = append(anyOf, "title LIKE '%' || "+p+" || '%'", "description LIKE '%' || "+p+" || '%'")
	}
	for _, tag := range f.Tags {
		anyOf = append(anyOf, "tags LIKE '%' || "+b.arg(escapeLike(tag))+" || '%'")
	}
	if len(anyOf) > 0 {
		b.clauses = append(b.clauses, "("+strings.Join(anyOf, " OR ")+")")
	}

	return strings.Join(b.clauses, " AND "), b.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
