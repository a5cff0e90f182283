package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/google/uuid"
)

func TestBuildWhereUserOnly(t *testing.T) {
	userID := uuid.New()

	where, args := buildWhere(userID, entity.TaskFilter{})
	if where != "user_id = $1" {
		t.Errorf("Expected user scope only, got %q", where)
	}
	if len(args) != 1 || args[0] != userID {
		t.Errorf("Expected [%s], got %v", userID, args)
	}
}

func TestBuildWhereRangesAndFlags(t *testing.T) {
	completed := true
	from := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7).Add(-time.Millisecond)

	where, args := buildWhere(uuid.New(), entity.TaskFilter{
		Completed:        &completed,
		UpdatedAt:        entity.Between(from, to),
		DueDate:          &entity.TimeRange{Lt: &from},
		RequireEstimated: true,
	})

	want := "user_id = $1 AND completed = $2 AND updated_at >= $3 AND updated_at <= $4 AND due_date < $5 AND estimated_minutes IS NOT NULL"
	if where != want {
		t.Errorf("Expected %q, got %q", want, where)
	}
	if len(args) != 5 {
		t.Fatalf("Expected 5 args, got %d", len(args))
	}
	if args[2] != from || args[3] != to {
		t.Errorf("Expected range args %v..%v, got %v..%v", from, to, args[2], args[3])
	}
}

func TestBuildWhereSearchOrTags(t *testing.T) {
	where, args := buildWhere(uuid.New(), entity.TaskFilter{
		SearchTerm: "50%",
		Tags:       []string{"work", "home"},
	})

	if !strings.HasSuffix(where, "(title LIKE '%' || $2 || '%' OR description LIKE '%' || $2 || '%' OR tags LIKE '%' || $3 || '%' OR tags LIKE '%' || $4 || '%')") {
		t.Errorf("Unexpected text condition %q", where)
	}
	if args[1] != `50\%` {
		t.Errorf("Expected escaped search term, got %v", args[1])
	}
}

func TestGroupColumnRejectsUnknownField(t *testing.T) {
	if _, err := groupColumn(entity.GroupField("title; DROP TABLE task")); err == nil {
		t.Error("Expected error for unsupported group field")
	}
}
