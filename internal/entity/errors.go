package entity

import "errors"

var (
	ErrForbidden        = errors.New("forbidden: access denied")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidTaskData  = errors.New("invalid task data")

	ErrNotRecurring    = errors.New("task is not recurring")
	ErrRecurrenceEnded = errors.New("recurring task has ended")
)
