package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinPriority = 1
	MaxPriority = 10
)

type Todo struct {
	ID          uuid.UUID
	Title       string
	Description string
	Priority    int
	Completed   bool
	OwnerID     uuid.UUID
	CreatedAt   time.Time
}

// TodoPatch carries the fields of a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	Priority    *int
	Completed   *bool
}

func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
