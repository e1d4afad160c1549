// Package repository declares the persistence interfaces the service
// layer programs against. The sqlite subpackage is the only
// implementation; tests substitute in-memory mocks.
//
// Repositories return fully materialized entities or explicit id-based
// lookups. Nothing here is lazily loaded: a query that needs the
// owner's name joins for it, and the in-memory User.Tasks collection is
// never hydrated by the store.
package repository

import (
	"context"

	"github.com/sakif/task-tracker/internal/model"
)

// UserRepository persists users. Create assigns the surrogate id and
// both timestamps; Update refreshes updated_at. Uniqueness of email and
// the tasks-block-deletion rule are enforced by the store and surface
// as apperror conflicts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// TaskRepository persists tasks. GetTaskByID and ListTasks join the
// owner's name into Task.UserName; ListTasksByUser does not.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListTasksByUser(ctx context.Context, userID int64) ([]model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id int64) error
	CountTasksByStatus(ctx context.Context, userID int64) ([]StatusCount, error)
}

// StatusCount is one row of the per-user report aggregation: how many
// of the user's tasks currently carry Status. Statuses with a zero
// count are omitted from the result.
type StatusCount struct {
	Status model.Status
	Count  int64
}
