package model

import "time"

// Task is a unit of work exclusively owned by exactly one user.
//
// UserID is the persisted owner reference; User is the in-memory
// back-reference maintained by User.AddTask/RemoveTask. UserName is
// denormalized by list queries that join the users table, for API
// payloads that carry the owner's name alongside the task.
//
// CreatedAt is stamped once at persistence and never changes.
// UpdatedAt is refreshed by the repository on every mutation, so
// CreatedAt <= UpdatedAt always holds.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	User *User `json:"-"`
}

// NewTask returns a task in the default todo status with no owner.
// Ownership is established through User.AddTask before persistence;
// a task without an owning user is invalid to persist.
func NewTask() *Task {
	return &Task{Status: StatusTodo}
}
