// Package model defines the persisted domain records and their
// relationship invariants. Entities perform no input validation; the dto
// package enforces constraints before an entity is touched, and the
// store enforces uniqueness and referential integrity at commit time.
package model

import "time"

// User is a registered account that owns a collection of tasks.
//
// ID is a surrogate identity assigned by the store on creation (the
// SQLite rowid). Email carries a UNIQUE constraint in the store; a
// duplicate insert or update fails there and surfaces as a conflict.
//
// Tasks is the in-memory side of the one-to-many relationship. It is
// populated by AddTask, not by queries: repositories return tasks
// through their own lookups and never lazily hydrate this slice.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Tasks []*Task `json:"-"`
}

// AddTask inserts task into the user's collection and makes the user its
// owner. Both sides of the relationship mutate here, in one place, so
// the collection and the back-reference can never disagree.
//
// Re-adding a task already in the collection is a no-op.
func (u *User) AddTask(task *Task) *User {
	if u.containsTask(task) {
		return u
	}
	u.Tasks = append(u.Tasks, task)
	task.User = u
	task.UserID = u.ID
	return u
}

// RemoveTask removes task from the user's collection. The task's owner
// reference is cleared only when it still points at this user: if the
// task was meanwhile reassigned elsewhere, the stale removal leaves the
// new owner untouched.
func (u *User) RemoveTask(task *Task) *User {
	for i, t := range u.Tasks {
		if t == task {
			u.Tasks = append(u.Tasks[:i], u.Tasks[i+1:]...)
			break
		}
	}
	if task.User == u {
		task.User = nil
		task.UserID = 0
	}
	return u
}

func (u *User) containsTask(task *Task) bool {
	for _, t := range u.Tasks {
		if t == task {
			return true
		}
	}
	return false
}
