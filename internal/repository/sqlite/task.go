package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/task-tracker/internal/apperror"
	"github.com/sakif/task-tracker/internal/model"
	"github.com/sakif/task-tracker/internal/repository"
)

// compile-time check that *DB implements repository.TaskRepository
var _ repository.TaskRepository = (*DB)(nil)

// CreateTask inserts a new task, stamping both timestamps and filling
// in the store-assigned id. The service resolves user_id before calling
// this, so a foreign key failure here means the user was deleted in
// between; it surfaces as the same unresolved-reference error the
// resolve step would have produced.
func (db *DB) CreateTask(ctx context.Context, task *model.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.Title,
		task.Description,
		string(task.Status),
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.UserNotFound()
		}
		return fmt.Errorf("sqlite: inserting task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted task id: %w", err)
	}
	task.ID = id

	return nil
}

// GetTaskByID returns the task with the owner's name joined in, or
// apperror.ErrNotFound.
func (db *DB) GetTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task

	err := db.conn.QueryRowContext(ctx,
		`SELECT t.id, t.title, t.description, t.status, t.user_id, u.name,
		        t.created_at, t.updated_at
		 FROM tasks t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.id = ?`,
		id,
	).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.UserName,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %d: %w", id, err)
	}

	return &t, nil
}

// ListTasks returns all tasks in store-default order with the owner's
// name denormalized into each row.
func (db *DB) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT t.id, t.title, t.description, t.status, t.user_id, u.name,
		        t.created_at, t.updated_at
		 FROM tasks t
		 JOIN users u ON u.id = t.user_id
		 ORDER BY t.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.UserName,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

// ListTasksByUser returns one user's tasks. No join: the caller already
// knows the user, and the per-user payload carries no user fields.
func (db *DB) ListTasksByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, description, status, user_id, created_at, updated_at
		 FROM tasks WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks for user %d: %w", userID, err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask saves title, description, status and owner, refreshing
// updated_at. created_at is immutable after creation.
func (db *DB) UpdateTask(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, status = ?, user_id = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title,
		task.Description,
		string(task.Status),
		task.UserID,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.UserNotFound()
		}
		return fmt.Errorf("sqlite: updating task %d: %w", task.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", task.ID)
	}

	return nil
}

// DeleteTask removes a task. Tasks are destroyed independently of their
// user, so nothing can block this beyond the row not existing.
func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", id)
	}

	return nil
}

// CountTasksByStatus aggregates one user's tasks per status. Only
// statuses actually present appear; the CASE expression pins the rows
// to declaration order (todo, in_progress, done) so the report is
// deterministic.
func (db *DB) CountTasksByStatus(ctx context.Context, userID int64) ([]repository.StatusCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, COUNT(id)
		 FROM tasks
		 WHERE user_id = ?
		 GROUP BY status
		 ORDER BY CASE status
		     WHEN 'todo' THEN 0
		     WHEN 'in_progress' THEN 1
		     ELSE 2
		 END`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting tasks for user %d: %w", userID, err)
	}
	defer rows.Close()

	counts := []repository.StatusCount{}
	for rows.Next() {
		var c repository.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning status count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating status counts: %w", err)
	}

	return counts, nil
}
