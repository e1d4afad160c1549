package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/task-tracker/internal/apperror"
	"github.com/sakif/task-tracker/internal/dto"
	"github.com/sakif/task-tracker/internal/model"
	"github.com/sakif/task-tracker/internal/repository"
)

// TaskService handles task CRUD and status transitions. It needs both
// repositories: tasks for persistence, users to resolve the user_id
// reference before any write.
type TaskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewTaskService wires the repositories and logger.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		logger: logger,
	}
}

// Create runs the task pipeline: validate, resolve the owning user,
// attach the task to the owner, persist. The owner resolution is a
// separate step from validation on purpose: a well-formed user_id that
// points nowhere is an unresolved reference (404), not a constraint
// violation (400).
func (s *TaskService) Create(ctx context.Context, req dto.CreateTaskRequest) (*model.Task, error) {
	if fields := req.Validate(); fields != nil {
		return nil, apperror.ValidationFailed(fields)
	}

	owner, err := s.resolveOwner(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}

	task := model.NewTask()
	task.Title = req.Title
	task.Description = req.Description
	owner.AddTask(task)

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		s.logger.Warn("failed to create task",
			slog.String("title", req.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating task: %w", err)
	}
	task.UserName = owner.Name

	s.logger.Info("task created",
		slog.Int64("id", task.ID),
		slog.Int64("user_id", task.UserID),
	)

	return task, nil
}

// resolveOwner looks up the user a task references. A missing user is
// the unresolved-reference error; a store failure stays a store
// failure and must not collapse into a 404.
func (s *TaskService) resolveOwner(ctx context.Context, userID int64) (*model.User, error) {
	owner, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.UserNotFound()
		}
		return nil, fmt.Errorf("resolving task owner: %w", err)
	}
	return owner, nil
}

// Get returns a task (with the owner's name joined) by id.
func (s *TaskService) Get(ctx context.Context, id int64) (*model.Task, error) {
	return s.tasks.GetTaskByID(ctx, id)
}

// List returns all tasks with denormalized owner names.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// ListByUser returns one user's tasks. The user is resolved first so a
// listing for a nonexistent user is a 404, not an empty 200.
func (s *TaskService) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListTasksByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks for user",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}

// Update fetches the addressed task, validates, resolves the (possibly
// new) owner and saves. Reassignment goes through AddTask so the new
// owner's collection and the task's back-reference move together.
func (s *TaskService) Update(ctx context.Context, id int64, req dto.CreateTaskRequest) (*model.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields := req.Validate(); fields != nil {
		return nil, apperror.ValidationFailed(fields)
	}

	owner, err := s.resolveOwner(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}

	task.Title = req.Title
	task.Description = req.Description
	owner.AddTask(task)

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		s.logger.Warn("failed to update task",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating task: %w", err)
	}
	task.UserName = owner.Name

	s.logger.Info("task updated", slog.Int64("id", task.ID))

	return task, nil
}

// UpdateStatus transitions a task to the submitted status. An invalid
// status fails validation before the task is even fetched, so the
// stored status is guaranteed unchanged on failure.
func (s *TaskService) UpdateStatus(ctx context.Context, id int64, req dto.UpdateTaskStatusRequest) (*model.Task, error) {
	if fields := req.Validate(); fields != nil {
		return nil, apperror.ValidationFailed(fields)
	}

	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Status = model.Status(req.Status)

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		s.logger.Warn("failed to update task status",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating task status: %w", err)
	}

	s.logger.Info("task status updated",
		slog.Int64("id", task.ID),
		slog.String("status", task.Status.String()),
	)

	return task, nil
}

// Delete removes a task. Tasks go independently of their user.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return err
	}

	s.logger.Info("task deleted", slog.Int64("id", id))
	return nil
}
