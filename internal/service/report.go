package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/task-tracker/internal/model"
	"github.com/sakif/task-tracker/internal/repository"
)

// UserReport is one block of the per-user report: a user and their task
// counts grouped by status. Counts holds only statuses the user
// actually has tasks in, in declaration order.
type UserReport struct {
	User   model.User
	Counts []repository.StatusCount
}

// ReportService produces the per-user task count report.
type ReportService struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	logger *slog.Logger
}

// NewReportService wires the repositories and logger.
func NewReportService(users repository.UserRepository, tasks repository.TaskRepository, logger *slog.Logger) *ReportService {
	return &ReportService{
		users:  users,
		tasks:  tasks,
		logger: logger,
	}
}

// Generate returns one UserReport per user, users in store-default
// order, one aggregate query per user. A user with no tasks still gets
// a block, just with no count lines.
func (s *ReportService) Generate(ctx context.Context) ([]UserReport, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: listing users: %w", err)
	}

	reports := make([]UserReport, 0, len(users))
	for _, user := range users {
		counts, err := s.tasks.CountTasksByStatus(ctx, user.ID)
		if err != nil {
			s.logger.Error("failed to count tasks",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("report: counting tasks for user %d: %w", user.ID, err)
		}
		reports = append(reports, UserReport{User: user, Counts: counts})
	}

	return reports, nil
}
