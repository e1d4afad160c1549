// Package service contains the business logic layer: the
// validate-resolve-mutate-persist pipeline shared by every mutating
// operation.
//
// Services accept DTOs and return entities or domain errors. They know
// nothing about HTTP; handlers translate apperror sentinels to status
// codes, the admin UI translates them to flash notices, and the CLI
// prints them. Each layer only receives what it needs: services get
// repository interfaces, never the concrete sqlite.DB.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/task-tracker/internal/apperror"
	"github.com/sakif/task-tracker/internal/dto"
	"github.com/sakif/task-tracker/internal/model"
	"github.com/sakif/task-tracker/internal/repository"
)

// UserService handles user CRUD on top of a UserRepository.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService wires the repository and logger. The caller decides
// which repository implementation to inject (sqlite in production, a
// mock in tests).
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Create runs the full pipeline for a new user: validate the DTO, build
// the entity, persist. The DTO's constraints run before the entity is
// built, so an invalid request never constructs a User at all. The
// store enforces email uniqueness; a duplicate comes back as a
// conflict without this layer re-checking.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*model.User, error) {
	if fields := req.Validate(); fields != nil {
		return nil, apperror.ValidationFailed(fields)
	}

	user := &model.User{
		Name:  req.Name,
		Email: req.Email,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		s.logger.Warn("failed to create user",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Get returns a user by id. Absence propagates as apperror.ErrNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// List returns all users in store-default order.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Update fetches the addressed user, validates the new values, applies
// them and saves. Fetch-then-update keeps "not found" consistent with
// Get and leaves the stored row untouched when validation fails.
func (s *UserService) Update(ctx context.Context, id int64, req dto.CreateUserRequest) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields := req.Validate(); fields != nil {
		return nil, apperror.ValidationFailed(fields)
	}

	user.Name = req.Name
	user.Email = req.Email

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to update user",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.Int64("id", user.ID))

	return user, nil
}

// Delete removes a user. The store blocks the deletion while the user
// owns tasks; the conflict propagates unchanged.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.Int64("id", id))
	return nil
}
