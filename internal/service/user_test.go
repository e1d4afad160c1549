package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/task-tracker/internal/apperror"
	"github.com/sakif/task-tracker/internal/dto"
)

func TestUserService_Create(t *testing.T) {
	svc, _, _, _, _ := newTestServices(t)

	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Name:  "John Doe",
		Email: "john@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, "john@example.com", user.Email)
}

func TestUserService_Create_ValidationFailed(t *testing.T) {
	svc, _, _, repo, _ := newTestServices(t)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{Email: "bad"})

	assert.ErrorIs(t, err, apperror.ErrValidation)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Name is required", appErr.Fields["name"])
	assert.Equal(t, "Invalid email format", appErr.Fields["email"])

	// Nothing persisted.
	assert.Empty(t, repo.users)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := newTestServices(t)

	first, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Name: "John", Email: "john@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateUserRequest{
		Name: "Jane", Email: "john@example.com",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// The first user is untouched.
	found, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", found.Name)
}

func TestUserService_Update(t *testing.T) {
	svc, _, _, _, _ := newTestServices(t)
	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Name: "John", Email: "john@example.com",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, dto.CreateUserRequest{
		Name: "John Q.", Email: "johnq@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "John Q.", updated.Name)
	assert.Equal(t, "johnq@example.com", updated.Email)
}

func TestUserService_Update_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestServices(t)

	_, err := svc.Update(context.Background(), 99, dto.CreateUserRequest{
		Name: "Ghost", Email: "ghost@example.com",
	})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserService_Update_InvalidInputLeavesUserUnchanged(t *testing.T) {
	svc, _, _, _, _ := newTestServices(t)
	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Name: "John", Email: "john@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, dto.CreateUserRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	found, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", found.Name)
	assert.Equal(t, "john@example.com", found.Email)
}

func TestUserService_Delete(t *testing.T) {
	svc, _, _, _, _ := newTestServices(t)
	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Name: "John", Email: "john@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), user.ID))

	_, err = svc.Get(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserService_Delete_BlockedWhileOwningTasks(t *testing.T) {
	users, tasks, _, _, _ := newTestServices(t)
	user, err := users.Create(context.Background(), dto.CreateUserRequest{
		Name: "John", Email: "john@example.com",
	})
	require.NoError(t, err)

	task, err := tasks.Create(context.Background(), dto.CreateTaskRequest{
		Title: "Write spec", UserID: &user.ID,
	})
	require.NoError(t, err)

	err = users.Delete(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// Removing the task unblocks the deletion.
	require.NoError(t, tasks.Delete(context.Background(), task.ID))
	assert.NoError(t, users.Delete(context.Background(), user.ID))
}

func TestUserService_List(t *testing.T) {
	svc, _, _, _, _ := newTestServices(t)
	for _, u := range []dto.CreateUserRequest{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	} {
		_, err := svc.Create(context.Background(), u)
		require.NoError(t, err)
	}

	users, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)
}
