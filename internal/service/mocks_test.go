package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/task-tracker/internal/apperror"
	"github.com/sakif/task-tracker/internal/model"
	"github.com/sakif/task-tracker/internal/repository"
)

// Hand-written in-memory mocks. They implement the repository
// interfaces over maps, mimic the store's constraints (unique email,
// tasks block user deletion) and can be forced to fail to exercise the
// persistence-error paths.

type mockUserRepo struct {
	users  map[int64]*model.User
	order  []int64
	nextID int64

	tasks *mockTaskRepo // set when delete-blocking should be enforced

	failCreate error
	failUpdate error
	failGet    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[int64]*model.User{}}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.DuplicateEmail()
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	m.order = append(m.order, user.ID)
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if m.failGet != nil {
		return nil, m.failGet
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) ListUsers(_ context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(m.order))
	for _, id := range m.order {
		users = append(users, *m.users[id])
	}
	return users, nil
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return apperror.DuplicateEmail()
		}
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	if m.tasks != nil {
		for _, t := range m.tasks.tasks {
			if t.UserID == id {
				return apperror.UserHasTasks()
			}
		}
	}
	delete(m.users, id)
	for i, uid := range m.order {
		if uid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type mockTaskRepo struct {
	tasks  map[int64]*model.Task
	order  []int64
	nextID int64

	users *mockUserRepo // for joining owner names

	failCreate error
	failUpdate error
}

func newMockTaskRepo(users *mockUserRepo) *mockTaskRepo {
	return &mockTaskRepo{tasks: map[int64]*model.Task{}, users: users}
}

func (m *mockTaskRepo) CreateTask(_ context.Context, task *model.Task) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	m.nextID++
	task.ID = m.nextID
	stored := *task
	stored.User = nil
	m.tasks[task.ID] = &stored
	m.order = append(m.order, task.ID)
	return nil
}

func (m *mockTaskRepo) GetTaskByID(_ context.Context, id int64) (*model.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, apperror.NotFound("task", id)
	}
	result := *t
	if owner, ok := m.users.users[result.UserID]; ok {
		result.UserName = owner.Name
	}
	return &result, nil
}

func (m *mockTaskRepo) ListTasks(_ context.Context) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(m.order))
	for _, id := range m.order {
		t := *m.tasks[id]
		if owner, ok := m.users.users[t.UserID]; ok {
			t.UserName = owner.Name
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (m *mockTaskRepo) ListTasksByUser(_ context.Context, userID int64) ([]model.Task, error) {
	tasks := []model.Task{}
	for _, id := range m.order {
		if m.tasks[id].UserID == userID {
			tasks = append(tasks, *m.tasks[id])
		}
	}
	return tasks, nil
}

func (m *mockTaskRepo) UpdateTask(_ context.Context, task *model.Task) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	if _, ok := m.tasks[task.ID]; !ok {
		return apperror.NotFound("task", task.ID)
	}
	stored := *task
	stored.User = nil
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskRepo) DeleteTask(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return apperror.NotFound("task", id)
	}
	delete(m.tasks, id)
	for i, tid := range m.order {
		if tid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockTaskRepo) CountTasksByStatus(_ context.Context, userID int64) ([]repository.StatusCount, error) {
	byStatus := map[model.Status]int64{}
	for _, t := range m.tasks {
		if t.UserID == userID {
			byStatus[t.Status]++
		}
	}
	counts := []repository.StatusCount{}
	for _, status := range model.Statuses() {
		if n, ok := byStatus[status]; ok {
			counts = append(counts, repository.StatusCount{Status: status, Count: n})
		}
	}
	return counts, nil
}

// testLogger discards everything below Error so test output stays quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServices wires all three services over shared mocks.
func newTestServices(t *testing.T) (*UserService, *TaskService, *ReportService, *mockUserRepo, *mockTaskRepo) {
	t.Helper()
	users := newMockUserRepo()
	tasks := newMockTaskRepo(users)
	users.tasks = tasks
	logger := testLogger()
	return NewUserService(users, logger),
		NewTaskService(tasks, users, logger),
		NewReportService(users, tasks, logger),
		users, tasks
}
