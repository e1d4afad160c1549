package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/task-tracker/internal/apperror"
	"github.com/sakif/task-tracker/internal/dto"
	"github.com/sakif/task-tracker/internal/model"
	"github.com/sakif/task-tracker/internal/service"
)

// timestampLayout is the wire format for task timestamps.
const timestampLayout = "2006-01-02 15:04:05"

// TaskHandler exposes task CRUD and status transitions under /api/tasks.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// taskResponse is the full task representation: owner denormalized,
// timestamps formatted.
type taskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// taskCreatedResponse is the trimmed body returned from creation; the
// caller already knows the owner and the timestamps are brand new.
type taskCreatedResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	UserID      int64  `json:"user_id"`
}

// userTaskResponse is the per-user listing entry: no user fields (the
// path names the user) and no updated_at.
type userTaskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// taskStatusResponse acknowledges a status transition.
type taskStatusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		UserID:      t.UserID,
		UserName:    t.UserName,
		CreatedAt:   t.CreatedAt.Format(timestampLayout),
		UpdatedAt:   t.UpdatedAt.Format(timestampLayout),
	}
}

// HandleList implements GET /api/tasks.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// HandleCreate implements POST /api/tasks. An unresolved user_id is a
// 404, a constraint violation a 400 with the field map.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.MalformedInput())
		return
	}

	task, err := h.tasks.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskCreatedResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		UserID:      task.UserID,
	})
}

// HandleGet implements GET /api/tasks/{id}.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task")
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// HandleUpdate implements PUT /api/tasks/{id}.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.MalformedInput())
		return
	}

	task, err := h.tasks.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// HandleListByUser implements GET /api/tasks/user/{userID}.
func (h *TaskHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, apperror.UserNotFound())
		return
	}

	tasks, err := h.tasks.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]userTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, userTaskResponse{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status.String(),
			CreatedAt:   t.CreatedAt.Format(timestampLayout),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// HandleUpdateStatus implements PUT /api/tasks/{id}/status.
func (h *TaskHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.MalformedInput())
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskStatusResponse{
		ID:     task.ID,
		Status: task.Status.String(),
	})
}

// HandleDelete implements DELETE /api/tasks/{id}.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
