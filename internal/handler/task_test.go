package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, r http.Handler, name, email string) {
	t.Helper()
	rr := do(t, r, http.MethodPost, "/api/users", `{"name":"`+name+`","email":"`+email+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestTaskHandler_Create(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "John", "john@example.com")

	rr := do(t, r, http.MethodPost, "/api/tasks", `{"title":"Write report","description":"Quarterly numbers","user_id":1}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Write report", body["title"])
	assert.Equal(t, "todo", body["status"])
	assert.Equal(t, float64(1), body["user_id"])
	// Creation returns the trimmed shape.
	assert.NotContains(t, body, "user_name")
	assert.NotContains(t, body, "created_at")
}

func TestTaskHandler_Create_ValidationErrors(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, http.MethodPost, "/api/tasks", `{"description":"no title, no owner"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeBody(t, rr)["errors"].(map[string]any)
	assert.Equal(t, "Title is required", errs["title"])
	assert.Equal(t, "User ID is required", errs["user_id"])
}

func TestTaskHandler_Create_UnknownUser(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, http.MethodPost, "/api/tasks", `{"title":"Orphan","user_id":42}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found", decodeBody(t, rr)["error"])
}

func TestTaskHandler_Create_NonNumericUserID(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, http.MethodPost, "/api/tasks", `{"title":"Bad owner","user_id":"one"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid JSON", decodeBody(t, rr)["error"])
}

func TestTaskHandler_Get(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "John", "john@example.com")
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"Write report","user_id":1}`)

	rr := do(t, r, http.MethodGet, "/api/tasks/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Write report", body["title"])
	assert.Equal(t, "John", body["user_name"])
	assert.Contains(t, body, "created_at")
	assert.Contains(t, body, "updated_at")
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, http.MethodGet, "/api/tasks/7", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTaskHandler_Update_Reassign(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "Alice", "alice@example.com")
	seedUser(t, r, "Bob", "bob@example.com")
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"Handover","user_id":1}`)

	rr := do(t, r, http.MethodPut, "/api/tasks/1", `{"title":"Handover","description":"now Bob's","user_id":2}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(2), body["user_id"])
	assert.Equal(t, "Bob", body["user_name"])
}

func TestTaskHandler_UpdateStatus(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "John", "john@example.com")
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"Write report","user_id":1}`)

	rr := do(t, r, http.MethodPut, "/api/tasks/1/status", `{"status":"in_progress"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, map[string]any{"id": float64(1), "status": "in_progress"}, body)
}

func TestTaskHandler_UpdateStatus_Invalid(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "John", "john@example.com")
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"Write report","user_id":1}`)

	rr := do(t, r, http.MethodPut, "/api/tasks/1/status", `{"status":"cancelled"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errs := decodeBody(t, rr)["errors"].(map[string]any)
	assert.Equal(t, "Status must be one of: todo, in_progress, done", errs["status"])

	// The stored status did not move.
	rr = do(t, r, http.MethodGet, "/api/tasks/1", "")
	assert.Equal(t, "todo", decodeBody(t, rr)["status"])
}

func TestTaskHandler_ListByUser(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "Alice", "alice@example.com")
	seedUser(t, r, "Bob", "bob@example.com")
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"hers","user_id":1}`)
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"his","user_id":2}`)
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"hers too","user_id":1}`)

	rr := do(t, r, http.MethodGet, "/api/tasks/user/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "hers", list[0]["title"])
	assert.Equal(t, "hers too", list[1]["title"])
	// Per-user entries omit the owner fields and updated_at.
	assert.NotContains(t, list[0], "user_id")
	assert.NotContains(t, list[0], "user_name")
	assert.NotContains(t, list[0], "updated_at")
}

func TestTaskHandler_ListByUser_UnknownUser(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, http.MethodGet, "/api/tasks/user/9", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found", decodeBody(t, rr)["error"])
}

func TestTaskHandler_Delete(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "John", "john@example.com")
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"temp","user_id":1}`)

	rr := do(t, r, http.MethodDelete, "/api/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, r, http.MethodGet, "/api/tasks/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// TestTaskHandler_UserLifecycle walks the flow end to end: a user with
// a task cannot be deleted until the task is gone.
func TestTaskHandler_UserLifecycle(t *testing.T) {
	r := newTestRouter(t)
	seedUser(t, r, "John", "john@example.com")
	do(t, r, http.MethodPost, "/api/tasks", `{"title":"blocking","user_id":1}`)
	do(t, r, http.MethodPut, "/api/tasks/1/status", `{"status":"done"}`)

	rr := do(t, r, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, r, http.MethodDelete, "/api/tasks/1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, r, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
