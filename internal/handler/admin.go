package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/rs/xid"

	"github.com/sakif/task-tracker/internal/apperror"
	"github.com/sakif/task-tracker/internal/auth"
	"github.com/sakif/task-tracker/internal/dto"
	"github.com/sakif/task-tracker/internal/flash"
	"github.com/sakif/task-tracker/internal/model"
	"github.com/sakif/task-tracker/internal/service"
)

// csrfCookie holds the double-submit CSRF token: the form renders it as
// a hidden field and the browser echoes the cookie; a forged cross-site
// POST can send neither.
const csrfCookie = "csrf_token"

// adminPages are the templates parsed on startup, each on top of
// base.html.
var adminPages = []string{
	"login.html",
	"users_index.html",
	"user_form.html",
	"tasks_index.html",
	"task_form.html",
}

// AdminHandler serves the HTML management surface under /admin. It
// drives the same services as the JSON API; only the error translation
// differs: validation re-renders the form, conflicts become flash
// notices, success redirects.
type AdminHandler struct {
	users     *service.UserService
	tasks     *service.TaskService
	sessions  *auth.SessionService
	passwords *auth.PasswordService
	adminHash string
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewAdminHandler parses the templates and wires the services. The
// session and password services are nil when the admin login is
// disabled; LoginEnabled reports which mode is active.
func NewAdminHandler(
	users *service.UserService,
	tasks *service.TaskService,
	templateDir string,
	sessions *auth.SessionService,
	passwords *auth.PasswordService,
	adminHash string,
	logger *slog.Logger,
) (*AdminHandler, error) {
	templates := make(map[string]*template.Template, len(adminPages))
	base := filepath.Join(templateDir, "base.html")
	for _, page := range adminPages {
		tmpl, err := template.ParseFiles(base, filepath.Join(templateDir, page))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &AdminHandler{
		users:     users,
		tasks:     tasks,
		sessions:  sessions,
		passwords: passwords,
		adminHash: adminHash,
		templates: templates,
		logger:    logger,
	}, nil
}

// LoginEnabled reports whether the admin surface requires a login.
func (h *AdminHandler) LoginEnabled() bool {
	return h.sessions != nil && h.passwords != nil && h.adminHash != ""
}

// adminPage is the data every admin template receives.
type adminPage struct {
	Flash        *flash.Notice
	CSRF         string
	Errors       map[string]string
	LoginEnabled bool

	Users    []model.User
	Tasks    []model.Task
	Statuses []model.StatusChoice

	// Form carries submitted values back into a re-rendered form.
	Form map[string]string
	// EditID is nonzero on edit forms.
	EditID int64
	// LoginFailed flags a rejected password on the login form.
	LoginFailed bool
}

// render executes a page template. The CSRF token is minted here so
// every rendered form carries a fresh one, cookie and hidden field in
// the same response. A notice set directly on the page (failed-submit
// re-renders) takes precedence over a pending flash cookie; the cookie
// path is for notices that must survive a redirect.
func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, page string, data adminPage) {
	if data.Flash == nil {
		data.Flash = flash.Take(w, r)
	}
	data.LoginEnabled = h.LoginEnabled()
	data.CSRF = h.setCSRF(w)

	if err := h.templates[page].ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

func (h *AdminHandler) setCSRF(w http.ResponseWriter) string {
	token := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// checkCSRF verifies the double-submit pair on a mutating request. On
// mismatch it writes a 403 and reports false.
func (h *AdminHandler) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(csrfCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.PostFormValue("csrf_token") {
		http.Error(w, "Invalid CSRF token", http.StatusForbidden)
		return false
	}
	return true
}

// formID parses the {id} parameter for admin routes. Failures redirect
// back to the index rather than rendering an error page.
func (h *AdminHandler) formID(w http.ResponseWriter, r *http.Request, index string) (int64, bool) {
	id, err := pathID(r, "record")
	if err != nil {
		http.Redirect(w, r, index, http.StatusSeeOther)
		return 0, false
	}
	return id, true
}

// HandleUsersIndex implements GET /admin/users.
func (h *AdminHandler) HandleUsersIndex(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "users_index.html", adminPage{Users: users})
}

// HandleUserNew implements GET /admin/users/new.
func (h *AdminHandler) HandleUserNew(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "user_form.html", adminPage{Form: map[string]string{}})
}

// HandleUserCreate implements POST /admin/users/new.
func (h *AdminHandler) HandleUserCreate(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	req := dto.CreateUserRequest{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}

	if _, err := h.users.Create(r.Context(), req); err != nil {
		h.renderUserForm(w, r, 0, req, err, "An error occurred while creating the user.")
		return
	}

	flash.Success(w, "User created successfully!")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleUserEdit implements GET /admin/users/{id}/edit.
func (h *AdminHandler) HandleUserEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r, "/admin/users")
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	h.render(w, r, "user_form.html", adminPage{
		EditID: user.ID,
		Form:   map[string]string{"name": user.Name, "email": user.Email},
	})
}

// HandleUserUpdate implements POST /admin/users/{id}/edit.
func (h *AdminHandler) HandleUserUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	id, ok := h.formID(w, r, "/admin/users")
	if !ok {
		return
	}

	req := dto.CreateUserRequest{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}

	if _, err := h.users.Update(r.Context(), id, req); err != nil {
		h.renderUserForm(w, r, id, req, err, "An error occurred while updating the user.")
		return
	}

	flash.Success(w, "User updated successfully!")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleUserDelete implements POST /admin/users/{id}/delete.
func (h *AdminHandler) HandleUserDelete(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	id, ok := h.formID(w, r, "/admin/users")
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			flash.Error(w, "Cannot delete user with existing tasks.")
		} else {
			flash.Error(w, "An error occurred while deleting the user.")
		}
	} else {
		flash.Success(w, "User deleted successfully!")
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// renderUserForm re-renders the user form after a failed submit:
// validation errors inline, conflicts and unexpected failures as a
// notice on the same page. The notice goes straight into the page
// data, not into the flash cookie: a cookie would only surface on the
// next navigation, not on the response being written now.
func (h *AdminHandler) renderUserForm(w http.ResponseWriter, r *http.Request, id int64, req dto.CreateUserRequest, err error, fallback string) {
	page := adminPage{
		EditID: id,
		Form:   map[string]string{"name": req.Name, "email": req.Email},
	}

	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation):
		page.Errors = appErr.Fields
	case errors.Is(err, apperror.ErrConflict):
		page.Flash = &flash.Notice{Kind: flash.KindError, Message: "Email already exists!"}
	default:
		page.Flash = &flash.Notice{Kind: flash.KindError, Message: fallback}
	}

	h.render(w, r, "user_form.html", page)
}

// HandleTasksIndex implements GET /admin/tasks.
func (h *AdminHandler) HandleTasksIndex(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "tasks_index.html", adminPage{Tasks: tasks})
}

// taskFormValues extracts the task form fields.
func taskFormValues(r *http.Request) map[string]string {
	return map[string]string{
		"title":       r.PostFormValue("title"),
		"description": r.PostFormValue("description"),
		"status":      r.PostFormValue("status"),
		"user_id":     r.PostFormValue("user_id"),
	}
}

// taskRequest converts submitted form values into the API DTO. A blank
// or non-numeric user select comes through as a nil UserID and fails
// the same required-field validation as the API.
func taskRequest(form map[string]string) dto.CreateTaskRequest {
	req := dto.CreateTaskRequest{
		Title:       form["title"],
		Description: form["description"],
	}
	if id, err := strconv.ParseInt(form["user_id"], 10, 64); err == nil {
		req.UserID = &id
	}
	return req
}

// HandleTaskNew implements GET /admin/tasks/new.
func (h *AdminHandler) HandleTaskNew(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "task_form.html", adminPage{
		Users:    users,
		Statuses: model.StatusChoices(),
		Form:     map[string]string{"status": model.StatusTodo.String()},
	})
}

// HandleTaskCreate implements POST /admin/tasks/new. The form offers a
// status select, which the create DTO does not carry; a non-default
// choice is applied as a status transition right after creation. The
// status is checked before anything is persisted, and a transition
// that still fails undoes the creation, so a failed submit never
// leaves a task behind.
func (h *AdminHandler) HandleTaskCreate(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	form := taskFormValues(r)
	statusReq := dto.UpdateTaskStatusRequest{Status: form["status"]}
	if fields := statusReq.Validate(); fields != nil {
		h.renderTaskForm(w, r, 0, form, apperror.ValidationFailed(fields), "An error occurred while creating the task.")
		return
	}

	task, err := h.tasks.Create(r.Context(), taskRequest(form))
	if err == nil && form["status"] != task.Status.String() {
		if _, err = h.tasks.UpdateStatus(r.Context(), task.ID, statusReq); err != nil {
			if delErr := h.tasks.Delete(r.Context(), task.ID); delErr != nil {
				h.logger.Error("failed to undo task creation",
					slog.Int64("id", task.ID),
					slog.String("error", delErr.Error()),
				)
			}
		}
	}
	if err != nil {
		h.renderTaskForm(w, r, 0, form, err, "An error occurred while creating the task.")
		return
	}

	flash.Success(w, "Task created successfully!")
	http.Redirect(w, r, "/admin/tasks", http.StatusSeeOther)
}

// HandleTaskEdit implements GET /admin/tasks/{id}/edit.
func (h *AdminHandler) HandleTaskEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r, "/admin/tasks")
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/admin/tasks", http.StatusSeeOther)
		return
	}
	users, err := h.users.List(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "task_form.html", adminPage{
		EditID:   task.ID,
		Users:    users,
		Statuses: model.StatusChoices(),
		Form: map[string]string{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status.String(),
			"user_id":     strconv.FormatInt(task.UserID, 10),
		},
	})
}

// HandleTaskUpdate implements POST /admin/tasks/{id}/edit.
func (h *AdminHandler) HandleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	id, ok := h.formID(w, r, "/admin/tasks")
	if !ok {
		return
	}

	form := taskFormValues(r)
	statusReq := dto.UpdateTaskStatusRequest{Status: form["status"]}
	if fields := statusReq.Validate(); fields != nil {
		h.renderTaskForm(w, r, id, form, apperror.ValidationFailed(fields), "An error occurred while updating the task.")
		return
	}

	_, err := h.tasks.Update(r.Context(), id, taskRequest(form))
	if err == nil {
		_, err = h.tasks.UpdateStatus(r.Context(), id, statusReq)
	}
	if err != nil {
		h.renderTaskForm(w, r, id, form, err, "An error occurred while updating the task.")
		return
	}

	flash.Success(w, "Task updated successfully!")
	http.Redirect(w, r, "/admin/tasks", http.StatusSeeOther)
}

// HandleTaskDelete implements POST /admin/tasks/{id}/delete.
func (h *AdminHandler) HandleTaskDelete(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	id, ok := h.formID(w, r, "/admin/tasks")
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		flash.Error(w, "An error occurred while deleting the task.")
	} else {
		flash.Success(w, "Task deleted successfully!")
	}

	http.Redirect(w, r, "/admin/tasks", http.StatusSeeOther)
}

func (h *AdminHandler) renderTaskForm(w http.ResponseWriter, r *http.Request, id int64, form map[string]string, err error, fallback string) {
	users, listErr := h.users.List(r.Context())
	if listErr != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	page := adminPage{
		EditID:   id,
		Users:    users,
		Statuses: model.StatusChoices(),
		Form:     form,
	}

	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation):
		page.Errors = appErr.Fields
	case errors.Is(err, apperror.ErrNotFound):
		page.Flash = &flash.Notice{Kind: flash.KindError, Message: "User not found"}
	default:
		page.Flash = &flash.Notice{Kind: flash.KindError, Message: fallback}
	}

	h.render(w, r, "task_form.html", page)
}

// HandleLoginForm implements GET /admin/login.
func (h *AdminHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", adminPage{})
}

// HandleLogin implements POST /admin/login. A correct password issues a
// session cookie; a wrong one re-renders the form without saying which
// part was wrong.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	if err := h.passwords.Verify(h.adminHash, r.PostFormValue("password")); err != nil {
		h.logger.Warn("admin login rejected", slog.String("remote", r.RemoteAddr))
		h.render(w, r, "login.html", adminPage{LoginFailed: true})
		return
	}

	token, err := h.sessions.Issue()
	if err != nil {
		h.logger.Error("failed to issue session", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("admin logged in", slog.String("remote", r.RemoteAddr))
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleLogout implements POST /admin/logout.
func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
