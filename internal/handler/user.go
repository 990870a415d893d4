// Package handler contains the HTTP layer: request parsing, response
// envelopes, and the mapping from service errors to status codes.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/user-directory/internal/model"
	"github.com/sakif/user-directory/internal/service"
)

// UserHandler serves /api/users.
type UserHandler struct {
	responder
	svc *service.UserService
}

// NewUserHandler creates a UserHandler. dev controls whether internal error
// detail is exposed in 500 responses.
func NewUserHandler(svc *service.UserService, logger *slog.Logger, dev bool) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger, dev: dev},
		svc:       svc,
	}
}

// userID parses the {id} path segment. A non-numeric segment is rejected with
// 400 here, before the service layer (and therefore the database) is ever
// touched.
func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid user ID", "")
		return 0, false
	}
	return id, true
}

// HandleList serves GET /api/users?search=&page=&limit=.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, pagination, err := h.svc.List(r.Context(), q.Get("search"), queryInt(q, "page"), queryInt(q, "limit"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success:    true,
		Data:       users,
		Pagination: &pagination,
		Message:    "Users fetched successfully",
	})
}

// HandleGetByID serves GET /api/users/{id}.
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    user,
		Message: "User fetched successfully",
	})
}

// HandleCreate serves POST /api/users.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var data model.NewUser
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid JSON body", "Validation error")
		return
	}

	user, err := h.svc.Create(r.Context(), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    user,
		Message: "User created successfully",
	})
}

// HandleUpdate serves PUT /api/users/{id}. The body is a partial payload —
// absent fields stay untouched, and nested address/geo/company follow the
// upsert-by-presence rule.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var patch model.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid JSON body", "Validation error")
		return
	}

	user, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    user,
		Message: "User updated successfully",
	})
}

// HandleDelete serves DELETE /api/users/{id}. The response confirms the
// deletion; it does not echo the deleted entity.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    deleteResult{Message: "User deleted successfully"},
		Message: "User deleted successfully",
	})
}
