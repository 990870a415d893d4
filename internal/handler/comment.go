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

// CommentHandler serves /api/comments.
type CommentHandler struct {
	responder
	svc *service.CommentService
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(svc *service.CommentService, logger *slog.Logger, dev bool) *CommentHandler {
	return &CommentHandler{
		responder: responder{logger: logger, dev: dev},
		svc:       svc,
	}
}

func (h *CommentHandler) commentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid comment ID", "")
		return 0, false
	}
	return id, true
}

// HandleList serves GET /api/comments?search=&postId=&userId=&page=&limit=.
// The response carries a bare array — no pagination block, unlike the user
// listing.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	comments, err := h.svc.List(r.Context(), service.ListQuery{
		Search: q.Get("search"),
		PostID: queryInt64Ptr(q, "postId"),
		UserID: queryInt64Ptr(q, "userId"),
		Page:   queryInt(q, "page"),
		Limit:  queryInt(q, "limit"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    comments,
		Message: "Comments fetched successfully",
	})
}

// HandleGetByID serves GET /api/comments/{id}.
func (h *CommentHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.commentID(w, r)
	if !ok {
		return
	}

	comment, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    comment,
		Message: "Comment fetched successfully",
	})
}

// HandleCreate serves POST /api/comments.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var data model.NewComment
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid JSON body", "Validation error")
		return
	}

	comment, err := h.svc.Create(r.Context(), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    comment,
		Message: "Comment created successfully",
	})
}

// HandleUpdate serves PUT /api/comments/{id}.
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.commentID(w, r)
	if !ok {
		return
	}

	var patch model.CommentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid JSON body", "Validation error")
		return
	}

	comment, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    comment,
		Message: "Comment updated successfully",
	})
}

// HandleDelete serves DELETE /api/comments/{id}.
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.commentID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    deleteResult{Message: "Comment deleted successfully"},
		Message: "Comment deleted successfully",
	})
}
