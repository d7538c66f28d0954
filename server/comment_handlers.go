package server

import (
	"net/http"

	"stemhub/service"

	"github.com/gorilla/mux"
)

type createCommentRequest struct {
	User    string `json:"user" validate:"required"`
	Comment string `json:"comment" validate:"required"`
}

// CreateCommentHandler POST /comments
func (h *APIHandler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkAssignedUser(p, req.User); err != nil {
		writeError(w, r, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), service.CreateCommentInput{
		User:    req.User,
		Comment: req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Comment created successfully.", comment)
}

// GetCommentsHandler GET /comments
func (h *APIHandler) GetCommentsHandler(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Comments retrieved successfully.", comments)
}

// GetCommentHandler GET /comments/{id}
func (h *APIHandler) GetCommentHandler(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comments.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Comment retrieved successfully.", comment)
}

// DeleteCommentHandler DELETE /comments/{id}
func (h *APIHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := h.comments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkOwner(p, existing.User); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.comments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Comment deleted successfully.", nil)
}
