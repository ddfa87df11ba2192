package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/ownership"
)

// CommentHandler implements video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

// ListForVideo handles GET /api/v1/videos/{videoID}/comments.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset, limit := pageParams(r)
	comments, err := h.Comments.ForVideo(ctx, r.PathValue("videoID"), offset, limit)
	if err != nil {
		respondError(ctx, w, err, "unable to list comments")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.CommentView]{Items: comments})
}

// Create handles POST /api/v1/videos/{videoID}/comments.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	videoID := r.PathValue("videoID")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   viewerID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err, "unable to create comment")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment)
}

// Update handles PATCH /api/v1/comments/{commentID}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentID"))
	if err != nil {
		respondError(ctx, w, err, "comment not found")
		return
	}
	if err := ownership.Assert(viewerID, comment.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may modify a comment")
		return
	}

	if err := h.Comments.UpdateContent(ctx, comment.ID, req.Content); err != nil {
		respondError(ctx, w, err, "unable to update comment")
		return
	}

	comment.Content = req.Content
	respondJSON(ctx, w, http.StatusOK, comment)
}

// Delete handles DELETE /api/v1/comments/{commentID}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentID"))
	if err != nil {
		respondError(ctx, w, err, "comment not found")
		return
	}
	if err := ownership.Assert(viewerID, comment.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may delete a comment")
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err, "unable to delete comment")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
