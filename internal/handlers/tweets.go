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

// TweetHandler implements short text post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   viewerID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err, "unable to create tweet")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, tweet)
}

// ListForUser handles GET /api/v1/users/{userID}/tweets.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweets, err := h.Tweets.ForUser(ctx, r.PathValue("userID"))
	if err != nil {
		respondError(ctx, w, err, "unable to list tweets")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.TweetView]{Items: tweets})
}

// Update handles PATCH /api/v1/tweets/{tweetID}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetID"))
	if err != nil {
		respondError(ctx, w, err, "tweet not found")
		return
	}
	if err := ownership.Assert(viewerID, tweet.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may modify a tweet")
		return
	}

	if err := h.Tweets.UpdateContent(ctx, tweet.ID, req.Content); err != nil {
		respondError(ctx, w, err, "unable to update tweet")
		return
	}

	tweet.Content = req.Content
	respondJSON(ctx, w, http.StatusOK, tweet)
}

// Delete handles DELETE /api/v1/tweets/{tweetID}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetID"))
	if err != nil {
		respondError(ctx, w, err, "tweet not found")
		return
	}
	if err := ownership.Assert(viewerID, tweet.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may delete a tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err, "unable to delete tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type tweetRequest struct {
	Content string `json:"content"`
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
