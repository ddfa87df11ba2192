package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/relations"
)

// LikeHandler implements the like toggle endpoints, one per target kind. Each
// endpoint delegates to a relation toggle engine configured for that kind.
type LikeHandler struct {
	VideoLikes   Toggler
	CommentLikes Toggler
	TweetLikes   Toggler
	Likes        LikeReader
}

// ToggleVideo handles POST /api/v1/videos/{videoID}/like.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.VideoLikes, r.PathValue("videoID"))
}

// ToggleComment handles POST /api/v1/comments/{commentID}/like.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.CommentLikes, r.PathValue("commentID"))
}

// ToggleTweet handles POST /api/v1/tweets/{tweetID}/like.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.TweetLikes, r.PathValue("tweetID"))
}

// LikedVideos handles GET /api/v1/likes/videos, the viewer's liked videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	videos, err := h.Likes.LikedVideos(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to list liked videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.VideoListItem]{Items: videos})
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, engine Toggler, targetID string) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	result, err := engine.Toggle(ctx, viewerID, targetID)
	if err != nil {
		respondError(ctx, w, err, "unable to toggle like")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toggleResponse{Liked: result.Outcome == relations.OutcomeCreated})
}

type toggleResponse struct {
	Liked bool `json:"liked"`
}
