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

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     viewerID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Visibility:  req.Visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err, "unable to create playlist")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, playlist)
}

// Detail handles GET /api/v1/playlists/{playlistID}. Private playlists are
// visible only to their owner.
func (h PlaylistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := h.Playlists.Detail(ctx, r.PathValue("playlistID"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}

	if !detail.Visibility && detail.OwnerID != auth.ViewerID(ctx) {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized request"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, detail)
}

// ListForUser handles GET /api/v1/users/{userID}/playlists. Owners see their
// private playlists as well.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userID")
	includePrivate := userID == auth.ViewerID(ctx)

	playlists, err := h.Playlists.ForOwner(ctx, userID, includePrivate)
	if err != nil {
		respondError(ctx, w, err, "unable to list playlists")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.PlaylistSummary]{Items: playlists})
}

// Update handles PATCH /api/v1/playlists/{playlistID}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistID"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := ownership.Assert(viewerID, playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may modify a playlist")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		playlist.Name = name
	}
	if req.Description != nil {
		playlist.Description = strings.TrimSpace(*req.Description)
	}
	if req.Visibility != nil {
		playlist.Visibility = *req.Visibility
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondError(ctx, w, err, "unable to update playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlist)
}

// Delete handles DELETE /api/v1/playlists/{playlistID}. Entries go with the
// playlist; the videos themselves are untouched.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistID"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := ownership.Assert(viewerID, playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may delete a playlist")
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, err, "unable to delete playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddVideo handles POST /api/v1/playlists/{playlistID}/videos/{videoID}. The
// video lands at the front of the playlist.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistID"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := ownership.Assert(viewerID, playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may modify a playlist")
		return
	}

	videoID := r.PathValue("videoID")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, err, "unable to add video to playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistID}/videos/{videoID}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistID"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := ownership.Assert(viewerID, playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may modify a playlist")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, r.PathValue("videoID")); err != nil {
		respondError(ctx, w, err, "unable to remove video from playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  bool   `json:"visibility"`
}

type updatePlaylistRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Visibility  *bool   `json:"visibility"`
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
