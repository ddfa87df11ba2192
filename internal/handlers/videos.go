package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/ownership"
)

const videoUploadLimit = 1 << 30

// VideoHandler implements video publishing and viewing endpoints.
type VideoHandler struct {
	Videos  VideoStore
	History HistoryStore
	Assets  AssetStorage
	NowFunc func() time.Time
}

// List handles GET /api/v1/videos. A ?query parameter switches from plain
// recency listing to ranked text search.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset, limit := pageParams(r)
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	var (
		items []models.VideoListItem
		err   error
	)
	if query != "" {
		items, err = h.Videos.Search(ctx, query, offset, limit)
	} else {
		items, err = h.Videos.ListPublished(ctx, offset, limit)
	}
	if err != nil {
		respondError(ctx, w, err, "unable to list videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.VideoListItem]{Items: items})
}

// Publish handles POST /api/v1/videos. The video and thumbnail files are
// uploaded before the video row is written, so a storage failure leaves no
// dangling entity.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	if err := r.ParseMultipartForm(videoUploadLimit); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart payload"})
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	videoURL, err := h.uploadPart(r, "video", "videos")
	if err != nil {
		respondError(ctx, w, err, "unable to store video file")
		return
	}
	if videoURL == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "video file is required"})
		return
	}

	thumbnail, err := h.uploadPart(r, "thumbnail", "thumbnails")
	if err != nil {
		respondError(ctx, w, err, "unable to store thumbnail")
		return
	}
	if thumbnail == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "thumbnail file is required"})
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     viewerID,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		VideoURL:    videoURL,
		Thumbnail:   thumbnail,
		Duration:    duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondError(ctx, w, err, "unable to publish video")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, video)
}

// Detail handles GET /api/v1/videos/{videoID}. For signed-in viewers the view
// is recorded on the watch history, which also drives the views counter.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := r.PathValue("videoID")
	viewerID := auth.ViewerID(ctx)

	detail, err := h.Videos.Detail(ctx, videoID, viewerID)
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}

	if !detail.IsPublished && detail.OwnerID != viewerID {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized request"})
		return
	}

	// The recorded view lands in the counter after this response; the detail
	// payload carries the count as of the lookup.
	if viewerID != "" {
		if err := h.History.RecordView(ctx, viewerID, videoID); err != nil {
			logger.Warn("failed to record view", "error", err, "videoId", videoID, "userId", viewerID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, detail)
}

// Update handles PATCH /api/v1/videos/{videoID}. Metadata fields come as JSON
// unless the request is multipart, in which case a replacement thumbnail may
// accompany them.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoID"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}
	if err := ownership.Assert(viewerID, video.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may modify a video")
		return
	}

	var req updateVideoRequest
	var newThumbnail string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(imageUploadLimit); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart payload"})
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")

		newThumbnail, err = h.uploadPart(r, "thumbnail", "thumbnails")
		if err != nil {
			respondError(ctx, w, err, "unable to store thumbnail")
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" && req.Description == "" && newThumbnail == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "nothing to update"})
		return
	}

	oldThumbnail := video.Thumbnail
	if req.Title != "" {
		video.Title = req.Title
	}
	if req.Description != "" {
		video.Description = req.Description
	}
	if newThumbnail != "" {
		video.Thumbnail = newThumbnail
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondError(ctx, w, err, "unable to update video")
		return
	}

	if newThumbnail != "" && oldThumbnail != "" {
		if err := h.Assets.Delete(ctx, []string{oldThumbnail}); err != nil {
			logger.Warn("failed to remove replaced thumbnail", "error", err, "videoId", video.ID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// Delete handles DELETE /api/v1/videos/{videoID}. Comments, likes, playlist
// entries and history rows referencing the video are left in place. Stored
// assets are removed best-effort after the row is gone.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoID"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}
	if err := ownership.Assert(viewerID, video.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may delete a video")
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, err, "unable to delete video")
		return
	}

	assets := make([]string, 0, 2)
	if video.VideoURL != "" {
		assets = append(assets, video.VideoURL)
	}
	if video.Thumbnail != "" {
		assets = append(assets, video.Thumbnail)
	}
	if len(assets) > 0 {
		if err := h.Assets.Delete(ctx, assets); err != nil {
			logger.Warn("failed to remove video assets", "error", err, "videoId", video.ID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// TogglePublish handles PATCH /api/v1/videos/{videoID}/publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoID"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}
	if err := ownership.Assert(viewerID, video.OwnerID); err != nil {
		respondError(ctx, w, err, "only the owner may change publish state")
		return
	}

	if err := h.Videos.SetPublished(ctx, video.ID, !video.IsPublished); err != nil {
		respondError(ctx, w, err, "unable to change publish state")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"isPublished": !video.IsPublished})
}

func (h VideoHandler) uploadPart(r *http.Request, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.Assets.Save(r.Context(), objectKey(prefix, header), file)
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
