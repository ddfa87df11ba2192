package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
)

// HistoryHandler serves the viewer's watch history.
type HistoryHandler struct {
	History HistoryStore
}

// List handles GET /api/v1/history, most recently watched first.
func (h HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	entries, err := h.History.List(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to list watch history")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.HistoryEntry]{Items: entries})
}
