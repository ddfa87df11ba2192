package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
)

// DashboardHandler serves the owner's channel dashboard.
type DashboardHandler struct {
	Dashboard     DashboardStore
	Subscriptions SubscriptionReader
}

// Stats handles GET /api/v1/dashboard. Totals are summed from the per-video
// counts so they always agree with the listing below them.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	videos, err := h.Dashboard.OwnerVideoCounts(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to load dashboard")
		return
	}

	subscribers, err := h.Subscriptions.CountForChannel(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to load dashboard")
		return
	}

	stats := models.ChannelStats{
		Videos:           videos,
		SubscribersCount: subscribers,
	}
	for _, video := range videos {
		stats.TotalViews += video.Views
		stats.TotalLikes += video.LikesCount
		stats.TotalComments += video.CommentsCount
	}

	respondJSON(ctx, w, http.StatusOK, stats)
}
