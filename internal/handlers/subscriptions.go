package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/relations"
)

// SubscriptionHandler implements the channel subscription endpoints.
type SubscriptionHandler struct {
	Toggle        Toggler
	Subscriptions SubscriptionReader
}

// ToggleSubscription handles POST /api/v1/channels/{channelID}/subscribe.
func (h SubscriptionHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	result, err := h.Toggle.Toggle(ctx, viewerID, r.PathValue("channelID"))
	if err != nil {
		respondError(ctx, w, err, "unable to toggle subscription")
		return
	}

	respondJSON(ctx, w, http.StatusOK, subscribeResponse{Subscribed: result.Outcome == relations.OutcomeCreated})
}

// Subscribers handles GET /api/v1/channels/{channelID}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset, limit := pageParams(r)
	subscribers, err := h.Subscriptions.Subscribers(ctx, r.PathValue("channelID"), offset, limit)
	if err != nil {
		respondError(ctx, w, err, "unable to list subscribers")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.UserSummary]{Items: subscribers})
}

// SubscribedChannels handles GET /api/v1/subscriptions, the channels the
// viewer follows.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID := auth.ViewerID(ctx)
	if viewerID == "" {
		respondUnauthorized(ctx, w)
		return
	}

	channels, err := h.Subscriptions.SubscribedChannels(ctx, viewerID)
	if err != nil {
		respondError(ctx, w, err, "unable to list subscriptions")
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[models.UserSummary]{Items: channels})
}

type subscribeResponse struct {
	Subscribed bool `json:"subscribed"`
}
