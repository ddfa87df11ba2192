package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

type fixedDashboardStore struct {
	videos []models.DashboardVideo
}

func (s fixedDashboardStore) OwnerVideoCounts(_ context.Context, _ string) ([]models.DashboardVideo, error) {
	return s.videos, nil
}

func TestDashboardHandlerStatsSumsPerVideoCounts(t *testing.T) {
	dashboard := fixedDashboardStore{videos: []models.DashboardVideo{
		{ID: "vid-1", Title: "first", Views: 10, LikesCount: 2, CommentsCount: 1},
		{ID: "vid-2", Title: "second", Views: 5, LikesCount: 1, CommentsCount: 1},
		{ID: "vid-3", Title: "draft", Views: 0, LikesCount: 0, CommentsCount: 0},
	}}
	subscriptions := fixedSubscriptionReader{subscribers: []models.UserSummary{
		{ID: "fan-1", Username: "fan1"},
		{ID: "fan-2", Username: "fan2"},
	}}
	handler := DashboardHandler{Dashboard: dashboard, Subscriptions: subscriptions}

	req := asViewer(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil), "owner-1")
	rec := httptest.NewRecorder()

	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}

	var stats models.ChannelStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(stats.Videos) != 3 {
		t.Fatalf("got %d videos, want 3", len(stats.Videos))
	}
	if stats.TotalViews != 15 {
		t.Errorf("got total views %d, want 15", stats.TotalViews)
	}
	if stats.TotalLikes != 3 {
		t.Errorf("got total likes %d, want 3", stats.TotalLikes)
	}
	if stats.TotalComments != 2 {
		t.Errorf("got total comments %d, want 2", stats.TotalComments)
	}
	if stats.SubscribersCount != 2 {
		t.Errorf("got subscribers count %d, want 2", stats.SubscribersCount)
	}
}

func TestDashboardHandlerStatsRequiresViewer(t *testing.T) {
	handler := DashboardHandler{Dashboard: fixedDashboardStore{}, Subscriptions: fixedSubscriptionReader{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	rec := httptest.NewRecorder()

	handler.Stats(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
