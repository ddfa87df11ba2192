package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

type fakeVideoStore struct {
	videos     map[string]models.Video
	listOffset int
	listLimit  int
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video)}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.IsPublished = published
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) Detail(_ context.Context, videoID, _ string) (models.VideoDetail, error) {
	video, ok := s.videos[videoID]
	if !ok {
		return models.VideoDetail{}, repositories.ErrNotFound
	}
	return models.VideoDetail{
		ID:          video.ID,
		Title:       video.Title,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		OwnerID:     video.OwnerID,
	}, nil
}

func (s *fakeVideoStore) ListPublished(_ context.Context, offset, limit int) ([]models.VideoListItem, error) {
	s.listOffset, s.listLimit = offset, limit
	return nil, nil
}

func (s *fakeVideoStore) Search(_ context.Context, _ string, offset, limit int) ([]models.VideoListItem, error) {
	s.listOffset, s.listLimit = offset, limit
	return nil, nil
}

type fakeHistoryStore struct {
	recorded [][2]string
}

func (s *fakeHistoryStore) RecordView(_ context.Context, userID, videoID string) error {
	s.recorded = append(s.recorded, [2]string{userID, videoID})
	return nil
}

func (s *fakeHistoryStore) List(_ context.Context, _ string) ([]models.HistoryEntry, error) {
	return nil, nil
}

type fakeAssets struct {
	saved   []string
	deleted []string
	saveErr error
}

func (s *fakeAssets) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	s.saved = append(s.saved, name)
	return "https://cdn.example.com/" + name, nil
}

func (s *fakeAssets) Delete(_ context.Context, locations []string) error {
	s.deleted = append(s.deleted, locations...)
	return nil
}

func asViewer(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithViewerID(req.Context(), userID))
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatalf("write field %s: %v", field, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create file part %s: %v", field, err)
		}
		if _, err := part.Write([]byte("binary")); err != nil {
			t.Fatalf("write file part %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestVideoHandlerListPagination(t *testing.T) {
	store := newFakeVideoStore()
	handler := VideoHandler{Videos: store, History: &fakeHistoryStore{}, Assets: &fakeAssets{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?page=3&limit=15", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.listOffset != 30 || store.listLimit != 15 {
		t.Fatalf("expected offset 30 limit 15, got %d/%d", store.listOffset, store.listLimit)
	}
}

func TestVideoHandlerPublish(t *testing.T) {
	store := newFakeVideoStore()
	assets := &fakeAssets{}
	handler := VideoHandler{Videos: store, History: &fakeHistoryStore{}, Assets: assets}

	body, contentType := multipartBody(t,
		map[string]string{"title": "First upload", "description": "hello", "duration": "12.5"},
		map[string]string{"video": "clip.mp4", "thumbnail": "cover.png"},
	)
	req := asViewer(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), "owner-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if len(assets.saved) != 2 {
		t.Fatalf("expected 2 uploads, got %v", assets.saved)
	}
	if len(store.videos) != 1 {
		t.Fatalf("expected 1 stored video, got %d", len(store.videos))
	}
	for _, video := range store.videos {
		if video.OwnerID != "owner-1" || !video.IsPublished || video.Duration != 12.5 {
			t.Fatalf("unexpected stored video: %+v", video)
		}
	}
}

func TestVideoHandlerPublishStorageFailure(t *testing.T) {
	store := newFakeVideoStore()
	assets := &fakeAssets{saveErr: storage.ErrUpstream}
	handler := VideoHandler{Videos: store, History: &fakeHistoryStore{}, Assets: assets}

	body, contentType := multipartBody(t,
		map[string]string{"title": "First upload"},
		map[string]string{"video": "clip.mp4", "thumbnail": "cover.png"},
	)
	req := asViewer(httptest.NewRequest(http.MethodPost, "/api/v1/videos", body), "owner-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d got %d", http.StatusBadGateway, rec.Code)
	}
	if len(store.videos) != 0 {
		t.Fatal("expected no video row after a storage failure")
	}
}

func TestVideoHandlerPublishRequiresViewer(t *testing.T) {
	handler := VideoHandler{Videos: newFakeVideoStore(), History: &fakeHistoryStore{}, Assets: &fakeAssets{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", nil)
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestVideoHandlerDetailRecordsView(t *testing.T) {
	store := newFakeVideoStore()
	store.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "owner-1", Title: "Watch me", IsPublished: true}
	history := &fakeHistoryStore{}
	handler := VideoHandler{Videos: store, History: history, Assets: &fakeAssets{}}

	req := asViewer(httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1", nil), "viewer-1")
	req.SetPathValue("videoID", "vid-1")
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if len(history.recorded) != 1 || history.recorded[0] != [2]string{"viewer-1", "vid-1"} {
		t.Fatalf("expected one recorded view, got %v", history.recorded)
	}
}

func TestVideoHandlerDetailAnonymousSkipsHistory(t *testing.T) {
	store := newFakeVideoStore()
	store.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "owner-1", IsPublished: true}
	history := &fakeHistoryStore{}
	handler := VideoHandler{Videos: store, History: history, Assets: &fakeAssets{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1", nil)
	req.SetPathValue("videoID", "vid-1")
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if len(history.recorded) != 0 {
		t.Fatalf("expected no recorded views, got %v", history.recorded)
	}
}

func TestVideoHandlerDetailUnpublishedRequiresOwner(t *testing.T) {
	store := newFakeVideoStore()
	store.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "owner-1", IsPublished: false}
	handler := VideoHandler{Videos: store, History: &fakeHistoryStore{}, Assets: &fakeAssets{}}

	req := asViewer(httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1", nil), "viewer-1")
	req.SetPathValue("videoID", "vid-1")
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d for another viewer got %d", http.StatusUnauthorized, rec.Code)
	}

	// The owner still sees the draft.
	req = asViewer(httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1", nil), "owner-1")
	req.SetPathValue("videoID", "vid-1")
	rec = httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d for the owner got %d", http.StatusOK, rec.Code)
	}
}

func TestVideoHandlerUpdateRejectsNonOwner(t *testing.T) {
	store := newFakeVideoStore()
	store.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "owner-1", Title: "Original"}
	handler := VideoHandler{Videos: store, History: &fakeHistoryStore{}, Assets: &fakeAssets{}}

	body, _ := json.Marshal(updateVideoRequest{Title: "Hijacked"})
	req := asViewer(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/vid-1", bytes.NewReader(body)), "intruder")
	req.SetPathValue("videoID", "vid-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if store.videos["vid-1"].Title != "Original" {
		t.Fatal("expected title to be unchanged")
	}
}

func TestVideoHandlerDeleteRemovesAssets(t *testing.T) {
	store := newFakeVideoStore()
	store.videos["vid-1"] = models.Video{
		ID:        "vid-1",
		OwnerID:   "owner-1",
		VideoURL:  "https://cdn.example.com/videos/a.mp4",
		Thumbnail: "https://cdn.example.com/thumbnails/a.png",
	}
	assets := &fakeAssets{}
	handler := VideoHandler{Videos: store, History: &fakeHistoryStore{}, Assets: assets}

	req := asViewer(httptest.NewRequest(http.MethodDelete, "/api/v1/videos/vid-1", nil), "owner-1")
	req.SetPathValue("videoID", "vid-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if _, err := store.FindByID(context.Background(), "vid-1"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatal("expected video row to be gone")
	}
	if len(assets.deleted) != 2 {
		t.Fatalf("expected both assets deleted, got %v", assets.deleted)
	}
}

func TestVideoHandlerTogglePublish(t *testing.T) {
	store := newFakeVideoStore()
	store.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "owner-1", IsPublished: true}
	handler := VideoHandler{Videos: store, History: &fakeHistoryStore{}, Assets: &fakeAssets{}}

	req := asViewer(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/vid-1/publish", nil), "owner-1")
	req.SetPathValue("videoID", "vid-1")
	rec := httptest.NewRecorder()

	handler.TogglePublish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.videos["vid-1"].IsPublished {
		t.Fatal("expected video to be unpublished")
	}
}
