package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/ownership"
	"github.com/cliptube/backend/internal/relations"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps domain sentinels onto HTTP statuses. Everything not
// recognized is a server error.
func respondError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repositories.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, repositories.ErrAlreadyInPlaylist),
		errors.Is(err, repositories.ErrNotInPlaylist),
		errors.Is(err, relations.ErrSelfRelation),
		errors.Is(err, repositories.ErrSelfSubscription):
		status = http.StatusBadRequest
	case errors.Is(err, ownership.ErrNotOwner):
		status = http.StatusUnauthorized
	case errors.Is(err, storage.ErrUpstream):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).Error(message, "error", err)
	}
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

func respondUnauthorized(ctx context.Context, w http.ResponseWriter) {
	respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
}

// pageParams resolves ?page and ?limit into an offset/limit pair. Out-of-range
// values are coerced rather than rejected, so page 0 and page 1 read the same
// window.
func pageParams(r *http.Request) (offset, limit int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return (page - 1) * limit, limit
}
