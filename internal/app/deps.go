package app

import (
	"context"
	"fmt"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/relations"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// buildDependencies wires together the concrete implementations used by the
// HTTP handlers. The session manager is returned separately because the
// authentication middleware needs it too.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, *auth.Manager, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	history := repositories.NewPostgresHistoryRepository(pool)

	sessions := auth.NewManager(
		cfg.TokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		repositories.NewPostgresSessionStore(pool),
	)

	assets, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
	}

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      sessions,
		Videos:        videos,
		Comments:      comments,
		Tweets:        tweets,
		Playlists:     playlists,
		History:       history,
		Dashboard:     videos,
		Likes:         likes,
		Subscriptions: subscriptions,
		VideoLikes:    relations.NewEngine(relations.NewLikeStore(likes, models.LikeKindVideo), videos, false),
		CommentLikes:  relations.NewEngine(relations.NewLikeStore(likes, models.LikeKindComment), comments, false),
		TweetLikes:    relations.NewEngine(relations.NewLikeStore(likes, models.LikeKindTweet), tweets, false),
		Subscribe:     relations.NewEngine(relations.NewSubscriptionStore(subscriptions), users, true),
		Assets:        assets,
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, 10*cfg.AuthRateWindow),
	}

	return deps, sessions, nil
}
