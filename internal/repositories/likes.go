package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
)

// PostgresLikeRepository persists like relations. The compound unique index on
// (liked_by, target_kind, target_id) is the final arbiter of the toggle
// invariant: concurrent inserts for the same tuple surface ErrConflict.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Find looks up a like by its identifying tuple.
func (r *PostgresLikeRepository) Find(ctx context.Context, kind models.LikeKind, likedBy, targetID string) (models.Like, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, liked_by, target_kind, target_id, created_at
        FROM likes
        WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
    `, likedBy, kind, targetID)

	var like models.Like
	if err := row.Scan(&like.ID, &like.LikedBy, &like.Kind, &like.TargetID, &like.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, ErrNotFound
		}
		return models.Like{}, fmt.Errorf("select like: %w", err)
	}

	return like, nil
}

// Create inserts a like record. A duplicate tuple surfaces ErrConflict.
func (r *PostgresLikeRepository) Create(ctx context.Context, like models.Like) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, target_kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, like.ID, like.LikedBy, like.Kind, like.TargetID, like.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// Delete removes a like by its identifying tuple.
func (r *PostgresLikeRepository) Delete(ctx context.Context, kind models.LikeKind, likedBy, targetID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
    `, likedBy, kind, targetID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// LikedVideos returns the videos a user has liked, joined with the video
// projection. Likes whose video has since been deleted are skipped by the join.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, userID string) ([]models.VideoListItem, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail, v.views, v.duration, v.created_at,
               u.id, u.username, u.full_name, u.avatar
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	return scanVideoListItems(rows, false)
}
