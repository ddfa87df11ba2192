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

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos,
// including the read-time aggregated views built on top of them.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail, duration, is_published, views, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL, video.Thumbnail, video.Duration, video.IsPublished, video.Views, video.CreatedAt, video.UpdatedAt)
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
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches the raw video record.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, title, description, video_url, thumbnail, duration, is_published, views, created_at, updated_at
        FROM videos
        WHERE id = $1
    `, id)

	var video models.Video
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.VideoURL, &video.Thumbnail, &video.Duration, &video.IsPublished, &video.Views, &video.CreatedAt, &video.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Exists reports whether a video with the provided identifier exists.
func (r *PostgresVideoRepository) Exists(ctx context.Context, id string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check video exists: %w", err)
	}

	return exists, nil
}

// Update modifies the mutable fields of an existing video.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail = $4, updated_at = $5
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.Thumbnail, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPublished flips the publication flag of a video.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET is_published = $2, updated_at = NOW()
        WHERE id = $1
    `, id, published)
	if err != nil {
		return fmt.Errorf("update video publication: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the video record. Likes, comments, playlist entries and watch
// history rows referencing the video are deliberately left in place; dependent
// relations are never cascaded.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Detail assembles the aggregated single-video view for a viewer: the owner's
// public projection enriched with subscriber count and the viewer's
// subscription state, plus the like count. Counts are computed at read time.
// Publication visibility is the caller's concern; the row is returned either way.
func (r *PostgresVideoRepository) Detail(ctx context.Context, videoID, viewerID string) (models.VideoDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail, v.duration, v.views, v.is_published, v.created_at, v.owner_id,
               u.username, u.full_name, u.avatar,
               (SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id) AS likes_count,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = v.owner_id) AS subscribers_count,
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = v.owner_id AND s.subscriber_id = $2) AS is_subscribed
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, videoID, viewerID)

	var detail models.VideoDetail
	if err := row.Scan(
		&detail.ID, &detail.Title, &detail.Description, &detail.VideoURL, &detail.Thumbnail, &detail.Duration,
		&detail.Views, &detail.IsPublished, &detail.CreatedAt, &detail.OwnerID,
		&detail.Owner.Username, &detail.Owner.FullName, &detail.Owner.Avatar,
		&detail.LikesCount, &detail.Owner.SubscribersCount, &detail.Owner.IsSubscribed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoDetail{}, ErrNotFound
		}
		return models.VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	detail.Owner.ID = detail.OwnerID
	return detail, nil
}

// ListPublished returns published videos in reverse chronological order with
// offset pagination. The offset contract is not stable under concurrent
// inserts or deletes; see DESIGN.md.
func (r *PostgresVideoRepository) ListPublished(ctx context.Context, offset, limit int) ([]models.VideoListItem, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail, v.views, v.duration, v.created_at,
               u.id, u.username, u.full_name, u.avatar
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.is_published
        ORDER BY v.created_at DESC, v.id
        OFFSET $1 LIMIT $2
    `, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	return scanVideoListItems(rows, false)
}

// Search ranks published videos against a free-text query using the storage
// engine's text index, orders by relevance descending, then paginates. The
// relevance score is attached to each item; ranking itself is delegated to the
// index.
func (r *PostgresVideoRepository) Search(ctx context.Context, query string, offset, limit int) ([]models.VideoListItem, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail, v.views, v.duration, v.created_at,
               u.id, u.username, u.full_name, u.avatar,
               ts_rank(to_tsvector('english', v.title || ' ' || v.description), websearch_to_tsquery('english', $1)) AS score
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.is_published
          AND to_tsvector('english', v.title || ' ' || v.description) @@ websearch_to_tsquery('english', $1)
        ORDER BY score DESC, v.created_at DESC
        OFFSET $2 LIMIT $3
    `, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("query video search: %w", err)
	}
	defer rows.Close()

	return scanVideoListItems(rows, true)
}

func scanVideoListItems(rows pgx.Rows, withScore bool) ([]models.VideoListItem, error) {
	var items []models.VideoListItem
	for rows.Next() {
		var item models.VideoListItem
		dest := []any{
			&item.ID, &item.Title, &item.Thumbnail, &item.Views, &item.Duration, &item.CreatedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.Avatar,
		}
		if withScore {
			dest = append(dest, &item.Score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan video item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video items: %w", err)
	}

	return items, nil
}

// OwnerVideoCounts returns every video owned by the user, published or not,
// each joined with its like and comment counts. Feeds the dashboard views.
func (r *PostgresVideoRepository) OwnerVideoCounts(ctx context.Context, ownerID string) ([]models.DashboardVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail, v.is_published, v.views, v.created_at,
               (SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id) AS likes_count,
               (SELECT COUNT(*) FROM comments c WHERE c.video_id = v.id) AS comments_count
        FROM videos v
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query owner videos: %w", err)
	}
	defer rows.Close()

	var videos []models.DashboardVideo
	for rows.Next() {
		var video models.DashboardVideo
		if err := rows.Scan(&video.ID, &video.Title, &video.Thumbnail, &video.IsPublished, &video.Views, &video.CreatedAt, &video.LikesCount, &video.CommentsCount); err != nil {
			return nil, fmt.Errorf("scan owner video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owner videos: %w", err)
	}

	return videos, nil
}
