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

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists and their ordered video entries. New entries go to the front;
// duplicates are rejected by the (playlist_id, video_id) primary key.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create stores a new playlist record.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, visibility, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.Visibility, playlist.CreatedAt, playlist.UpdatedAt)
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
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindByID fetches the raw playlist record.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, visibility, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id)

	var playlist models.Playlist
	if err := row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description, &playlist.Visibility, &playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	return playlist, nil
}

// Update modifies the mutable fields of an existing playlist.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlists
        SET name = $2, description = $3, visibility = $4, updated_at = $5
        WHERE id = $1
    `, playlist.ID, playlist.Name, playlist.Description, playlist.Visibility, playlist.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the playlist; its entries go with it via the cascade.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddVideo inserts a video at the front of the playlist. Existing entries are
// shifted down inside the same transaction so the order stays total. Adding a
// video that is already present surfaces ErrAlreadyInPlaylist.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin playlist add: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
        UPDATE playlist_videos
        SET position = position + 1
        WHERE playlist_id = $1
    `, playlistID); err != nil {
		return fmt.Errorf("shift playlist entries: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, position)
        VALUES ($1, $2, 0)
    `, playlistID, videoID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyInPlaylist
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert playlist entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit playlist add: %w", err)
	}

	return nil
}

// RemoveVideo deletes a playlist entry. Removing a video that is not in the
// playlist surfaces ErrNotInPlaylist. Position gaps left behind do not affect
// ordering.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("delete playlist entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotInPlaylist
	}

	return nil
}

// ForOwner lists a user's playlists with the first video's thumbnail attached.
// When includePrivate is false only playlists marked visible are returned,
// which is how foreign viewers see someone else's playlists.
func (r *PostgresPlaylistRepository) ForOwner(ctx context.Context, ownerID string, includePrivate bool) ([]models.PlaylistSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.visibility, p.updated_at,
               COALESCE((
                   SELECT v.thumbnail
                   FROM playlist_videos pv
                   JOIN videos v ON v.id = pv.video_id
                   WHERE pv.playlist_id = p.id
                   ORDER BY pv.position, pv.added_at
                   LIMIT 1
               ), '') AS thumbnail
        FROM playlists p
        WHERE p.owner_id = $1 AND (p.visibility OR $2)
        ORDER BY p.updated_at DESC
    `, ownerID, includePrivate)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.PlaylistSummary
	for rows.Next() {
		var summary models.PlaylistSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Description, &summary.Visibility, &summary.UpdatedAt, &summary.Thumbnail); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	return playlists, nil
}

// Detail fetches a playlist joined with its published videos in playlist
// order. Entries whose video has been deleted or unpublished are skipped by
// the join. Visibility enforcement is the caller's concern.
func (r *PostgresPlaylistRepository) Detail(ctx context.Context, playlistID string) (models.PlaylistDetail, error) {
	playlist, err := r.FindByID(ctx, playlistID)
	if err != nil {
		return models.PlaylistDetail{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail, v.views, v.duration, v.created_at,
               u.id, u.username, u.full_name, u.avatar
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id AND v.is_published
        JOIN users u ON u.id = v.owner_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position, pv.added_at
    `, playlistID)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	videos, err := scanVideoListItems(rows, false)
	if err != nil {
		return models.PlaylistDetail{}, err
	}

	detail := models.PlaylistDetail{
		ID:             playlist.ID,
		OwnerID:        playlist.OwnerID,
		Name:           playlist.Name,
		Description:    playlist.Description,
		Visibility:     playlist.Visibility,
		NumberOfVideos: len(videos),
		Videos:         videos,
	}
	if len(videos) > 0 {
		detail.Thumbnail = videos[0].Thumbnail
	}

	return detail, nil
}
