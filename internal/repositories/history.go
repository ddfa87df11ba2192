package repositories

import (
	"context"
	"fmt"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
)

// PostgresHistoryRepository maintains the per-user watch-history ledger: an
// unbounded, duplicate-free sequence of watched videos ordered most recent
// first, with exactly-once view counting per (user, video) pair.
type PostgresHistoryRepository struct {
	pool db.Pool
}

// NewPostgresHistoryRepository constructs a history repository backed by PostgreSQL.
func NewPostgresHistoryRepository(pool db.Pool) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{pool: pool}
}

// RecordView marks a video as watched by the user. A first watch increments
// the video's view counter and inserts the ledger entry; any later watch only
// refreshes the entry's recency timestamp, moving it back to the front.
//
// The present/absent decision is a single conditional insert: the primary key
// on (user_id, video_id) guarantees that of two concurrent first watches
// exactly one insert lands, so the counter moves by one. Both calls leave the
// video at the front of the sequence.
func (r *PostgresHistoryRepository) RecordView(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin record view: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id, video_id) DO NOTHING
    `, userID, videoID)
	if err != nil {
		return fmt.Errorf("insert watch entry: %w", err)
	}

	if tag.RowsAffected() == 1 {
		if _, err := tx.Exec(ctx, `
            UPDATE videos
            SET views = views + 1
            WHERE id = $1
        `, videoID); err != nil {
			return fmt.Errorf("increment views: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx, `
            UPDATE watch_history
            SET watched_at = NOW()
            WHERE user_id = $1 AND video_id = $2
        `, userID, videoID); err != nil {
			return fmt.Errorf("refresh watch entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit record view: %w", err)
	}

	return nil
}

// List returns the user's watch history, most recently watched first, joined
// with the video and owner projections. Entries whose video has since been
// deleted are skipped by the join but their ledger rows remain.
func (r *PostgresHistoryRepository) List(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT h.video_id, h.watched_at,
               v.title, v.description, v.thumbnail, v.views, v.created_at,
               u.id, u.username, u.full_name, u.avatar
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1
        ORDER BY h.watched_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(
			&entry.VideoID, &entry.WatchedAt,
			&entry.Title, &entry.Description, &entry.Thumbnail, &entry.Views, &entry.CreatedAt,
			&entry.Owner.ID, &entry.Owner.Username, &entry.Owner.FullName, &entry.Owner.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan watch entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return entries, nil
}
