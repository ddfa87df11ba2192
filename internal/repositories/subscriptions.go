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

// PostgresSubscriptionRepository persists subscription relations. The unique
// index on (subscriber_id, channel_id) arbitrates the toggle invariant and the
// table's check constraint rejects self-subscription even if a caller slips
// past the application-level guard.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Find looks up a subscription by its identifying pair.
func (r *PostgresSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, subscriber_id, channel_id, created_at
        FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)

	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, fmt.Errorf("select subscription: %w", err)
	}

	return sub, nil
}

// Create inserts a subscription record.
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub models.Subscription) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			case "23514":
				return ErrSelfSubscription
			}
		}
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// Delete removes a subscription by its identifying pair.
func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Subscribers lists the public profiles of a channel's subscribers with offset
// pagination.
func (r *PostgresSubscriptionRepository) Subscribers(ctx context.Context, channelID string, offset, limit int) ([]models.UserSummary, error) {
	return r.listProfiles(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
        OFFSET $2 LIMIT $3
    `, channelID, offset, limit)
}

// SubscribedChannels lists the public profiles of the channels a user
// subscribes to.
func (r *PostgresSubscriptionRepository) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error) {
	return r.listProfiles(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) listProfiles(ctx context.Context, query string, args ...any) ([]models.UserSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscription profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.UserSummary
	for rows.Next() {
		var profile models.UserSummary
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.Avatar); err != nil {
			return nil, fmt.Errorf("scan subscription profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription profiles: %w", err)
	}

	return profiles, nil
}

// CountForChannel returns the number of subscribers a channel has.
func (r *PostgresSubscriptionRepository) CountForChannel(ctx context.Context, channelID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}

	return count, nil
}
