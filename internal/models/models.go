package models

import "time"

// User represents an account within the ClipTube platform. Accounts are never
// deleted by the backend.
type User struct {
	ID         string
	Username   string
	Email      string
	Password   string
	FullName   string
	Avatar     string
	CoverImage string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PublicProfile is the projection of a user that may be attached to other
// entities. It never carries credentials.
func (u User) PublicProfile() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// UserSummary is the minimal public projection of a user.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Video is an uploaded video owned by a single user. Unpublished videos are
// visible only to their owner. The views counter only ever increases.
type Video struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	VideoURL    string
	Thumbnail   string
	Duration    float64
	IsPublished bool
	Views       int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a user comment on a video.
type Comment struct {
	ID        string
	VideoID   string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short text post owned by a single user.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeKind tags the entity a like points at.
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// Like records that a user liked one target entity. At most one like exists per
// (liked_by, kind, target) tuple; the storage layer enforces this.
type Like struct {
	ID        string
	LikedBy   string
	Kind      LikeKind
	TargetID  string
	CreatedAt time.Time
}

// Subscription records that a subscriber follows a channel (another user).
// Self-subscriptions are rejected before they reach the store.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Playlist is an owned, ordered collection of videos. Private unless Visibility
// is true.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Visibility  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
