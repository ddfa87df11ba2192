package handlers

import (
	"context"
	"io"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/relations"
)

// UserStore captures the persistence operations required by the auth and user
// handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdateImages(ctx context.Context, userID, avatar, coverImage string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
}

// SessionManager issues, refreshes and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string)
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	Detail(ctx context.Context, videoID, viewerID string) (models.VideoDetail, error)
	ListPublished(ctx context.Context, offset, limit int) ([]models.VideoListItem, error)
	Search(ctx context.Context, query string, offset, limit int) ([]models.VideoListItem, error)
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ForVideo(ctx context.Context, videoID string, offset, limit int) ([]models.CommentView, error)
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ForUser(ctx context.Context, userID string) ([]models.TweetView, error)
}

// Toggler flips one relation kind on or off for a subject/target pair.
type Toggler interface {
	Toggle(ctx context.Context, subjectID, targetID string) (relations.Result, error)
}

// LikeReader lists the videos a user has liked.
type LikeReader interface {
	LikedVideos(ctx context.Context, userID string) ([]models.VideoListItem, error)
}

// SubscriptionReader lists subscription edges from either end.
type SubscriptionReader interface {
	Subscribers(ctx context.Context, channelID string, offset, limit int) ([]models.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error)
	CountForChannel(ctx context.Context, channelID string) (int64, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ForOwner(ctx context.Context, ownerID string, includePrivate bool) ([]models.PlaylistSummary, error)
	Detail(ctx context.Context, playlistID string) (models.PlaylistDetail, error)
}

// HistoryStore records and lists watched videos.
type HistoryStore interface {
	RecordView(ctx context.Context, userID, videoID string) error
	List(ctx context.Context, userID string) ([]models.HistoryEntry, error)
}

// DashboardStore exposes the per-video counts behind the owner dashboard.
type DashboardStore interface {
	OwnerVideoCounts(ctx context.Context, ownerID string) ([]models.DashboardVideo, error)
}

// AssetStorage persists uploaded media and removes replaced or deleted assets.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, locations []string) error
}
