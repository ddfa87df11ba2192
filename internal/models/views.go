package models

import "time"

// The view types below are read models: they are assembled at query time by
// joining the primary collections with the relation collections, so the counts
// they carry are always current. Nothing in here is persisted.

// VideoDetail is the full single-video view.
type VideoDetail struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	VideoURL    string      `json:"videoUrl"`
	Thumbnail   string      `json:"thumbnail"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	Owner       ChannelCard `json:"owner"`
	LikesCount  int64       `json:"likesCount"`
	OwnerID     string      `json:"-"`
}

// ChannelCard is the owner projection embedded in video views: the public
// profile plus the subscription-derived fields for the current viewer.
type ChannelCard struct {
	UserSummary
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoListItem is one entry of a listing or search result.
type VideoListItem struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Thumbnail string      `json:"thumbnail"`
	Views     int64       `json:"views"`
	Duration  float64     `json:"duration"`
	CreatedAt time.Time   `json:"createdAt"`
	Owner     UserSummary `json:"owner"`
	Score     float64     `json:"score,omitempty"`
}

// CommentView is a comment joined with its owner projection and like count.
type CommentView struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	Owner      UserSummary `json:"owner"`
	LikesCount int64       `json:"likesCount"`
}

// TweetView is a tweet joined with its owner projection and like count.
type TweetView struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	Owner      UserSummary `json:"owner"`
	LikesCount int64       `json:"likesCount"`
}

// ChannelProfile is the public channel page for a user, looked up by username.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// PlaylistSummary is one entry of a user's playlist listing. The thumbnail is
// borrowed from the playlist's first video.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Visibility  bool      `json:"visibility"`
	Thumbnail   string    `json:"thumbnail"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistDetail is a playlist joined with its published videos in playlist
// order.
type PlaylistDetail struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"ownerId"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Visibility     bool            `json:"visibility"`
	Thumbnail      string          `json:"thumbnail"`
	NumberOfVideos int             `json:"numberOfVideos"`
	Videos         []VideoListItem `json:"videos"`
}

// HistoryEntry is one watched video in recency order, most recent first.
type HistoryEntry struct {
	VideoID     string      `json:"videoId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Thumbnail   string      `json:"thumbnail"`
	Views       int64       `json:"views"`
	CreatedAt   time.Time   `json:"createdAt"`
	WatchedAt   time.Time   `json:"watchedAt"`
	Owner       UserSummary `json:"owner"`
}

// DashboardVideo is one owned video with its per-video derived counts.
type DashboardVideo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Thumbnail     string    `json:"thumbnail"`
	IsPublished   bool      `json:"isPublished"`
	Views         int64     `json:"views"`
	LikesCount    int64     `json:"likesCount"`
	CommentsCount int64     `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ChannelStats is the dashboard summary: channel-wide totals across all owned
// videos plus the incoming subscriber count.
type ChannelStats struct {
	Videos           []DashboardVideo `json:"videos"`
	TotalViews       int64            `json:"totalViews"`
	TotalLikes       int64            `json:"totalLikes"`
	TotalComments    int64            `json:"totalComments"`
	SubscribersCount int64            `json:"subscribersCount"`
}
