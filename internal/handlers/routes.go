package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Playlists     PlaylistStore
	History       HistoryStore
	Dashboard     DashboardStore
	Likes         LikeReader
	Subscriptions SubscriptionReader
	VideoLikes    Toggler
	CommentLikes  Toggler
	TweetLikes    Toggler
	Subscribe     Toggler
	Assets        AssetStorage
	AuthLimiter   RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	authH := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	users := UserHandler{Users: deps.Users, Assets: deps.Assets}
	videos := VideoHandler{Videos: deps.Videos, History: deps.History, Assets: deps.Assets}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets}
	likes := LikeHandler{
		VideoLikes:   deps.VideoLikes,
		CommentLikes: deps.CommentLikes,
		TweetLikes:   deps.TweetLikes,
		Likes:        deps.Likes,
	}
	subscriptions := SubscriptionHandler{Toggle: deps.Subscribe, Subscriptions: deps.Subscriptions}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}
	history := HistoryHandler{History: deps.History}
	dashboard := DashboardHandler{Dashboard: deps.Dashboard, Subscriptions: deps.Subscriptions}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/signup", authH.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authH.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authH.Logout)

	mux.HandleFunc("GET /api/v1/users/me", users.Me)
	mux.HandleFunc("PATCH /api/v1/users/me", users.UpdateAccount)
	mux.HandleFunc("PATCH /api/v1/users/me/images", users.UpdateImages)
	mux.HandleFunc("POST /api/v1/users/me/password", users.ChangePassword)
	mux.HandleFunc("GET /api/v1/channels/{username}", users.Channel)

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("POST /api/v1/videos", videos.Publish)
	mux.HandleFunc("GET /api/v1/videos/{videoID}", videos.Detail)
	mux.HandleFunc("PATCH /api/v1/videos/{videoID}", videos.Update)
	mux.HandleFunc("DELETE /api/v1/videos/{videoID}", videos.Delete)
	mux.HandleFunc("PATCH /api/v1/videos/{videoID}/publish", videos.TogglePublish)

	mux.HandleFunc("GET /api/v1/videos/{videoID}/comments", comments.ListForVideo)
	mux.HandleFunc("POST /api/v1/videos/{videoID}/comments", comments.Create)
	mux.HandleFunc("PATCH /api/v1/comments/{commentID}", comments.Update)
	mux.HandleFunc("DELETE /api/v1/comments/{commentID}", comments.Delete)

	mux.HandleFunc("POST /api/v1/tweets", tweets.Create)
	mux.HandleFunc("GET /api/v1/users/{userID}/tweets", tweets.ListForUser)
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetID}", tweets.Update)
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetID}", tweets.Delete)

	mux.HandleFunc("POST /api/v1/videos/{videoID}/like", likes.ToggleVideo)
	mux.HandleFunc("POST /api/v1/comments/{commentID}/like", likes.ToggleComment)
	mux.HandleFunc("POST /api/v1/tweets/{tweetID}/like", likes.ToggleTweet)
	mux.HandleFunc("GET /api/v1/likes/videos", likes.LikedVideos)

	mux.HandleFunc("POST /api/v1/channels/{channelID}/subscribe", subscriptions.ToggleSubscription)
	mux.HandleFunc("GET /api/v1/channels/{channelID}/subscribers", subscriptions.Subscribers)
	mux.HandleFunc("GET /api/v1/subscriptions", subscriptions.SubscribedChannels)

	mux.HandleFunc("POST /api/v1/playlists", playlists.Create)
	mux.HandleFunc("GET /api/v1/playlists/{playlistID}", playlists.Detail)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistID}", playlists.Update)
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistID}", playlists.Delete)
	mux.HandleFunc("POST /api/v1/playlists/{playlistID}/videos/{videoID}", playlists.AddVideo)
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistID}/videos/{videoID}", playlists.RemoveVideo)
	mux.HandleFunc("GET /api/v1/users/{userID}/playlists", playlists.ListForUser)

	mux.HandleFunc("GET /api/v1/history", history.List)
	mux.HandleFunc("GET /api/v1/dashboard", dashboard.Stats)
}
