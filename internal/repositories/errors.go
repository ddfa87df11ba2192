package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrSelfSubscription indicates a user attempted to subscribe to their own channel.
	ErrSelfSubscription = errors.New("cannot subscribe to self")
	// ErrAlreadyInPlaylist indicates the video is already part of the playlist.
	ErrAlreadyInPlaylist = errors.New("video already added to playlist")
	// ErrNotInPlaylist indicates the video is not part of the playlist.
	ErrNotInPlaylist = errors.New("video not found in playlist")
)
