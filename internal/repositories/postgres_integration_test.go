package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndConflicts(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, "alice")

	dup := models.User{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Email:     "other@example.com",
		Password:  "another-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	byName, err := repo.FindByLogin(ctx, user.Username)
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	byEmail, err := repo.FindByLogin(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byName.ID != user.ID || byEmail.ID != user.ID {
		t.Fatalf("expected both lookups to resolve %s, got %s / %s", user.ID, byName.ID, byEmail.ID)
	}

	if _, err := repo.FindByLogin(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresSessionStore_OneSessionPerUser(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	user := createTestUser(t, "alice")
	store := NewPostgresSessionStore(testPool)

	first := auth.Session{RefreshToken: "token-1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	second := auth.Session{RefreshToken: "token-2", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}

	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save first session: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save second session: %v", err)
	}

	if _, err := store.Find(ctx, "token-1"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected the first session to be displaced, got %v", err)
	}
	session, err := store.Find(ctx, "token-2")
	if err != nil {
		t.Fatalf("find second session: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("unexpected session %+v", session)
	}

	if err := store.DeleteForUser(ctx, user.ID); err != nil {
		t.Fatalf("delete for user: %v", err)
	}
	if _, err := store.Find(ctx, "token-2"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected session to be revoked, got %v", err)
	}
}

func TestPostgresLikeRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	user := createTestUser(t, "alice")
	video := createTestVideo(t, user.ID, "clip", true)
	repo := NewPostgresLikeRepository(testPool)

	const racers = 8
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Create(ctx, models.Like{
				ID:        uuid.NewString(),
				LikedBy:   user.ID,
				Kind:      models.LikeKindVideo,
				TargetID:  video.ID,
				CreatedAt: time.Now().UTC(),
			})
		}()
	}
	wg.Wait()
	close(results)

	var created, conflicts int
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || conflicts != racers-1 {
		t.Fatalf("expected exactly one winner, got %d created / %d conflicts", created, conflicts)
	}

	if _, err := repo.Find(ctx, models.LikeKindVideo, user.ID, video.ID); err != nil {
		t.Fatalf("find like: %v", err)
	}
	if err := repo.Delete(ctx, models.LikeKindVideo, user.ID, video.ID); err != nil {
		t.Fatalf("delete like: %v", err)
	}
	if err := repo.Delete(ctx, models.LikeKindVideo, user.ID, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestPostgresSubscriptionRepository_SelfSubscription(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	user := createTestUser(t, "alice")
	repo := NewPostgresSubscriptionRepository(testPool)

	err := repo.Create(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: user.ID,
		ChannelID:    user.ID,
		CreatedAt:    time.Now().UTC(),
	})
	if !errors.Is(err, ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}
}

func TestPostgresHistoryRepository_RecordViewExactlyOnce(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	viewer := createTestUser(t, "viewer")
	video := createTestVideo(t, owner.ID, "clip", true)
	repo := NewPostgresHistoryRepository(testPool)

	for i := 0; i < 5; i++ {
		if err := repo.RecordView(ctx, viewer.ID, video.ID); err != nil {
			t.Fatalf("record view %d: %v", i, err)
		}
	}
	if got := videoViews(t, video.ID); got != 1 {
		t.Fatalf("expected views = 1 after repeat watches, got %d", got)
	}

	// A second viewer counts once more.
	other := createTestUser(t, "other")
	if err := repo.RecordView(ctx, other.ID, video.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}
	if got := videoViews(t, video.ID); got != 2 {
		t.Fatalf("expected views = 2, got %d", got)
	}
}

func TestPostgresHistoryRepository_ConcurrentFirstViews(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	viewer := createTestUser(t, "viewer")
	video := createTestVideo(t, owner.ID, "clip", true)
	repo := NewPostgresHistoryRepository(testPool)

	const racers = 8
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.RecordView(ctx, viewer.ID, video.ID)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("record view: %v", err)
		}
	}
	if got := videoViews(t, video.ID); got != 1 {
		t.Fatalf("expected concurrent first views to count once, got %d", got)
	}
}

func TestPostgresHistoryRepository_MoveToFront(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	viewer := createTestUser(t, "viewer")
	first := createTestVideo(t, owner.ID, "first", true)
	second := createTestVideo(t, owner.ID, "second", true)
	repo := NewPostgresHistoryRepository(testPool)

	if err := repo.RecordView(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := repo.RecordView(ctx, viewer.ID, second.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := repo.RecordView(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}

	entries, err := repo.List(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0].VideoID != first.ID || entries[1].VideoID != second.ID {
		t.Fatalf("expected rewatched video at the front, got %s then %s", entries[0].VideoID, entries[1].VideoID)
	}
}

func TestPostgresVideoRepository_OrphansSurviveDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	viewer := createTestUser(t, "viewer")
	video := createTestVideo(t, owner.ID, "doomed", true)

	videoRepo := NewPostgresVideoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)
	likeRepo := NewPostgresLikeRepository(testPool)
	historyRepo := NewPostgresHistoryRepository(testPool)

	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   video.ID,
		OwnerID:   viewer.ID,
		Content:   "nice clip",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := commentRepo.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := likeRepo.Create(ctx, models.Like{
		ID:       uuid.NewString(),
		LikedBy:  viewer.ID,
		Kind:     models.LikeKindVideo,
		TargetID: video.ID,
	}); err != nil {
		t.Fatalf("create like: %v", err)
	}
	if err := historyRepo.RecordView(ctx, viewer.ID, video.ID); err != nil {
		t.Fatalf("record view: %v", err)
	}

	if err := videoRepo.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	// The dependents stay behind as orphans.
	if _, err := commentRepo.FindByID(ctx, comment.ID); err != nil {
		t.Fatalf("expected comment to survive the delete: %v", err)
	}
	if _, err := likeRepo.Find(ctx, models.LikeKindVideo, viewer.ID, video.ID); err != nil {
		t.Fatalf("expected like to survive the delete: %v", err)
	}

	// Read models skip the dangling references instead of failing.
	entries, err := historyRepo.List(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected deleted video to drop out of history, got %d entries", len(entries))
	}
	liked, err := likeRepo.LikedVideos(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list liked videos: %v", err)
	}
	if len(liked) != 0 {
		t.Fatalf("expected deleted video to drop out of liked videos, got %d", len(liked))
	}
}

func TestPostgresVideoRepository_ListPublishedPagination(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	for i := 0; i < 15; i++ {
		video := createTestVideo(t, owner.ID, fmt.Sprintf("clip %02d", i), true)
		// Spread creation times so the recency order is stable.
		if _, err := testPool.Exec(ctx,
			`UPDATE videos SET created_at = $2 WHERE id = $1`,
			video.ID, time.Now().UTC().Add(-time.Duration(i)*time.Minute),
		); err != nil {
			t.Fatalf("adjust created_at: %v", err)
		}
	}
	createTestVideo(t, owner.ID, "draft", false)

	repo := NewPostgresVideoRepository(testPool)

	pageOne, err := repo.ListPublished(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list page one: %v", err)
	}
	pageTwo, err := repo.ListPublished(ctx, 10, 10)
	if err != nil {
		t.Fatalf("list page two: %v", err)
	}

	if len(pageOne) != 10 || len(pageTwo) != 5 {
		t.Fatalf("expected 10 + 5 published videos, got %d + %d", len(pageOne), len(pageTwo))
	}

	seen := make(map[string]bool)
	for _, item := range append(pageOne, pageTwo...) {
		if seen[item.ID] {
			t.Fatalf("video %s appeared on both pages", item.ID)
		}
		seen[item.ID] = true
		if item.Title == "draft" {
			t.Fatal("unpublished video leaked into the public listing")
		}
	}
}

func TestPostgresVideoRepository_DetailCounts(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	fan := createTestUser(t, "fan")
	video := createTestVideo(t, owner.ID, "popular", true)

	likeRepo := NewPostgresLikeRepository(testPool)
	subRepo := NewPostgresSubscriptionRepository(testPool)
	if err := likeRepo.Create(ctx, models.Like{
		ID:       uuid.NewString(),
		LikedBy:  fan.ID,
		Kind:     models.LikeKindVideo,
		TargetID: video.ID,
	}); err != nil {
		t.Fatalf("create like: %v", err)
	}
	if err := subRepo.Create(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: fan.ID,
		ChannelID:    owner.ID,
	}); err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	repo := NewPostgresVideoRepository(testPool)
	detail, err := repo.Detail(ctx, video.ID, fan.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}

	if detail.LikesCount != 1 {
		t.Fatalf("expected 1 like, got %d", detail.LikesCount)
	}
	if detail.Owner.SubscribersCount != 1 || !detail.Owner.IsSubscribed {
		t.Fatalf("unexpected owner card: %+v", detail.Owner)
	}

	// An anonymous viewer gets the same counts without the subscription flag.
	detail, err = repo.Detail(ctx, video.ID, "")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Owner.IsSubscribed {
		t.Fatal("expected isSubscribed to be false for anonymous viewers")
	}
}

func TestPostgresPlaylistRepository_FrontInsertion(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	first := createTestVideo(t, owner.ID, "first", true)
	second := createTestVideo(t, owner.ID, "second", true)
	third := createTestVideo(t, owner.ID, "third", true)

	repo := NewPostgresPlaylistRepository(testPool)
	playlist := models.Playlist{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Name:      "favorites",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	for _, video := range []models.Video{first, second, third} {
		if err := repo.AddVideo(ctx, playlist.ID, video.ID); err != nil {
			t.Fatalf("add video %s: %v", video.ID, err)
		}
	}

	if err := repo.AddVideo(ctx, playlist.ID, third.ID); !errors.Is(err, ErrAlreadyInPlaylist) {
		t.Fatalf("expected ErrAlreadyInPlaylist, got %v", err)
	}

	detail, err := repo.Detail(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Videos) != 3 {
		t.Fatalf("expected 3 videos, got %d", len(detail.Videos))
	}
	want := []string{third.ID, second.ID, first.ID}
	for i, video := range detail.Videos {
		if video.ID != want[i] {
			t.Fatalf("position %d: expected %s got %s", i, want[i], video.ID)
		}
	}

	if err := repo.RemoveVideo(ctx, playlist.ID, second.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if err := repo.RemoveVideo(ctx, playlist.ID, second.ID); !errors.Is(err, ErrNotInPlaylist) {
		t.Fatalf("expected ErrNotInPlaylist, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func TestPostgresVideoRepository_OwnerVideoCounts(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	fan1 := createTestUser(t, "fan1")
	fan2 := createTestUser(t, "fan2")
	fan3 := createTestUser(t, "fan3")
	published := createTestVideo(t, owner.ID, "published", true)
	draft := createTestVideo(t, owner.ID, "draft", false)
	foreign := createTestVideo(t, fan1.ID, "someone else", true)

	likeRepo := NewPostgresLikeRepository(testPool)
	for _, like := range []models.Like{
		{LikedBy: fan1.ID, TargetID: published.ID},
		{LikedBy: fan2.ID, TargetID: published.ID},
		{LikedBy: fan3.ID, TargetID: draft.ID},
		// Likes on another channel's video must not leak into the dashboard.
		{LikedBy: fan2.ID, TargetID: foreign.ID},
	} {
		like.ID = uuid.NewString()
		like.Kind = models.LikeKindVideo
		if err := likeRepo.Create(ctx, like); err != nil {
			t.Fatalf("create like: %v", err)
		}
	}

	commentRepo := NewPostgresCommentRepository(testPool)
	for i, videoID := range []string{published.ID, draft.ID, foreign.ID} {
		err := commentRepo.Create(ctx, models.Comment{
			ID:        uuid.NewString(),
			VideoID:   videoID,
			OwnerID:   fan1.ID,
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}

	videos, err := NewPostgresVideoRepository(testPool).OwnerVideoCounts(ctx, owner.ID)
	if err != nil {
		t.Fatalf("owner video counts: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}

	byID := make(map[string]models.DashboardVideo, len(videos))
	var totalLikes, totalComments int64
	for _, video := range videos {
		byID[video.ID] = video
		totalLikes += video.LikesCount
		totalComments += video.CommentsCount
	}
	if got := byID[published.ID]; got.LikesCount != 2 || got.CommentsCount != 1 {
		t.Fatalf("unexpected counts for published video: %+v", got)
	}
	if got := byID[draft.ID]; got.LikesCount != 1 || got.CommentsCount != 1 {
		t.Fatalf("unexpected counts for draft video: %+v", got)
	}
	if totalLikes != 3 {
		t.Fatalf("expected 3 likes across the channel, got %d", totalLikes)
	}
	if totalComments != 2 {
		t.Fatalf("expected 2 comments across the channel, got %d", totalComments)
	}
}

func TestPostgresUserRepository_ChannelProfile(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := createTestUser(t, "owner")
	fan := createTestUser(t, "fan")
	other := createTestUser(t, "other")

	subRepo := NewPostgresSubscriptionRepository(testPool)
	for _, sub := range []models.Subscription{
		{SubscriberID: fan.ID, ChannelID: owner.ID},
		{SubscriberID: owner.ID, ChannelID: other.ID},
	} {
		sub.ID = uuid.NewString()
		if err := subRepo.Create(ctx, sub); err != nil {
			t.Fatalf("create subscription: %v", err)
		}
	}

	repo := NewPostgresUserRepository(testPool)
	profile, err := repo.ChannelProfile(ctx, owner.Username, fan.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.ID != owner.ID {
		t.Fatalf("expected channel %s, got %s", owner.ID, profile.ID)
	}
	if profile.SubscribersCount != 1 {
		t.Fatalf("expected 1 subscriber, got %d", profile.SubscribersCount)
	}
	if profile.ChannelsSubscribedToCount != 1 {
		t.Fatalf("expected 1 subscribed channel, got %d", profile.ChannelsSubscribedToCount)
	}
	if !profile.IsSubscribed {
		t.Fatal("expected the fan's view to be marked subscribed")
	}

	profile, err = repo.ChannelProfile(ctx, owner.Username, "")
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.IsSubscribed {
		t.Fatal("expected isSubscribed to be false for anonymous viewers")
	}

	if _, err := repo.ChannelProfile(ctx, "ghost", fan.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown handle, got %v", err)
	}
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `TRUNCATE TABLE watch_history, playlist_videos, playlists,
                subscriptions, likes, tweets, comments, videos, sessions, users CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password-hash",
		FullName:  username,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := NewPostgresUserRepository(testPool).Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, ownerID, title string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		VideoURL:    "https://cdn.example.com/videos/" + uuid.NewString() + ".mp4",
		Thumbnail:   "https://cdn.example.com/thumbnails/" + uuid.NewString() + ".png",
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := NewPostgresVideoRepository(testPool).Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}

func videoViews(t *testing.T, videoID string) int64 {
	t.Helper()
	var views int64
	if err := testPool.QueryRow(context.Background(),
		`SELECT views FROM videos WHERE id = $1`, videoID,
	).Scan(&views); err != nil {
		t.Fatalf("read views: %v", err)
	}
	return views
}
