package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *WatchStore {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWatchStore(db)
}

func TestWatchAndUnwatch(t *testing.T) {
	store := testStore(t)

	if err := store.Watch(1, "golang", "go"); err != nil {
		t.Fatalf("watch: %v", err)
	}
	// Watching again is a no-op, not an error.
	if err := store.Watch(1, "golang", "go"); err != nil {
		t.Fatalf("repeat watch: %v", err)
	}

	watches, err := store.WatchesByChat(1)
	if err != nil {
		t.Fatalf("watches by chat: %v", err)
	}
	if len(watches) != 1 {
		t.Fatalf("got %d watches, want 1", len(watches))
	}
	if watches[0].RepoOwner != "golang" || watches[0].RepoName != "go" {
		t.Fatalf("watch = %s/%s, want golang/go", watches[0].RepoOwner, watches[0].RepoName)
	}

	if err := store.Unwatch(1, "golang", "go"); err != nil {
		t.Fatalf("unwatch: %v", err)
	}
	if err := store.Unwatch(1, "golang", "go"); !errors.Is(err, ErrWatchNotFound) {
		t.Fatalf("second unwatch err = %v, want ErrWatchNotFound", err)
	}
}

func TestWatchersOf(t *testing.T) {
	store := testStore(t)

	for _, chatID := range []int64{1, 2, 3} {
		if err := store.Watch(chatID, "golang", "go"); err != nil {
			t.Fatalf("watch: %v", err)
		}
	}
	if err := store.Watch(2, "torvalds", "linux"); err != nil {
		t.Fatalf("watch: %v", err)
	}

	watchers, err := store.WatchersOf("golang", "go")
	if err != nil {
		t.Fatalf("watchers of: %v", err)
	}
	if len(watchers) != 3 {
		t.Fatalf("got %d watchers, want 3", len(watchers))
	}

	watchers, err = store.WatchersOf("unknown", "repo")
	if err != nil {
		t.Fatalf("watchers of unwatched repo: %v", err)
	}
	if len(watchers) != 0 {
		t.Fatalf("got %d watchers for unwatched repo, want 0", len(watchers))
	}
}

func TestCountWatchedRepos(t *testing.T) {
	store := testStore(t)

	store.Watch(1, "golang", "go")
	store.Watch(2, "golang", "go")
	store.Watch(1, "torvalds", "linux")

	count, err := store.CountWatchedRepos()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 distinct repos", count)
	}
}

func TestTrackChat(t *testing.T) {
	store := testStore(t)

	if err := store.TrackChat(7, "private", "Alice"); err != nil {
		t.Fatalf("track chat: %v", err)
	}
	// Tracking again updates in place.
	if err := store.TrackChat(7, "private", "Alice B"); err != nil {
		t.Fatalf("repeat track chat: %v", err)
	}

	var count int
	if err := store.db.Get(&count, `SELECT COUNT(*) FROM chats WHERE chat_id = 7`); err != nil {
		t.Fatalf("query chats: %v", err)
	}
	if count != 1 {
		t.Fatalf("chat rows = %d, want 1", count)
	}
}
