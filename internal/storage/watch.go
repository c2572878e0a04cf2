package storage

import (
	"errors"
	"time"
)

// ErrWatchNotFound is returned by Unwatch when the chat never watched the repo.
var ErrWatchNotFound = errors.New("watch not found")

// Watch represents one chat's interest in a repository.
type Watch struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	RepoOwner string    `db:"repo_owner"`
	RepoName  string    `db:"repo_name"`
	CreatedAt time.Time `db:"created_at"`
}

// WatchStore handles watch-list database operations.
type WatchStore struct {
	db *Database
}

// NewWatchStore creates a new watch store.
func NewWatchStore(db *Database) *WatchStore {
	return &WatchStore{db: db}
}

// TrackChat records a chat that has interacted with the bot.
func (s *WatchStore) TrackChat(chatID int64, chatType, title string) error {
	query := `
		INSERT INTO chats (chat_id, chat_type, title)
		VALUES (?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			chat_type = excluded.chat_type,
			title = excluded.title
	`
	_, err := s.db.Exec(query, chatID, chatType, title)
	return err
}

// Watch adds a repository to a chat's watch list. Watching an already
// watched repository is a no-op.
func (s *WatchStore) Watch(chatID int64, repoOwner, repoName string) error {
	query := `
		INSERT OR IGNORE INTO watches (chat_id, repo_owner, repo_name)
		VALUES (?, ?, ?)
	`
	_, err := s.db.Exec(query, chatID, repoOwner, repoName)
	return err
}

// Unwatch removes a repository from a chat's watch list.
func (s *WatchStore) Unwatch(chatID int64, repoOwner, repoName string) error {
	query := `DELETE FROM watches WHERE chat_id = ? AND repo_owner = ? AND repo_name = ?`
	result, err := s.db.Exec(query, chatID, repoOwner, repoName)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWatchNotFound
	}
	return nil
}

// WatchesByChat returns all repositories a chat watches.
func (s *WatchStore) WatchesByChat(chatID int64) ([]Watch, error) {
	var watches []Watch
	query := `SELECT * FROM watches WHERE chat_id = ? ORDER BY created_at DESC`
	err := s.db.Select(&watches, query, chatID)
	return watches, err
}

// WatchersOf returns the chat IDs watching a repository.
func (s *WatchStore) WatchersOf(repoOwner, repoName string) ([]int64, error) {
	var chatIDs []int64
	query := `SELECT chat_id FROM watches WHERE repo_owner = ? AND repo_name = ?`
	err := s.db.Select(&chatIDs, query, repoOwner, repoName)
	return chatIDs, err
}

// CountWatchedRepos returns the number of distinct watched repositories.
func (s *WatchStore) CountWatchedRepos() (int, error) {
	var count int
	query := `SELECT COUNT(DISTINCT repo_owner || '/' || repo_name) FROM watches`
	err := s.db.Get(&count, query)
	return count, err
}
