// Package notifier fans formatted notifications out to Telegram chats.
package notifier

import (
	"sync"

	"github.com/user/ghrelay/internal/github"
	"github.com/user/ghrelay/pkg/logger"
)

// Sender delivers one message to one chat.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// WatchLister resolves which chats watch a repository.
type WatchLister interface {
	WatchersOf(repoOwner, repoName string) ([]int64, error)
}

// Notifier consumes notifications from the events channel and delivers them.
// Delivery is best effort: each target is sent independently, a failed send
// is logged and the rest still go out, and nothing is retried.
type Notifier struct {
	sender    Sender
	store     WatchLister
	broadcast []int64
	eventsCh  <-chan *github.Notification
	wg        sync.WaitGroup
}

// New creates a notifier. broadcast is the allow-list used as the delivery
// target set when a repository has no watchers of its own.
func New(sender Sender, store WatchLister, broadcast []int64, eventsCh <-chan *github.Notification) *Notifier {
	return &Notifier{
		sender:    sender,
		store:     store,
		broadcast: broadcast,
		eventsCh:  eventsCh,
	}
}

// Start begins consuming the events channel.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for note := range n.eventsCh {
			n.Dispatch(note)
		}
	}()
}

// Stop waits for in-flight deliveries to finish. The events channel must be
// closed first.
func (n *Notifier) Stop() {
	n.wg.Wait()
}

// Dispatch delivers one notification to every resolved target.
func (n *Notifier) Dispatch(note *github.Notification) {
	targets := n.Targets(note.RepoOwner, note.RepoName)
	if len(targets) == 0 {
		logger.Debug().
			Str("repo", note.RepoOwner+"/"+note.RepoName).
			Msg("No targets for notification")
		return
	}

	for _, chatID := range targets {
		if err := n.sender.SendMessage(chatID, note.Text); err != nil {
			logger.Error().
				Err(err).
				Int64("chat_id", chatID).
				Msg("Failed to send notification")
			// Keep sending to the remaining targets.
		}
	}
}

// Targets resolves delivery targets for a repository: its watchers when any
// exist, otherwise the configured broadcast list.
func (n *Notifier) Targets(repoOwner, repoName string) []int64 {
	if n.store != nil {
		watchers, err := n.store.WatchersOf(repoOwner, repoName)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to look up watchers")
		} else if len(watchers) > 0 {
			return watchers
		}
	}
	return n.broadcast
}
