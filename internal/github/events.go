package github

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/ghrelay/internal/config"
	"github.com/user/ghrelay/pkg/logger"
)

// maxCommitsShown bounds how many commits a push notification lists.
const maxCommitsShown = 3

// Notification is a formatted message ready for delivery, tagged with the
// repository that produced it so the dispatcher can resolve targets.
type Notification struct {
	RepoOwner string
	RepoName  string
	Text      string
}

// repository is the envelope field common to all event payloads.
type repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (r repository) displayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return "Unknown"
}

// ClassifyEvent maps a raw webhook event to a notification message, or nil
// when the event should be suppressed. Each supported type is gated by its
// notify flag; ping is always processed. Malformed payloads yield nil, never
// an error.
func ClassifyEvent(eventType string, body []byte, flags config.NotifyConfig) *Notification {
	switch eventType {
	case "push":
		if !flags.Push {
			return nil
		}
		return formatPushEvent(body)
	case "issues":
		if !flags.Issues {
			return nil
		}
		return formatIssuesEvent(body)
	case "pull_request":
		if !flags.PullRequests {
			return nil
		}
		return formatPullRequestEvent(body)
	case "release":
		if !flags.Releases {
			return nil
		}
		return formatReleaseEvent(body)
	case "ping":
		return formatPingEvent(body)
	default:
		logger.Debug().Str("event_type", eventType).Msg("Ignoring unsupported event type")
		return nil
	}
}

func formatPushEvent(body []byte) *Notification {
	var payload struct {
		Ref        string     `json:"ref"`
		Repository repository `json:"repository"`
		Pusher     struct {
			Name string `json:"name"`
		} `json:"pusher"`
		Commits []struct {
			ID      string `json:"id"`
			Message string `json:"message"`
			URL     string `json:"url"`
			Author  struct {
				Name string `json:"name"`
			} `json:"author"`
		} `json:"commits"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to parse push event")
		return nil
	}

	if len(payload.Commits) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 *Push to %s*\n\n", EscapeMarkdown(payload.Repository.displayName()))
	fmt.Fprintf(&b, "🌿 *Branch:* %s\n", EscapeMarkdown(extractBranchName(payload.Ref)))
	fmt.Fprintf(&b, "👤 *Pusher:* %s\n", EscapeMarkdown(payload.Pusher.Name))
	fmt.Fprintf(&b, "📝 *Commits:* %d\n\n", len(payload.Commits))

	shown := len(payload.Commits)
	if shown > maxCommitsShown {
		shown = maxCommitsShown
	}
	for _, commit := range payload.Commits[:shown] {
		fmt.Fprintf(&b, "🔸 *%s*\n", EscapeMarkdown(Truncate(commit.Message, 100)))
		fmt.Fprintf(&b, "👤 %s • [`%s`](%s)\n\n", EscapeMarkdown(commit.Author.Name), shortSHA(commit.ID), commit.URL)
	}
	if len(payload.Commits) > maxCommitsShown {
		fmt.Fprintf(&b, "... and %d more commits\n\n", len(payload.Commits)-maxCommitsShown)
	}

	if payload.Repository.HTMLURL != "" {
		fmt.Fprintf(&b, "🔗 [View Repository](%s)", payload.Repository.HTMLURL)
	}

	return &Notification{
		RepoOwner: payload.Repository.Owner.Login,
		RepoName:  payload.Repository.Name,
		Text:      b.String(),
	}
}

func formatIssuesEvent(body []byte) *Notification {
	var payload struct {
		Action     string     `json:"action"`
		Repository repository `json:"repository"`
		Issue      struct {
			Number  int    `json:"number"`
			Title   string `json:"title"`
			HTMLURL string `json:"html_url"`
			User    struct {
				Login string `json:"login"`
			} `json:"user"`
		} `json:"issue"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to parse issues event")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *Issue %s in %s*\n\n",
		actionEmoji(payload.Action), payload.Action, EscapeMarkdown(payload.Repository.displayName()))
	fmt.Fprintf(&b, "🐛 *#%d: %s*\n", payload.Issue.Number, EscapeMarkdown(payload.Issue.Title))
	fmt.Fprintf(&b, "👤 *By:* %s\n", EscapeMarkdown(payload.Issue.User.Login))
	if payload.Issue.HTMLURL != "" {
		fmt.Fprintf(&b, "🔗 [View Issue](%s)", payload.Issue.HTMLURL)
	}

	return &Notification{
		RepoOwner: payload.Repository.Owner.Login,
		RepoName:  payload.Repository.Name,
		Text:      b.String(),
	}
}

func formatPullRequestEvent(body []byte) *Notification {
	var payload struct {
		Action      string     `json:"action"`
		Repository  repository `json:"repository"`
		PullRequest struct {
			Number  int    `json:"number"`
			Title   string `json:"title"`
			HTMLURL string `json:"html_url"`
			Merged  bool   `json:"merged"`
			User    struct {
				Login string `json:"login"`
			} `json:"user"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to parse pull request event")
		return nil
	}

	// GitHub reports a merge as "closed" with the merged flag set.
	action := payload.Action
	if action == "closed" && payload.PullRequest.Merged {
		action = "merged"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *Pull Request %s in %s*\n\n",
		actionEmoji(action), action, EscapeMarkdown(payload.Repository.displayName()))
	fmt.Fprintf(&b, "🔀 *#%d: %s*\n", payload.PullRequest.Number, EscapeMarkdown(payload.PullRequest.Title))
	fmt.Fprintf(&b, "👤 *By:* %s\n", EscapeMarkdown(payload.PullRequest.User.Login))
	if payload.PullRequest.HTMLURL != "" {
		fmt.Fprintf(&b, "🔗 [View Pull Request](%s)", payload.PullRequest.HTMLURL)
	}

	return &Notification{
		RepoOwner: payload.Repository.Owner.Login,
		RepoName:  payload.Repository.Name,
		Text:      b.String(),
	}
}

func formatReleaseEvent(body []byte) *Notification {
	var payload struct {
		Action     string     `json:"action"`
		Repository repository `json:"repository"`
		Release    struct {
			Name    string `json:"name"`
			TagName string `json:"tag_name"`
			HTMLURL string `json:"html_url"`
			Author  struct {
				Login string `json:"login"`
			} `json:"author"`
		} `json:"release"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to parse release event")
		return nil
	}

	if payload.Action != "published" {
		return nil
	}

	name := payload.Release.Name
	if name == "" {
		name = payload.Release.TagName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 *New Release in %s*\n\n", EscapeMarkdown(payload.Repository.displayName()))
	fmt.Fprintf(&b, "🏷️ *%s* (%s)\n", EscapeMarkdown(name), EscapeMarkdown(payload.Release.TagName))
	fmt.Fprintf(&b, "👤 *By:* %s\n", EscapeMarkdown(payload.Release.Author.Login))
	if payload.Release.HTMLURL != "" {
		fmt.Fprintf(&b, "🔗 [View Release](%s)", payload.Release.HTMLURL)
	}

	return &Notification{
		RepoOwner: payload.Repository.Owner.Login,
		RepoName:  payload.Repository.Name,
		Text:      b.String(),
	}
}

func formatPingEvent(body []byte) *Notification {
	var payload struct {
		Repository repository `json:"repository"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to parse ping event")
		return nil
	}

	text := fmt.Sprintf("🏓 *Webhook configured for %s*\n\nWebhook is working correctly!",
		EscapeMarkdown(payload.Repository.displayName()))

	return &Notification{
		RepoOwner: payload.Repository.Owner.Login,
		RepoName:  payload.Repository.Name,
		Text:      text,
	}
}

// actionEmoji picks the icon for an issue or pull request action.
func actionEmoji(action string) string {
	switch action {
	case "opened":
		return "🆕"
	case "closed":
		return "✅"
	case "merged":
		return "🎉"
	case "reopened":
		return "🔄"
	case "edited":
		return "✏️"
	default:
		return "📋"
	}
}

// extractBranchName turns refs/heads/main into main. Nested branch names
// render as their final path segment, so refs/heads/feature/nested becomes
// nested. Any other ref is returned verbatim.
func extractBranchName(ref string) string {
	if strings.HasPrefix(ref, "refs/heads/") {
		return ref[strings.LastIndexByte(ref, '/')+1:]
	}
	return ref
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
