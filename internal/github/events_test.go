package github

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/user/ghrelay/internal/config"
)

func TestEscapeMarkdown(t *testing.T) {
	special := "_*[]()~`>#+-=|{}.!"
	escaped := EscapeMarkdown(special)
	for _, c := range special {
		want := "\\" + string(c)
		if !strings.Contains(escaped, want) {
			t.Fatalf("expected %q to contain %q", escaped, want)
		}
	}
	if len(escaped) != 2*len(special) {
		t.Fatalf("escaped length = %d, want %d (exactly one backslash per character)", len(escaped), 2*len(special))
	}

	plain := "hello world 123"
	if got := EscapeMarkdown(plain); got != plain {
		t.Fatalf("EscapeMarkdown(%q) = %q, want unchanged", plain, got)
	}

	if got := EscapeMarkdown("a_b and c.d"); got != "a\\_b and c\\.d" {
		t.Fatalf("mixed input escaped to %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{s: "short", maxLen: 10, want: "short"},
		{s: "a longer message", maxLen: 9, want: "a long..."},
		// the cut point lands inside the two-byte ö and must back up to
		// the previous rune boundary
		{s: "héllo wörld, ünïcödé tèxt", maxLen: 12, want: "héllo w..."},
	}
	for _, tt := range tests {
		got := Truncate(tt.s, tt.maxLen)
		if got != tt.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("Truncate(%q, %d) = %q, not valid UTF-8", tt.s, tt.maxLen, got)
		}
	}
}

func TestExtractBranchName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{ref: "refs/heads/main", want: "main"},
		{ref: "refs/heads/feature/nested", want: "nested"},
		{ref: "refs/tags/v1.0.0", want: "refs/tags/v1.0.0"},
		{ref: "main", want: "main"},
	}
	for _, tt := range tests {
		if got := extractBranchName(tt.ref); got != tt.want {
			t.Fatalf("extractBranchName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func pushBody(commitCount int) []byte {
	commits := make([]string, commitCount)
	for i := range commits {
		commits[i] = fmt.Sprintf(
			`{"id": "%040d", "message": "commit %d", "url": "https://c/%d", "author": {"name": "alice"}}`,
			i, i, i)
	}
	return []byte(fmt.Sprintf(`{
		"ref": "refs/heads/main",
		"pusher": {"name": "alice"},
		"commits": [%s],
		"repository": {"name": "repo", "full_name": "owner/repo", "html_url": "https://github.com/owner/repo", "owner": {"login": "owner"}}
	}`, strings.Join(commits, ",")))
}

func TestClassifyPushEvent(t *testing.T) {
	note := ClassifyEvent("push", pushBody(2), allNotifyFlags())
	if note == nil {
		t.Fatal("expected a notification")
	}
	if note.RepoOwner != "owner" || note.RepoName != "repo" {
		t.Fatalf("repo = %s/%s, want owner/repo", note.RepoOwner, note.RepoName)
	}
	for _, want := range []string{"owner/repo", "main", "alice", "commit 0", "commit 1"} {
		if !strings.Contains(note.Text, want) {
			t.Fatalf("text %q missing %q", note.Text, want)
		}
	}
	if strings.Contains(note.Text, "more commits") {
		t.Fatal("two commits should not produce a trailer")
	}
}

func TestClassifyPushEventEmptyCommits(t *testing.T) {
	if note := ClassifyEvent("push", pushBody(0), allNotifyFlags()); note != nil {
		t.Fatalf("push with no commits should be suppressed, got %q", note.Text)
	}
}

func TestClassifyPushEventCommitTrailer(t *testing.T) {
	note := ClassifyEvent("push", pushBody(5), allNotifyFlags())
	if note == nil {
		t.Fatal("expected a notification")
	}
	for i := 0; i < 3; i++ {
		if !strings.Contains(note.Text, fmt.Sprintf("commit %d", i)) {
			t.Fatalf("text missing commit %d", i)
		}
	}
	for i := 3; i < 5; i++ {
		if strings.Contains(note.Text, fmt.Sprintf("commit %d", i)) {
			t.Fatalf("text should not list commit %d", i)
		}
	}
	if !strings.Contains(note.Text, "2 more commits") {
		t.Fatalf("text %q missing trailer", note.Text)
	}
}

func TestClassifyPushEventFlagDisabled(t *testing.T) {
	flags := allNotifyFlags()
	flags.Push = false
	if note := ClassifyEvent("push", pushBody(2), flags); note != nil {
		t.Fatal("disabled push flag should suppress the event")
	}
}

func TestClassifyIssuesEvent(t *testing.T) {
	body := []byte(`{
		"action": "opened",
		"issue": {"number": 7, "title": "crash_on_start", "html_url": "https://i/7", "user": {"login": "bob"}},
		"repository": {"name": "repo", "full_name": "owner/repo", "owner": {"login": "owner"}}
	}`)

	note := ClassifyEvent("issues", body, allNotifyFlags())
	if note == nil {
		t.Fatal("expected a notification")
	}
	for _, want := range []string{"opened", "#7", "crash\\_on\\_start", "bob", "https://i/7"} {
		if !strings.Contains(note.Text, want) {
			t.Fatalf("text %q missing %q", note.Text, want)
		}
	}
}

func TestClassifyPullRequestMerged(t *testing.T) {
	body := []byte(`{
		"action": "closed",
		"pull_request": {"number": 3, "title": "Add feature", "html_url": "https://p/3", "merged": true, "user": {"login": "carol"}},
		"repository": {"full_name": "owner/repo", "owner": {"login": "owner"}, "name": "repo"}
	}`)

	note := ClassifyEvent("pull_request", body, allNotifyFlags())
	if note == nil {
		t.Fatal("expected a notification")
	}
	if !strings.Contains(note.Text, "merged") {
		t.Fatalf("merged PR should render the merged action, got %q", note.Text)
	}
	if !strings.Contains(note.Text, "🎉") {
		t.Fatalf("merged PR should use the merged icon, got %q", note.Text)
	}
}

func TestClassifyReleaseEvent(t *testing.T) {
	body := func(action string) []byte {
		return []byte(fmt.Sprintf(`{
			"action": %q,
			"release": {"name": "First", "tag_name": "v1.0.0", "html_url": "https://r/1", "author": {"login": "dave"}},
			"repository": {"name": "repo", "full_name": "owner/repo", "owner": {"login": "owner"}}
		}`, action))
	}

	if note := ClassifyEvent("release", body("created"), allNotifyFlags()); note != nil {
		t.Fatal("non-published release should be suppressed")
	}

	note := ClassifyEvent("release", body("published"), allNotifyFlags())
	if note == nil {
		t.Fatal("published release should notify")
	}
	for _, want := range []string{"First", "v1\\.0\\.0", "dave", "https://r/1"} {
		if !strings.Contains(note.Text, want) {
			t.Fatalf("text %q missing %q", note.Text, want)
		}
	}
}

func TestClassifyPingEventIgnoresFlags(t *testing.T) {
	body := []byte(`{"repository": {"name": "repo", "full_name": "owner/repo", "owner": {"login": "owner"}}}`)

	note := ClassifyEvent("ping", body, config.NotifyConfig{})
	if note == nil {
		t.Fatal("ping must notify regardless of flags")
	}
	if !strings.Contains(note.Text, "owner/repo") {
		t.Fatalf("ping text %q missing repository name", note.Text)
	}
}

func TestClassifyUnknownEventType(t *testing.T) {
	if note := ClassifyEvent("foo", []byte(`{}`), allNotifyFlags()); note != nil {
		t.Fatal("unknown event type must be suppressed")
	}
}

func TestClassifyMalformedPayload(t *testing.T) {
	// A mistyped field aborts that event only; no notification, no panic.
	body := []byte(`{"ref": 42, "commits": "nope"}`)
	if note := ClassifyEvent("push", body, allNotifyFlags()); note != nil {
		t.Fatal("malformed payload must be suppressed")
	}
}
