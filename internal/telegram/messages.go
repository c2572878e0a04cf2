package telegram

import (
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/user/ghrelay/internal/config"
	"github.com/user/ghrelay/internal/github"
	"github.com/user/ghrelay/internal/storage"
)

func startMessage() string {
	return `🎯 *Welcome to the GitHub relay bot!*

I relay GitHub repository activity to this chat and answer questions about
GitHub users and repositories.

*Quick start:*
• ` + "`/watch owner/repo`" + ` - get notified about pushes, issues, PRs and releases
• ` + "`/repo owner/repo`" + ` - repository details
• ` + "`/profile username`" + ` - GitHub profile

Use /help for the full command list.`
}

func helpMessage(rateLimit, windowSeconds int) string {
	return fmt.Sprintf(`🔧 *Command reference*

*Lookups:*
• `+"`/profile [username]`"+` - GitHub profile
• `+"`/repos [username]`"+` - recent repositories
• `+"`/repo owner/repo`"+` - repository details
• `+"`/commits owner/repo`"+` - recent commits
• `+"`/issues owner/repo`"+` - open issues
• `+"`/search <query>`"+` - search repositories

*Notifications:*
• `+"`/watch owner/repo`"+` - watch a repository
• `+"`/unwatch owner/repo`"+` - stop watching
• `+"`/watching`"+` - your watch list

*System:*
• `+"`/status`"+` - bot health and API quota

Rate limit: %d requests per %d seconds per chat.`, rateLimit, windowSeconds)
}

func formatUserInfo(user *gh.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 *GitHub Profile: %s*\n\n", github.EscapeMarkdown(user.GetLogin()))

	if name := user.GetName(); name != "" {
		fmt.Fprintf(&b, "🏷️ *Name:* %s\n", github.EscapeMarkdown(name))
	}
	if bio := user.GetBio(); bio != "" {
		fmt.Fprintf(&b, "📝 *Bio:* %s\n", github.EscapeMarkdown(bio))
	}

	b.WriteString("📊 *Stats:*\n")
	fmt.Fprintf(&b, "• 📦 Repositories: %d\n", user.GetPublicRepos())
	fmt.Fprintf(&b, "• 👥 Followers: %d\n", user.GetFollowers())
	fmt.Fprintf(&b, "• 👁️ Following: %d\n", user.GetFollowing())

	if location := user.GetLocation(); location != "" {
		fmt.Fprintf(&b, "📍 *Location:* %s\n", github.EscapeMarkdown(location))
	}
	if company := user.GetCompany(); company != "" {
		fmt.Fprintf(&b, "🏢 *Company:* %s\n", github.EscapeMarkdown(company))
	}
	if created := user.GetCreatedAt(); !created.IsZero() {
		fmt.Fprintf(&b, "📅 *Joined:* %s\n", created.Format("2006-01-02"))
	}
	if url := user.GetHTMLURL(); url != "" {
		fmt.Fprintf(&b, "\n🔗 [View Profile](%s)", url)
	}

	return b.String()
}

func formatRepoList(repos []*gh.Repository) string {
	var b strings.Builder
	b.WriteString("📚 *Repositories:*\n\n")
	for _, repo := range repos {
		fmt.Fprintf(&b, "📦 *%s* - ⭐ %d stars\n",
			github.EscapeMarkdown(repo.GetName()), repo.GetStargazersCount())
	}
	return b.String()
}

func formatRepoInfo(repo *gh.Repository) string {
	description := repo.GetDescription()
	if description == "" {
		description = "No description"
	}
	language := repo.GetLanguage()
	if language == "" {
		language = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 *Repository: %s*\n\n", github.EscapeMarkdown(repo.GetFullName()))
	fmt.Fprintf(&b, "📝 *Description:* %s\n\n", github.EscapeMarkdown(description))

	b.WriteString("📊 *Statistics:*\n")
	fmt.Fprintf(&b, "• ⭐ Stars: %d\n", repo.GetStargazersCount())
	fmt.Fprintf(&b, "• 🍴 Forks: %d\n", repo.GetForksCount())
	fmt.Fprintf(&b, "• 👁️ Watchers: %d\n", repo.GetWatchersCount())
	fmt.Fprintf(&b, "• 🐛 Open Issues: %d\n", repo.GetOpenIssuesCount())

	b.WriteString("\n🔧 *Details:*\n")
	fmt.Fprintf(&b, "• 💻 Language: %s\n", github.EscapeMarkdown(language))
	fmt.Fprintf(&b, "• 🌿 Default Branch: %s\n", github.EscapeMarkdown(repo.GetDefaultBranch()))

	if url := repo.GetHTMLURL(); url != "" {
		fmt.Fprintf(&b, "\n🔗 [View Repository](%s)", url)
	}

	return b.String()
}

func formatCommitList(owner, repo string, commits []*gh.RepositoryCommit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 *Recent Commits for %s/%s:*\n\n",
		github.EscapeMarkdown(owner), github.EscapeMarkdown(repo))

	for _, commit := range commits {
		message := github.Truncate(commit.GetCommit().GetMessage(), 80)
		author := commit.GetCommit().GetAuthor().GetName()
		sha := commit.GetSHA()
		if len(sha) > 7 {
			sha = sha[:7]
		}

		fmt.Fprintf(&b, "🔸 *%s*\n", github.EscapeMarkdown(message))
		fmt.Fprintf(&b, "👤 %s • [`%s`](%s)\n\n",
			github.EscapeMarkdown(author), sha, commit.GetHTMLURL())
	}

	return b.String()
}

func formatIssueList(owner, repo string, issues []*gh.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🐛 *Open Issues for %s/%s:*\n\n",
		github.EscapeMarkdown(owner), github.EscapeMarkdown(repo))

	for _, issue := range issues {
		fmt.Fprintf(&b, "🟢 *#%d: %s*\n", issue.GetNumber(), github.EscapeMarkdown(issue.GetTitle()))
		fmt.Fprintf(&b, "👤 %s\n", github.EscapeMarkdown(issue.GetUser().GetLogin()))
		fmt.Fprintf(&b, "🔗 [View Issue](%s)\n\n", issue.GetHTMLURL())
	}

	return b.String()
}

func formatSearchResults(query string, repos []*gh.Repository) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *Search Results for: %s*\n\n", github.EscapeMarkdown(query))

	for _, repo := range repos {
		description := repo.GetDescription()
		if description == "" {
			description = "No description"
		}

		fmt.Fprintf(&b, "📦 *%s*\n", github.EscapeMarkdown(repo.GetFullName()))
		fmt.Fprintf(&b, "📝 %s\n", github.EscapeMarkdown(github.Truncate(description, 100)))
		fmt.Fprintf(&b, "⭐ %d stars • [View](%s)\n\n", repo.GetStargazersCount(), repo.GetHTMLURL())
	}

	return b.String()
}

func formatWatchList(watches []storage.Watch) string {
	if len(watches) == 0 {
		return "📭 You are not watching any repositories.\n\nUse `/watch owner/repo` to start."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Watching (%d):*\n\n", len(watches))
	for i, w := range watches {
		fmt.Fprintf(&b, "%d. [`%s/%s`](https://github.com/%s/%s)\n",
			i+1, w.RepoOwner, w.RepoName, w.RepoOwner, w.RepoName)
	}
	b.WriteString("\nUse `/unwatch owner/repo` to stop watching.")

	return b.String()
}

func formatStatus(uptime time.Duration, quota string, watchedRepos int, cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("📊 *Bot Status*\n\n")
	fmt.Fprintf(&b, "⏱️ *Uptime:* %s\n", formatDuration(uptime))
	fmt.Fprintf(&b, "📈 *GitHub API:* %s\n", quota)
	fmt.Fprintf(&b, "📦 *Watched repositories:* %d\n", watchedRepos)

	b.WriteString("\n⚙️ *Configuration:*\n")
	fmt.Fprintf(&b, "• Rate limit: %d req/%ds per chat\n",
		cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
	fmt.Fprintf(&b, "• Push notifications: %s\n", enabledString(cfg.Notify.Push))
	fmt.Fprintf(&b, "• Release notifications: %s\n", enabledString(cfg.Notify.Releases))

	return b.String()
}

func enabledString(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

// formatDuration renders an uptime the way humans read it.
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
