package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/user/ghrelay/internal/config"
	"github.com/user/ghrelay/internal/github"
	"github.com/user/ghrelay/internal/ratelimit"
	"github.com/user/ghrelay/internal/storage"
	"github.com/user/ghrelay/pkg/logger"
)

const apiTimeout = 10 * time.Second

// Replier sends a reply to a chat.
type Replier interface {
	SendMessage(chatID int64, text string) error
}

// Handlers routes incoming messages to command handlers. Every message
// passes the authorization gate and the rate limiter before any handler or
// the unknown-command reply runs.
type Handlers struct {
	cfg       *config.Config
	limiter   *ratelimit.Limiter
	store     *storage.WatchStore
	ghClient  *github.Client
	reply     Replier
	startTime time.Time
}

// NewHandlers creates a new handlers instance.
func NewHandlers(cfg *config.Config, limiter *ratelimit.Limiter, store *storage.WatchStore, ghClient *github.Client, reply Replier) *Handlers {
	return &Handlers{
		cfg:       cfg,
		limiter:   limiter,
		store:     store,
		ghClient:  ghClient,
		reply:     reply,
		startTime: time.Now(),
	}
}

// HandleMessage processes one incoming message.
func (h *Handlers) HandleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !h.cfg.IsChatAllowed(chatID) {
		logger.Warn().Int64("chat_id", chatID).Msg("Unauthorized chat")
		h.send(chatID, "❌ You are not authorized to use this bot.")
		return
	}

	if !h.limiter.Allow(chatID) {
		h.send(chatID, "⏰ Rate limit exceeded. Please wait before making more requests.")
		return
	}

	h.trackChat(msg.Chat)

	kind, args := parseCommand(msg.Text)

	logger.Debug().
		Str("text", msg.Text).
		Int64("chat_id", chatID).
		Msg("Routing command")

	switch kind {
	case cmdStart:
		h.handleStart(chatID)
	case cmdHelp:
		h.handleHelp(chatID)
	case cmdProfile:
		h.handleProfile(chatID, args)
	case cmdRepos:
		h.handleRepos(chatID, args)
	case cmdRepo:
		h.handleRepo(chatID, args)
	case cmdCommits:
		h.handleCommits(chatID, args)
	case cmdIssues:
		h.handleIssues(chatID, args)
	case cmdSearch:
		h.handleSearch(chatID, args)
	case cmdStatus:
		h.handleStatus(chatID)
	case cmdWatch:
		h.handleWatch(chatID, args)
	case cmdUnwatch:
		h.handleUnwatch(chatID, args)
	case cmdWatching:
		h.handleWatching(chatID)
	case cmdUnknown:
		h.send(chatID, "❌ Unknown command. Use /help to see available commands.")
	}
}

// trackChat records chats that interact with the bot.
func (h *Handlers) trackChat(chat *tgbotapi.Chat) {
	if h.store == nil {
		return
	}

	title := chat.Title
	if chat.Type == "private" {
		title = chat.FirstName
		if chat.LastName != "" {
			title += " " + chat.LastName
		}
	}

	if err := h.store.TrackChat(chat.ID, string(chat.Type), title); err != nil {
		logger.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to track chat")
	}
}

func (h *Handlers) handleStart(chatID int64) {
	h.send(chatID, startMessage())
}

func (h *Handlers) handleHelp(chatID int64) {
	h.send(chatID, helpMessage(h.cfg.RateLimit.Requests, h.cfg.RateLimit.WindowSeconds))
}

func (h *Handlers) handleProfile(chatID int64, args string) {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	user, err := h.ghClient.GetUser(ctx, args)
	if err != nil {
		logger.Error().Err(err).Str("user", args).Msg("Failed to fetch profile")
		h.send(chatID, "❌ User not found or API error occurred.")
		return
	}

	h.send(chatID, formatUserInfo(user))
}

func (h *Handlers) handleRepos(chatID int64, args string) {
	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	repos, err := h.ghClient.ListUserRepositories(ctx, args, 10)
	if err != nil || len(repos) == 0 {
		if err != nil {
			logger.Error().Err(err).Str("user", args).Msg("Failed to fetch repositories")
		}
		h.send(chatID, "❌ No repositories found or API error occurred.")
		return
	}

	h.send(chatID, formatRepoList(repos))
}

func (h *Handlers) handleRepo(chatID int64, args string) {
	owner, repo, ok := parseRepoArg(args)
	if !ok {
		h.send(chatID, "❌ Invalid format. Use: `/repo owner/repo`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	r, err := h.ghClient.GetRepository(ctx, owner, repo)
	if err != nil {
		logger.Error().Err(err).Str("repo", args).Msg("Failed to fetch repository")
		h.send(chatID, fmt.Sprintf("❌ Repository `%s/%s` not found or API error occurred.", owner, repo))
		return
	}

	h.send(chatID, formatRepoInfo(r))
}

func (h *Handlers) handleCommits(chatID int64, args string) {
	owner, repo, ok := parseRepoArg(args)
	if !ok {
		h.send(chatID, "❌ Invalid format. Use: `/commits owner/repo`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	commits, err := h.ghClient.ListCommits(ctx, owner, repo, 5)
	if err != nil || len(commits) == 0 {
		if err != nil {
			logger.Error().Err(err).Str("repo", args).Msg("Failed to fetch commits")
		}
		h.send(chatID, fmt.Sprintf("❌ No commits found for `%s/%s` or API error occurred.", owner, repo))
		return
	}

	h.send(chatID, formatCommitList(owner, repo, commits))
}

func (h *Handlers) handleIssues(chatID int64, args string) {
	owner, repo, ok := parseRepoArg(args)
	if !ok {
		h.send(chatID, "❌ Invalid format. Use: `/issues owner/repo`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	issues, err := h.ghClient.ListOpenIssues(ctx, owner, repo, 5)
	if err != nil || len(issues) == 0 {
		if err != nil {
			logger.Error().Err(err).Str("repo", args).Msg("Failed to fetch issues")
		}
		h.send(chatID, fmt.Sprintf("❌ No issues found for `%s/%s` or API error occurred.", owner, repo))
		return
	}

	h.send(chatID, formatIssueList(owner, repo, issues))
}

func (h *Handlers) handleSearch(chatID int64, args string) {
	if args == "" {
		h.send(chatID, "❌ Please specify a search query: `/search <query>`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	repos, err := h.ghClient.SearchRepositories(ctx, args, 8)
	if err != nil || len(repos) == 0 {
		if err != nil {
			logger.Error().Err(err).Str("query", args).Msg("Failed to search repositories")
		}
		h.send(chatID, fmt.Sprintf("❌ No repositories found for query: `%s`", github.EscapeMarkdown(args)))
		return
	}

	h.send(chatID, formatSearchResults(args, repos))
}

func (h *Handlers) handleStatus(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	quota := "Unknown"
	if limits, err := h.ghClient.GetRateLimit(ctx); err == nil && limits.Core != nil {
		reset := time.Until(limits.Core.Reset.Time).Round(time.Second)
		quota = fmt.Sprintf("%d/%d remaining (resets in %s)", limits.Core.Remaining, limits.Core.Limit, reset)
	}

	watched := 0
	if h.store != nil {
		if count, err := h.store.CountWatchedRepos(); err == nil {
			watched = count
		}
	}

	h.send(chatID, formatStatus(time.Since(h.startTime), quota, watched, h.cfg))
}

func (h *Handlers) handleWatch(chatID int64, args string) {
	owner, repo, ok := parseRepoArg(args)
	if !ok {
		h.send(chatID, "❌ Invalid format. Use: `/watch owner/repo`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	exists, err := h.ghClient.ValidateRepository(ctx, owner, repo)
	if err != nil {
		logger.Error().Err(err).Str("repo", args).Msg("Failed to validate repository")
		h.send(chatID, "⚠️ Could not verify the repository, please try again later.")
		return
	}
	if !exists {
		h.send(chatID, fmt.Sprintf("❌ Repository `%s/%s` not found or not accessible.", owner, repo))
		return
	}

	if err := h.store.Watch(chatID, owner, repo); err != nil {
		logger.Error().Err(err).Str("repo", args).Msg("Failed to save watch")
		h.send(chatID, "❌ Could not save the watch, please try again later.")
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Now watching `%s/%s`. You will be notified of pushes, issues, pull requests and releases.", owner, repo))
}

func (h *Handlers) handleUnwatch(chatID int64, args string) {
	owner, repo, ok := parseRepoArg(args)
	if !ok {
		h.send(chatID, "❌ Invalid format. Use: `/unwatch owner/repo`")
		return
	}

	if err := h.store.Unwatch(chatID, owner, repo); err != nil {
		if errors.Is(err, storage.ErrWatchNotFound) {
			h.send(chatID, fmt.Sprintf("❌ You are not watching `%s/%s`.", owner, repo))
		} else {
			logger.Error().Err(err).Str("repo", args).Msg("Failed to remove watch")
			h.send(chatID, "❌ Could not remove the watch, please try again later.")
		}
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Stopped watching `%s/%s`.", owner, repo))
}

func (h *Handlers) handleWatching(chatID int64) {
	watches, err := h.store.WatchesByChat(chatID)
	if err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to list watches")
		h.send(chatID, "❌ Could not load your watch list.")
		return
	}

	h.send(chatID, formatWatchList(watches))
}

func (h *Handlers) send(chatID int64, text string) {
	if err := h.reply.SendMessage(chatID, text); err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}
