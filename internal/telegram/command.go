package telegram

import "strings"

// commandKind enumerates the known bot commands plus a catch-all for
// anything else.
type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdStart
	cmdHelp
	cmdProfile
	cmdRepos
	cmdRepo
	cmdCommits
	cmdIssues
	cmdSearch
	cmdStatus
	cmdWatch
	cmdUnwatch
	cmdWatching
)

// parseCommand routes message text on its first whitespace-delimited token
// and returns the rest as the argument string. A trailing @botname on the
// command token is ignored so commands work in group chats.
func parseCommand(text string) (commandKind, string) {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return cmdUnknown, ""
	}

	token := fields[0]
	if at := strings.IndexByte(token, '@'); at > 0 {
		token = token[:at]
	}

	args := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))

	switch token {
	case "/start":
		return cmdStart, args
	case "/help":
		return cmdHelp, args
	case "/profile":
		return cmdProfile, args
	case "/repos":
		return cmdRepos, args
	case "/repo":
		return cmdRepo, args
	case "/commits":
		return cmdCommits, args
	case "/issues":
		return cmdIssues, args
	case "/search":
		return cmdSearch, args
	case "/status":
		return cmdStatus, args
	case "/watch":
		return cmdWatch, args
	case "/unwatch":
		return cmdUnwatch, args
	case "/watching":
		return cmdWatching, args
	default:
		return cmdUnknown, args
	}
}

// parseRepoArg parses "owner/repo" format.
func parseRepoArg(arg string) (owner, repo string, ok bool) {
	arg = strings.TrimSpace(arg)
	parts := strings.SplitN(arg, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}

	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])

	if owner == "" || repo == "" || strings.ContainsAny(repo, "/ ") {
		return "", "", false
	}

	return owner, repo, true
}
