package github

import (
	"strings"
	"unicode/utf8"
)

// markdownEscaper backslash-escapes every character Telegram's markdown
// parser treats as special. Applied to all user-controlled text before it is
// interpolated into a message.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMarkdown escapes special markdown characters in user-controlled text.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Truncate shortens s to at most maxLen bytes, appending an ellipsis when
// anything was cut. The cut never lands inside a multi-byte rune, so the
// result is always valid UTF-8.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
