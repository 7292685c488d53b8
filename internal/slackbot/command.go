// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package slackbot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Command is what a mention asks the bot to do.
type Command int

const (
	CommandUnknown Command = iota
	CommandSummarize
	CommandPing
)

func (c Command) String() string {
	switch c {
	case CommandSummarize:
		return "summarize"
	case CommandPing:
		return "ping"
	default:
		return "unknown"
	}
}

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+(\|[^>]*)?>`)

// ParseCommand reads the command from mention text. User mentions are
// removed first; summarize keywords win over ping.
func ParseCommand(text string) Command {
	msg := strings.ToLower(strings.TrimSpace(mentionPattern.ReplaceAllString(text, "")))
	switch {
	case strings.Contains(msg, "要約"), strings.Contains(msg, "summarize"), strings.Contains(msg, "pdf"):
		return CommandSummarize
	case strings.Contains(msg, "ping"):
		return CommandPing
	default:
		return CommandUnknown
	}
}

// ErrNoEntry is returned when the thread root has no identifier line.
var ErrNoEntry = errors.New("no entry identifier in thread")

// EntryIDFromThread returns the identifier on the given 0-based line of the
// thread root text with Slack link markup (<...> and |label) removed.
func EntryIDFromThread(text string, line int) (string, error) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return "", fmt.Errorf("%w: thread has %d lines, want line %d", ErrNoEntry, len(lines), line)
	}
	id := strings.TrimSpace(lines[line])
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	if i := strings.Index(id, "|"); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", fmt.Errorf("%w: line %d is empty", ErrNoEntry, line)
	}
	return id, nil
}
