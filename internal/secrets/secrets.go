// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files. The
// filename is the key and the trimmed file contents are the value.
//
// Recognized keys: anthropic-api-key, gemini-api-key, notion-api-key,
// slack-bot-token, slack-app-token, redis-password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Key file names.
const (
	AnthropicAPIKey = "anthropic-api-key"
	GeminiAPIKey    = "gemini-api-key"
	NotionAPIKey    = "notion-api-key"
	SlackBotToken   = "slack-bot-token"
	SlackAppToken   = "slack-app-token"
	RedisPassword   = "redis-password"
)

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty map. Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Apply fills empty credential fields of cfg from s. Values already set by
// the config file or environment win.
func Apply(cfg *types.Config, s map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = s[key]
		}
	}
	fill(&cfg.AI.AnthropicAPIKey, AnthropicAPIKey)
	fill(&cfg.AI.GeminiAPIKey, GeminiAPIKey)
	fill(&cfg.Notion.APIKey, NotionAPIKey)
	fill(&cfg.Slack.BotToken, SlackBotToken)
	fill(&cfg.Slack.AppToken, SlackAppToken)
	fill(&cfg.Lock.RedisPassword, RedisPassword)
}
