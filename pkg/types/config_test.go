// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJobConfig() Config {
	cfg := DefaultConfig()
	cfg.AI.AnthropicAPIKey = "sk-test"
	cfg.AI.GeminiAPIKey = "gm-test"
	cfg.Notion.APIKey = "secret_test"
	cfg.Notion.DatabaseID = "db"
	return cfg
}

func TestValidateJob_OK(t *testing.T) {
	require.NoError(t, validJobConfig().ValidateJob())
}

func TestValidateJob_MissingNotion(t *testing.T) {
	cfg := validJobConfig()
	cfg.Notion.DatabaseID = ""

	err := cfg.ValidateJob()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "notion.database_id")
}

func TestValidateAI_UnknownProvider(t *testing.T) {
	cfg := validJobConfig()
	cfg.AI.Provider = "llama"

	err := cfg.ValidateAI()
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestValidateAI_HashEmbedderNeedsNoKey(t *testing.T) {
	cfg := validJobConfig()
	cfg.AI.GeminiAPIKey = ""
	cfg.AI.EmbedProvider = "hash"

	assert.NoError(t, cfg.ValidateAI())
}

func TestValidateJob_ServiceModeNeedsURL(t *testing.T) {
	cfg := validJobConfig()
	cfg.Grobid.Mode = GrobidService

	err := cfg.ValidateJob()
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "grobid.service_url")
}

func TestValidateDigest(t *testing.T) {
	cfg := validJobConfig()
	err := cfg.ValidateDigest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest.keywords")
	assert.Contains(t, err.Error(), "slack.bot_token")

	cfg.Digest.Keywords = []string{"LLM"}
	cfg.Digest.Channel = "C123"
	cfg.Slack.BotToken = "xoxb-test"
	assert.NoError(t, cfg.ValidateDigest())
}

func TestSectionLabel(t *testing.T) {
	assert.Equal(t, "3.2", Section{Index: 5, Number: "3.2"}.Label())
	assert.Equal(t, "6", Section{Index: 5}.Label())
}

func TestAuthorString(t *testing.T) {
	m := DocumentMetadata{Authors: []string{"Ada Lovelace", "Alan Turing"}}
	assert.Equal(t, "Ada Lovelace, Alan Turing", m.AuthorString())
	assert.Equal(t, "", DocumentMetadata{}.AuthorString())
	assert.True(t, DocumentMetadata{}.IsEmpty())
	assert.False(t, m.IsEmpty())
}

func TestPaperInCategories(t *testing.T) {
	p := Paper{Categories: []string{"cs.CL", "cs.LG"}}
	assert.True(t, p.InCategories(nil))
	assert.True(t, p.InCategories([]string{"cs.AI", "cs.LG"}))
	assert.False(t, p.InCategories([]string{"math.PR"}))
}
