// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivConfig holds settings for the arXiv search and download client.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Categories restricts search results to these subject classes.
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// MaxResults is the maximum number of entries requested per search (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// RequestInterval is the minimum spacing between API calls (default 3s).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval" mapstructure:"request_interval"`

	// Attempts is the number of tries for downloads and API calls (default 3).
	Attempts int `json:"attempts" yaml:"attempts" mapstructure:"attempts"`

	// RetryDelay is the fixed wait between attempts (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
}

// GrobidMode selects how GROBID is invoked.
type GrobidMode string

const (
	GrobidCLI     GrobidMode = "cli"
	GrobidService GrobidMode = "service"
)

// GrobidConfig holds settings for the PDF-to-TEI extraction service.
type GrobidConfig struct {
	// Mode is "cli" (batch jar run as a subprocess) or "service" (HTTP API).
	Mode GrobidMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// JavaBin is the java executable for CLI mode (default "java").
	JavaBin string `json:"java_bin" yaml:"java_bin" mapstructure:"java_bin"`

	// Home is the grobid-home directory for CLI mode.
	Home string `json:"home" yaml:"home" mapstructure:"home"`

	// Jar is the grobid-core onejar path for CLI mode.
	Jar string `json:"jar" yaml:"jar" mapstructure:"jar"`

	// Heap is the JVM max heap for CLI mode (default "4G").
	Heap string `json:"heap" yaml:"heap" mapstructure:"heap"`

	// ServiceURL is the GROBID base URL for service mode (e.g. "http://localhost:8070").
	ServiceURL string `json:"service_url" yaml:"service_url" mapstructure:"service_url"`

	// Timeout bounds a single GROBID run (default 5m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ExtractionConfig holds settings for TEI section extraction.
type ExtractionConfig struct {
	// IncludeAbstract copies the publisher abstract into the metadata.
	IncludeAbstract bool `json:"include_abstract" yaml:"include_abstract" mapstructure:"include_abstract"`

	// StopTitles ends the section sequence at the first matching title.
	StopTitles []string `json:"stop_titles" yaml:"stop_titles" mapstructure:"stop_titles"`

	// FoldCase compares stop titles case-insensitively.
	FoldCase bool `json:"fold_case" yaml:"fold_case" mapstructure:"fold_case"`
}

// AIConfig holds settings for the completion and embedding backends.
type AIConfig struct {
	// Provider selects the completion backend: "anthropic" or "gemini".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the completion model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// EmbedProvider selects the embedding backend: "gemini" or "hash".
	EmbedProvider string `json:"embed_provider" yaml:"embed_provider" mapstructure:"embed_provider"`

	// EmbedModel is the embedding model identifier.
	EmbedModel string `json:"embed_model" yaml:"embed_model" mapstructure:"embed_model"`

	// EmbedDimension is the expected vector length (default 768).
	EmbedDimension int `json:"embed_dimension" yaml:"embed_dimension" mapstructure:"embed_dimension"`

	// AnthropicAPIKey authenticates the Anthropic backend.
	AnthropicAPIKey string `json:"-" yaml:"-" mapstructure:"anthropic_api_key"`

	// GeminiAPIKey authenticates the Gemini backend.
	GeminiAPIKey string `json:"-" yaml:"-" mapstructure:"gemini_api_key"`

	// MaxTokens caps a single completion (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// IndexConfig holds settings for chunking and response synthesis.
type IndexConfig struct {
	// ChunkWords is the maximum number of words per chunk (default 2048).
	ChunkWords int `json:"chunk_words" yaml:"chunk_words" mapstructure:"chunk_words"`

	// ChunkOverlap is the number of words shared by adjacent chunks (default 128).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap" mapstructure:"chunk_overlap"`

	// ContextWords bounds the packed context of one tree-summarize call (default 3000).
	ContextWords int `json:"context_words" yaml:"context_words" mapstructure:"context_words"`

	// TopK limits a section query to the K most similar chunks. Zero uses all.
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// Concurrency bounds parallel sub-queries during synthesis (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Query is the per-section summarization instruction.
	Query string `json:"query" yaml:"query" mapstructure:"query"`
}

// NotionConfig holds settings for the page publisher.
type NotionConfig struct {
	// APIKey is the integration token.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// DatabaseID is the parent database for created pages.
	DatabaseID string `json:"database_id" yaml:"database_id" mapstructure:"database_id"`

	// TypeTag is the fixed value of the "Type" select property (default "paper").
	TypeTag string `json:"type_tag" yaml:"type_tag" mapstructure:"type_tag"`

	// Conference is the value of the "Conference" select property (default "arXiv").
	Conference string `json:"conference" yaml:"conference" mapstructure:"conference"`

	// Icon is the page emoji icon.
	Icon string `json:"icon" yaml:"icon" mapstructure:"icon"`

	// Attempts is the number of tries per API call (default 3).
	Attempts int `json:"attempts" yaml:"attempts" mapstructure:"attempts"`

	// RetryDelay is the fixed wait between attempts (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
}

// SlackConfig holds settings for the messaging front-end.
type SlackConfig struct {
	// BotToken is the xoxb- token used for Web API calls.
	BotToken string `json:"-" yaml:"-" mapstructure:"bot_token"`

	// AppToken is the xapp- token used for Socket Mode.
	AppToken string `json:"-" yaml:"-" mapstructure:"app_token"`

	// EntryLine is the 0-based line of the thread root that carries the
	// paper identifier (default 4).
	EntryLine int `json:"entry_line" yaml:"entry_line" mapstructure:"entry_line"`

	// Attempts is the number of tries per post (default 3).
	Attempts int `json:"attempts" yaml:"attempts" mapstructure:"attempts"`

	// RetryDelay is the fixed wait between attempts (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
}

// LockConfig holds settings for the per-document job lock.
type LockConfig struct {
	// RedisAddr enables the Redis lock when set (e.g. "localhost:6379").
	// Empty uses an in-process lock.
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`

	// RedisPassword authenticates to Redis.
	RedisPassword string `json:"-" yaml:"-" mapstructure:"redis_password"`

	// RedisDB selects the Redis database.
	RedisDB int `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`

	// TTL bounds how long a crashed job can hold a document (default 1h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// JobConfig holds settings for the per-document job.
type JobConfig struct {
	// WorkDir is the parent of per-job working directories (default "data/documents").
	WorkDir string `json:"work_dir" yaml:"work_dir" mapstructure:"work_dir"`

	// ArchiveDir receives a copy of each summary and its metadata. Empty disables it.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir" mapstructure:"archive_dir"`
}

// DigestConfig holds settings for the scheduled keyword digest.
type DigestConfig struct {
	// Keywords are searched one after another.
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// Schedule is a five-field cron expression (e.g. "0 9 * * *").
	Schedule string `json:"schedule" yaml:"schedule" mapstructure:"schedule"`

	// Channel is the Slack channel that receives digest messages.
	Channel string `json:"channel" yaml:"channel" mapstructure:"channel"`

	// Days is the submission window searched for each run (default 7).
	Days int `json:"days" yaml:"days" mapstructure:"days"`

	// MaxResults is the maximum number of papers per keyword (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// PostInterval is the minimum spacing between posted messages (default 10s).
	PostInterval time.Duration `json:"post_interval" yaml:"post_interval" mapstructure:"post_interval"`

	// Language is the language of the translated title and bullet points
	// (default "English").
	Language string `json:"language" yaml:"language" mapstructure:"language"`
}

// LoggingConfig holds settings for the structured logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json" (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations.
type Config struct {
	Arxiv      ArxivConfig      `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Grobid     GrobidConfig     `json:"grobid" yaml:"grobid" mapstructure:"grobid"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Index      IndexConfig      `json:"index" yaml:"index" mapstructure:"index"`
	Notion     NotionConfig     `json:"notion" yaml:"notion" mapstructure:"notion"`
	Slack      SlackConfig      `json:"slack" yaml:"slack" mapstructure:"slack"`
	Lock       LockConfig       `json:"lock" yaml:"lock" mapstructure:"lock"`
	Job        JobConfig        `json:"job" yaml:"job" mapstructure:"job"`
	Digest     DigestConfig     `json:"digest" yaml:"digest" mapstructure:"digest"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultStopTitles are the headings that end the summarized section sequence.
var DefaultStopTitles = []string{"Conclusion", "Conclusions", "References"}

// DefaultConfig returns the configuration used when no file or flag overrides a value.
func DefaultConfig() Config {
	return Config{
		Arxiv: ArxivConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "paper-digest/0.1",
			},
			Categories:      []string{"cs.AI", "cs.CL", "cs.CV", "cs.LG", "stat.ML"},
			MaxResults:      10,
			RequestInterval: 3 * time.Second,
			Attempts:        3,
			RetryDelay:      5 * time.Second,
		},
		Grobid: GrobidConfig{
			Mode:    GrobidCLI,
			JavaBin: "java",
			Home:    "/usr/lib/grobid-0.7.3/grobid-home",
			Jar:     "/usr/lib/grobid-0.7.3/grobid-core/build/libs/grobid-core-0.7.3-onejar.jar",
			Heap:    "4G",
			Timeout: 5 * time.Minute,
		},
		Extraction: ExtractionConfig{
			StopTitles: append([]string(nil), DefaultStopTitles...),
		},
		AI: AIConfig{
			Provider:       "anthropic",
			Model:          "claude-sonnet-4-5-20250929",
			EmbedProvider:  "gemini",
			EmbedModel:     "text-embedding-004",
			EmbedDimension: 768,
			MaxTokens:      2048,
			Temperature:    0.1,
		},
		Index: IndexConfig{
			ChunkWords:   2048,
			ChunkOverlap: 128,
			ContextWords: 3000,
			Concurrency:  4,
			Query:        "Summarize the substance of the provided text.",
		},
		Notion: NotionConfig{
			TypeTag:    "paper",
			Conference: "arXiv",
			Icon:       "📄",
			Attempts:   3,
			RetryDelay: 5 * time.Second,
		},
		Slack: SlackConfig{
			EntryLine:  4,
			Attempts:   3,
			RetryDelay: 5 * time.Second,
		},
		Lock: LockConfig{
			TTL: time.Hour,
		},
		Job: JobConfig{
			WorkDir: "data/documents",
		},
		Digest: DigestConfig{
			Schedule:     "0 9 * * *",
			Days:         7,
			MaxResults:   10,
			PostInterval: 10 * time.Second,
			Language:     "English",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ValidateAI checks that the selected AI backends have credentials.
func (c Config) ValidateAI() error {
	var missing []string
	switch c.AI.Provider {
	case "anthropic":
		if c.AI.AnthropicAPIKey == "" {
			missing = append(missing, "ai.anthropic_api_key")
		}
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			missing = append(missing, "ai.gemini_api_key")
		}
	default:
		return fmt.Errorf("%w: unknown ai.provider %q", ErrConfiguration, c.AI.Provider)
	}
	switch c.AI.EmbedProvider {
	case "gemini":
		if c.AI.GeminiAPIKey == "" && c.AI.Provider != "gemini" {
			missing = append(missing, "ai.gemini_api_key")
		}
	case "hash":
	default:
		return fmt.Errorf("%w: unknown ai.embed_provider %q", ErrConfiguration, c.AI.EmbedProvider)
	}
	return missingError(missing)
}

// ValidateJob checks everything a summarization job needs.
func (c Config) ValidateJob() error {
	if err := c.ValidateAI(); err != nil {
		return err
	}
	var missing []string
	if c.Notion.APIKey == "" {
		missing = append(missing, "notion.api_key")
	}
	if c.Notion.DatabaseID == "" {
		missing = append(missing, "notion.database_id")
	}
	if c.Job.WorkDir == "" {
		missing = append(missing, "job.work_dir")
	}
	switch c.Grobid.Mode {
	case GrobidCLI:
		if c.Grobid.Jar == "" || c.Grobid.Home == "" {
			missing = append(missing, "grobid.jar", "grobid.home")
		}
	case GrobidService:
		if c.Grobid.ServiceURL == "" {
			missing = append(missing, "grobid.service_url")
		}
	default:
		return fmt.Errorf("%w: unknown grobid.mode %q", ErrConfiguration, c.Grobid.Mode)
	}
	return missingError(missing)
}

// ValidateSlack checks the Socket Mode credentials.
func (c Config) ValidateSlack() error {
	var missing []string
	if c.Slack.BotToken == "" {
		missing = append(missing, "slack.bot_token")
	}
	if c.Slack.AppToken == "" {
		missing = append(missing, "slack.app_token")
	}
	return missingError(missing)
}

// ValidateDigest checks the digest settings.
func (c Config) ValidateDigest() error {
	if err := c.ValidateAI(); err != nil {
		return err
	}
	var missing []string
	if len(c.Digest.Keywords) == 0 {
		missing = append(missing, "digest.keywords")
	}
	if c.Digest.Channel == "" {
		missing = append(missing, "digest.channel")
	}
	if c.Slack.BotToken == "" {
		missing = append(missing, "slack.bot_token")
	}
	return missingError(missing)
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
}
