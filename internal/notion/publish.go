// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/internal/metadata"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	// maxChildren is the API limit of blocks per create or append call.
	maxChildren = 100

	// maxRichText is the API limit of characters per rich text object.
	maxRichText = 2000
)

// Publisher creates one database page per summarized paper.
type Publisher struct {
	client *notionapi.Client
	cfg    types.NotionConfig
	logger *log.Logger
}

// NewPublisher returns a Publisher. opts are passed to the API client.
func NewPublisher(cfg types.NotionConfig, logger *log.Logger, opts ...notionapi.ClientOption) (*Publisher, error) {
	if cfg.APIKey == "" || cfg.DatabaseID == "" {
		return nil, fmt.Errorf("%w: notion api key and database id are required", types.ErrConfiguration)
	}
	return &Publisher{
		client: notionapi.NewClient(notionapi.Token(cfg.APIKey), opts...),
		cfg:    cfg,
		logger: logging.Or(logger),
	}, nil
}

// Publish creates the page with its properties and the given blocks and
// returns the page URL. Blocks beyond the first hundred are appended in
// further batches.
func (p *Publisher) Publish(ctx context.Context, meta types.DocumentMetadata, blocks []types.Block) (string, error) {
	children := ToNotionBlocks(blocks)
	first, rest := splitBatch(children)

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(p.cfg.DatabaseID),
		},
		Properties: BuildProperties(meta, p.cfg),
		Children:   first,
	}
	if p.cfg.Icon != "" {
		emoji := notionapi.Emoji(p.cfg.Icon)
		req.Icon = &notionapi.Icon{Type: "emoji", Emoji: &emoji}
	}

	var page *notionapi.Page
	err := p.retry(ctx, func(ctx context.Context) error {
		var err error
		page, err = p.client.Page.Create(ctx, req)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: creating notion page: %v", types.ErrExternalService, err)
	}

	for len(rest) > 0 {
		var batch []notionapi.Block
		batch, rest = splitBatch(rest)
		err := p.retry(ctx, func(ctx context.Context) error {
			_, err := p.client.Block.AppendChildren(ctx, notionapi.BlockID(page.ID),
				&notionapi.AppendBlockChildrenRequest{Children: batch})
			return err
		})
		if err != nil {
			return page.URL, fmt.Errorf("%w: appending blocks to %s: %v", types.ErrExternalService, page.URL, err)
		}
	}

	p.logger.Info().Str("url", page.URL).Int("blocks", len(children)).Msg("notion page created")
	return page.URL, nil
}

// retry treats client errors other than rate limiting as permanent.
func (p *Publisher) retry(ctx context.Context, fn func(ctx context.Context) error) error {
	return httputil.Retry(ctx, p.cfg.Attempts, p.cfg.RetryDelay, func(ctx context.Context) error {
		err := fn(ctx)
		var apiErr *notionapi.Error
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 &&
			apiErr.Status != http.StatusTooManyRequests {
			return httputil.Permanent(err)
		}
		return err
	})
}

func splitBatch(blocks []notionapi.Block) (batch, rest []notionapi.Block) {
	if len(blocks) <= maxChildren {
		return blocks, nil
	}
	return blocks[:maxChildren], blocks[maxChildren:]
}

// BuildProperties returns a new property set for one page. The Published
// date is omitted when the metadata date cannot be normalized.
func BuildProperties(meta types.DocumentMetadata, cfg types.NotionConfig) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(meta.Title),
		},
		"Author": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(meta.AuthorString()),
		},
	}
	if meta.CanonicalURL != "" {
		props["URL"] = notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: meta.CanonicalURL}
	}
	if cfg.TypeTag != "" {
		props["Type"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: cfg.TypeTag},
		}
	}
	if cfg.Conference != "" {
		props["Conference"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: cfg.Conference},
		}
	}
	if day, ok := metadata.NormalizeDate(meta.PublishedDate); ok {
		props["Published"] = DateProperty{Start: day}
	}
	return props
}

// DateProperty is a date property without a time of day, sent as
// {"type":"date","date":{"start":"YYYY-MM-DD"}}.
type DateProperty struct {
	// Start is YYYY-MM-DD.
	Start string
}

func (DateProperty) GetID() string { return "" }

func (DateProperty) GetType() notionapi.PropertyType { return notionapi.PropertyTypeDate }

func (d DateProperty) MarshalJSON() ([]byte, error) {
	type date struct {
		Start string `json:"start"`
	}
	return json.Marshal(struct {
		Type notionapi.PropertyType `json:"type"`
		Date date                   `json:"date"`
	}{notionapi.PropertyTypeDate, date{d.Start}})
}

// ToNotionBlocks maps content blocks to API blocks.
func ToNotionBlocks(blocks []types.Block) []notionapi.Block {
	out := make([]notionapi.Block, 0, len(blocks))
	for _, b := range blocks {
		rt := richText(b.Text)
		if b.Kind == types.BlockHeading {
			switch b.Level {
			case 1:
				out = append(out, &notionapi.Heading1Block{
					BasicBlock: basic(notionapi.BlockTypeHeading1),
					Heading1:   notionapi.Heading{RichText: rt},
				})
				continue
			case 2:
				out = append(out, &notionapi.Heading2Block{
					BasicBlock: basic(notionapi.BlockTypeHeading2),
					Heading2:   notionapi.Heading{RichText: rt},
				})
				continue
			case 3:
				out = append(out, &notionapi.Heading3Block{
					BasicBlock: basic(notionapi.BlockTypeHeading3),
					Heading3:   notionapi.Heading{RichText: rt},
				})
				continue
			}
		}
		out = append(out, &notionapi.ParagraphBlock{
			BasicBlock: basic(notionapi.BlockTypeParagraph),
			Paragraph:  notionapi.Paragraph{RichText: rt},
		})
	}
	return out
}

func basic(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: t}
}

// richText splits s into objects of at most maxRichText characters. Empty
// text gives an empty, non-nil slice.
func richText(s string) []notionapi.RichText {
	out := make([]notionapi.RichText, 0, 1)
	runes := []rune(s)
	for len(runes) > 0 {
		n := min(len(runes), maxRichText)
		out = append(out, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: string(runes[:n])},
		})
		runes = runes[n:]
	}
	return out
}
