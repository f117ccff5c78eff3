package tools

import (
	"context"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/mmcdole/gofeed"
	"github.com/sandevgo/lisbot/pkg/log"
)

const (
	maxEntriesPerFeed = 15
	maxNewsItems      = 10
	feedFetchTimeout  = 10 * time.Second
)

var newsKeywords = []string{
	"security", "hacked", "vulnerability", "exploit", "breach",
	"malware", "crypto", "ransomware", "attack", "cyber", "threat",
	"hack", "leaked", "zero-day", "patch", "virus",
}

type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Summary   string `json:"summary,omitempty"`
}

// NewsFetcher pulls security stories from a set of RSS feeds and keeps only
// the entries whose titles match known security keywords.
type NewsFetcher struct {
	feeds  []string
	parser *gofeed.Parser
}

func NewNewsFetcher(feeds []string) *NewsFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	return &NewsFetcher{feeds: feeds, parser: parser}
}

// Fetch walks the configured feeds in order. A feed that fails to parse is
// logged and skipped, the rest still contribute stories.
func (n *NewsFetcher) Fetch(ctx context.Context) []NewsItem {
	logger := log.FromCtx(ctx)
	news := make([]NewsItem, 0, maxNewsItems)

	for _, feedURL := range n.feeds {
		if len(news) >= maxNewsItems {
			break
		}

		feedCtx, cancel := context.WithTimeout(ctx, feedFetchTimeout)
		feed, err := n.parser.ParseURLWithContext(feedURL, feedCtx)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("feed", feedURL).Msg("feed skipped")
			continue
		}

		items := feed.Items
		if len(items) > maxEntriesPerFeed {
			items = items[:maxEntriesPerFeed]
		}
		for _, item := range items {
			if !titleMatches(item.Title) {
				continue
			}
			news = append(news, NewsItem{
				Title:     item.Title,
				Link:      item.Link,
				Source:    feed.Title,
				Published: shortDate(item.Published),
				Summary:   plainSummary(item.Description),
			})
			if len(news) >= maxNewsItems {
				break
			}
		}
	}

	return news
}

func titleMatches(title string) bool {
	lowered := strings.ToLower(title)
	for _, kw := range newsKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func shortDate(published string) string {
	if len(published) > 10 {
		return published[:10]
	}
	return published
}

// plainSummary strips markup from a feed description, keeping it to a
// single short line.
func plainSummary(description string) string {
	if description == "" {
		return ""
	}
	text, err := html2text.FromString(description, html2text.Options{OmitLinks: true})
	if err != nil {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	const limit = 200
	if len(text) > limit {
		text = text[:limit]
	}
	return text
}
