package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Episode is a feed item worth importing: either a page with transcript
// text or an audio enclosure to transcribe.
type Episode struct {
	Title     string
	PageURL   string
	AudioURL  string
	Published time.Time
}

// FeedImporter handles RSS/Atom lecture and podcast feeds.
type FeedImporter struct {
	feedParser *gofeed.Parser
}

// NewFeedImporter creates a new feed importer.
func NewFeedImporter() *FeedImporter {
	return &FeedImporter{
		feedParser: gofeed.NewParser(),
	}
}

// ParseFromURL fetches and parses an RSS/Atom feed from the given URL.
func (p *FeedImporter) ParseFromURL(feedURL string) ([]Episode, error) {
	feed, err := p.feedParser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	episodes := make([]Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		ep := Episode{
			Title:    item.Title,
			PageURL:  item.Link,
			AudioURL: audioEnclosure(item),
		}
		if item.PublishedParsed != nil {
			ep.Published = *item.PublishedParsed
		}
		if ep.PageURL == "" && ep.AudioURL == "" {
			continue
		}
		episodes = append(episodes, ep)
	}

	if len(episodes) == 0 {
		return nil, fmt.Errorf("no importable items found in feed")
	}

	return episodes, nil
}

// audioEnclosure picks the first audio enclosure URL, if any.
func audioEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
