// Package ingest pulls transcript text into the pipeline from sources
// other than audio files: published lecture pages and podcast feeds.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"lecture-notes/pkg/httpclient"
)

// Page is a fetched lecture page reduced to its importable parts.
type Page struct {
	URL   string
	Title string
	Text  string
}

// WebImporter fetches a lecture transcript page and extracts its title
// and body text.
type WebImporter struct {
	client *httpclient.HTTPClient
}

// NewWebImporter creates an importer backed by the given HTTP client.
func NewWebImporter(client *httpclient.HTTPClient) *WebImporter {
	return &WebImporter{client: client}
}

// Import fetches the page and extracts title and text. The text is the
// raw transcript; normalization happens in the pipeline.
func (w *WebImporter) Import(ctx context.Context, pageURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request for %s: %w", pageURL, err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	htmlContent, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", pageURL, err)
	}

	text, err := ExtractText(string(htmlContent))
	if err != nil {
		return Page{}, err
	}

	title, err := ExtractTitle(string(htmlContent))
	if err != nil {
		// A page without a recoverable title is still importable.
		title = pageURL
	}

	return Page{URL: pageURL, Title: title, Text: text}, nil
}

// ExtractText extracts the main readable text from HTML content.
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}

// ExtractTitle extracts the page title from HTML content with fallback
// mechanisms.
func ExtractTitle(htmlContent string) (string, error) {
	// Try readability first
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		title := strings.TrimSpace(article.Title)
		if title != "" {
			return title, nil
		}
	}

	// Fallback: Try parsing HTML directly with goquery
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Try <title> tag
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}

	// Try <h1> tag (often the main heading)
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}

	// Try meta property="og:title"
	if title, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	// Try meta name="title"
	if title, exists := doc.Find("meta[name='title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	return "", fmt.Errorf("title not found in HTML")
}
