package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// wikiPages are the article paths scraped from the wiki.
var wikiPages = []struct {
	path string
	typ  string
}{
	{"Game_Mechanics", "game_mechanics"},
	{"Lore", "lore"},
}

// WikiCollector scrapes general game knowledge pages from the community wiki.
type WikiCollector struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewWikiCollector creates a scraper rooted at baseURL, e.g.
// "https://leagueoflegends.fandom.com/wiki".
func NewWikiCollector(baseURL string, logger *zap.Logger) *WikiCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WikiCollector{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Name identifies the source.
func (c *WikiCollector) Name() string { return "WikiScrape" }

// Validate checks that a base URL is configured.
func (c *WikiCollector) Validate() error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: wiki base URL is empty", ErrNotConfigured)
	}
	return nil
}

// Collect scrapes each configured wiki page into a document. Pages that fail
// to load are skipped with a warning; an error is returned only when every
// page fails.
func (c *WikiCollector) Collect(ctx context.Context) ([]Document, error) {
	var docs []Document
	var lastErr error

	for _, page := range wikiPages {
		url := c.baseURL + "/" + page.path
		text, err := c.scrapePage(ctx, url)
		if err != nil {
			c.logger.Warn("failed to scrape wiki page", zap.String("url", url), zap.Error(err))
			lastErr = err
			continue
		}
		if text == "" {
			continue
		}
		docs = append(docs, Document{
			Content: text,
			Metadata: map[string]any{
				MetaType:   page.typ,
				MetaSource: "wiki",
				"url":      url,
			},
		})
	}

	if len(docs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("scrape wiki: %w", lastErr)
	}
	return docs, nil
}

func (c *WikiCollector) scrapePage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	// Some wiki frontends reject requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header").Remove()

	content := doc.Find("div.mw-parser-output")
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	var b strings.Builder
	content.Find("p, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		line := strings.TrimSpace(s.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	})
	return strings.TrimSpace(b.String()), nil
}
