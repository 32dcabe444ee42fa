package arxiv

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// apiBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// Paper holds the metadata of one arXiv submission.
type Paper struct {
	ArxivID    string
	Title      string
	Abstract   string
	Authors    []string
	Categories []string
	Published  time.Time
}

// URL returns the abstract page for the paper.
func (p Paper) URL() string {
	return "https://arxiv.org/abs/" + p.ArxivID
}

// Client fetches recent papers from the arXiv API. The API returns an
// Atom feed, which gofeed parses directly.
type Client struct {
	parser *gofeed.Parser
}

// NewClient creates a new arXiv client.
func NewClient() *Client {
	return &Client{parser: gofeed.NewParser()}
}

// FetchRecent returns papers submitted to any of the given categories
// within the last daysBack days, deduplicated and sorted newest first.
func (c *Client) FetchRecent(ctx context.Context, categories []string, daysBack, maxResults int) ([]Paper, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no arXiv categories configured")
	}
	if maxResults <= 0 {
		maxResults = 200
	}

	query := buildCategoryQuery(categories)
	feedURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		apiBase, url.QueryEscape(query), maxResults)

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("querying arXiv API: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack)
	seen := make(map[string]bool)
	var papers []Paper

	for _, item := range feed.Items {
		paper := parseEntry(item)
		if paper == nil {
			continue
		}
		if seen[paper.ArxivID] {
			continue
		}
		if daysBack > 0 && !paper.Published.IsZero() && paper.Published.Before(cutoff) {
			continue
		}
		seen[paper.ArxivID] = true
		papers = append(papers, *paper)
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Published.After(papers[j].Published)
	})

	log.Printf("Fetched %d papers from arXiv (%d entries, last %d days)", len(papers), len(feed.Items), daysBack)
	return papers, nil
}

// parseEntry converts one Atom entry into a Paper, or nil if the entry
// has no usable id or title.
func parseEntry(item *gofeed.Item) *Paper {
	id := ExtractID(item.GUID)
	if id == "" {
		id = ExtractID(item.Link)
	}
	if id == "" {
		return nil
	}

	title := normalizeSpace(item.Title)
	if title == "" {
		return nil
	}

	p := &Paper{
		ArxivID:    id,
		Title:      title,
		Abstract:   normalizeSpace(item.Description),
		Categories: item.Categories,
	}

	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}

	if item.PublishedParsed != nil {
		p.Published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		p.Published = *item.UpdatedParsed
	}

	return p
}

// buildCategoryQuery builds the search_query parameter, e.g.
// "cat:astro-ph.CO OR cat:astro-ph.GA".
func buildCategoryQuery(categories []string) string {
	parts := make([]string, 0, len(categories))
	for _, cat := range categories {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		parts = append(parts, "cat:"+cat)
	}
	return strings.Join(parts, " OR ")
}

// ExtractID pulls the arXiv id from an entry URL
// (e.g. "http://arxiv.org/abs/2301.07041v2" -> "2301.07041").
func ExtractID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip the version suffix ("v1", "v2", ...).
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// normalizeSpace collapses runs of whitespace (the arXiv feed wraps
// titles and abstracts with embedded newlines).
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
