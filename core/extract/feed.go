package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newswire-api/core/domain"
	"newswire-api/pkg/utils/html"
)

// looksLikeFeed reports whether payload is an RSS, Atom or JSON feed
func looksLikeFeed(payload string) bool {
	trimmed := strings.TrimLeft(payload, " \t\r\n\ufeff")
	if !strings.HasPrefix(trimmed, "<") && !strings.HasPrefix(trimmed, "{") {
		return false
	}
	return gofeed.DetectFeedType(strings.NewReader(trimmed)) != gofeed.FeedTypeUnknown
}

// extractFeed maps feed items onto articles and same-origin links
func (e *Extractor) extractFeed(payload string, base *url.URL) (domain.Extraction, error) {
	feed, err := gofeed.NewParser().ParseString(payload)
	if err != nil {
		return domain.Extraction{}, err
	}

	ex := domain.Extraction{
		Title:       html.NormalizeSpace(feed.Title),
		Description: html.Truncate(html.StripHTML(feed.Description), maxDescriptionRunes),
		Links:       []domain.Link{},
		Articles:    []domain.Article{},
	}

	seen := make(map[string]bool)
	for _, item := range feed.Items {
		if e.opts.MaxArticles > 0 && len(ex.Articles) >= e.opts.MaxArticles {
			break
		}
		if item == nil {
			continue
		}
		title := html.StripHTML(item.Title)
		if title == "" {
			continue
		}

		a := domain.Article{Title: title, Date: itemDate(item)}
		if abs, ok := resolve(base, strings.TrimSpace(item.Link)); ok && item.Link != "" {
			a.URL = abs.String()
			if sameHost(base, abs) && !seen[a.URL] {
				seen[a.URL] = true
				ex.Links = append(ex.Links, domain.Link{URL: a.URL, Title: html.Truncate(title, maxLinkTitleRunes)})
			}
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		a.Summary = html.Truncate(html.StripHTML(summary), maxSummaryRunes)
		ex.Articles = append(ex.Articles, a)
	}
	return ex, nil
}

func itemDate(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	case item.Published != "":
		return strings.TrimSpace(item.Published)
	default:
		return strings.TrimSpace(item.Updated)
	}
}
