// ABOUTME: Extractor turns a fetched page into a title, same-origin links and article records
// ABOUTME: HTML goes through per-site goquery rules; RSS, Atom and JSON feeds go through gofeed

package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"newswire-api/core/domain"
	"newswire-api/core/interfaces"
	"newswire-api/pkg/utils/html"
)

const (
	maxLinkTitleRunes   = 100
	maxSummaryRunes     = 200
	maxDescriptionRunes = 500

	defaultLinkSelector    = "a[href]"
	defaultArticleSelector = "article, .article, .news-item, .journal-article"
	headingSelector        = "h1, h2, h3, h4, .title, .headline, .article-title"
)

var summarySelectors = []string{".abstract", ".summary", ".excerpt", ".description", "p"}

// RuleResolver resolves the rule set for a page URL
type RuleResolver interface {
	RulesFor(pageURL string) domain.RuleSet
}

// Options tunes extraction
type Options struct {
	// MaxArticles caps the number of articles per page. 0 means unlimited.
	MaxArticles int

	// DisableReadability skips the readability pass used for missing descriptions
	DisableReadability bool
}

// Extractor implements interfaces.Extractor
type Extractor struct {
	rules  RuleResolver
	logger interfaces.Logger
	opts   Options
}

// NewExtractor creates an extractor
func NewExtractor(rules RuleResolver, logger interfaces.Logger, opts Options) *Extractor {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Extractor{rules: rules, logger: logger, opts: opts}
}

// Failed is the extraction reported when a page cannot be processed at all
func Failed() domain.Extraction {
	return domain.Extraction{
		Title:    domain.ExtractionFailedTitle,
		Links:    []domain.Link{},
		Articles: []domain.Article{},
	}
}

// Extract never panics. Per-item problems skip the item; a page-level
// failure yields Failed().
func (e *Extractor) Extract(payload, pageURL string) (out domain.Extraction) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Extraction panicked", map[string]interface{}{
				"url":   pageURL,
				"panic": fmt.Sprint(r),
			})
			out = Failed()
		}
	}()

	base, err := url.Parse(pageURL)
	if err != nil || base.Hostname() == "" {
		e.logger.Warn("Cannot extract from invalid URL", map[string]interface{}{"url": pageURL})
		return Failed()
	}

	if looksLikeFeed(payload) {
		ex, err := e.extractFeed(payload, base)
		if err == nil {
			return ex
		}
		e.logger.Debug("Feed parse failed, falling back to HTML", map[string]interface{}{
			"url":   pageURL,
			"error": err.Error(),
		})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		e.logger.Warn("Failed to parse HTML", map[string]interface{}{
			"url":   pageURL,
			"error": err.Error(),
		})
		return Failed()
	}

	rules := e.rules.RulesFor(pageURL)
	ex := domain.Extraction{
		Title:    pageTitle(doc, rules),
		Links:    e.links(doc, base, rules),
		Articles: e.articles(doc, base, rules),
	}
	ex.Description = e.description(doc, payload, base, rules)
	return ex
}

func pageTitle(doc *goquery.Document, rules domain.RuleSet) string {
	if rules.Title != "" {
		if t := firstText(doc.Selection, rules.Title); t != "" {
			return t
		}
	}
	if t := firstText(doc.Selection, "title"); t != "" {
		return t
	}
	return metaContent(doc, `meta[property="og:title"]`)
}

func (e *Extractor) links(doc *goquery.Document, base *url.URL, rules domain.RuleSet) []domain.Link {
	selector := rules.Links
	if selector == "" {
		selector = defaultLinkSelector
	}

	links := []domain.Link{}
	seen := make(map[string]bool)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		abs, ok := resolve(base, href)
		if !ok || !sameHost(base, abs) || seen[abs.String()] {
			return
		}
		seen[abs.String()] = true

		title := html.Clean(s.Text(), maxLinkTitleRunes)
		if title == "" {
			title = html.Clean(s.AttrOr("title", ""), maxLinkTitleRunes)
		}
		links = append(links, domain.Link{URL: abs.String(), Title: title})
	})
	return links
}

func (e *Extractor) articles(doc *goquery.Document, base *url.URL, rules domain.RuleSet) []domain.Article {
	selector := rules.Articles
	if selector == "" {
		selector = defaultArticleSelector
	}

	articles := []domain.Article{}
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if a, ok := e.article(s, base, rules, i); ok {
			articles = append(articles, a)
		}
		return e.opts.MaxArticles <= 0 || len(articles) < e.opts.MaxArticles
	})
	return articles
}

func (e *Extractor) article(s *goquery.Selection, base *url.URL, rules domain.RuleSet, index int) (a domain.Article, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Skipping article container", map[string]interface{}{
				"url":   base.String(),
				"index": index,
				"panic": fmt.Sprint(r),
			})
			ok = false
		}
	}()

	var titleEl *goquery.Selection
	if rules.Title != "" {
		titleEl = firstNonEmpty(s, rules.Title)
	}
	if titleEl == nil {
		titleEl = firstNonEmpty(s, headingSelector)
	}
	if titleEl == nil {
		return domain.Article{}, false
	}
	a.Title = html.NormalizeSpace(titleEl.Text())

	if href := articleHref(s, titleEl); href != "" {
		if abs, ok := resolve(base, href); ok {
			a.URL = abs.String()
		}
	}

	if rules.Date != "" {
		if d := s.Find(rules.Date).First(); d.Length() > 0 {
			if dt, ok := d.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
				a.Date = strings.TrimSpace(dt)
			} else {
				a.Date = html.NormalizeSpace(d.Text())
			}
		}
	}

	for _, sel := range summarySelectors {
		if t := firstText(s, sel); t != "" {
			a.Summary = html.Truncate(t, maxSummaryRunes)
			break
		}
	}
	return a, true
}

// articleHref picks the anchor enclosing the title, else the first anchor in
// the container, else the container itself when it is an anchor
func articleHref(container, titleEl *goquery.Selection) string {
	if href, ok := titleEl.Closest("a[href]").Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if href, ok := container.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if goquery.NodeName(container) == "a" {
		return strings.TrimSpace(container.AttrOr("href", ""))
	}
	return ""
}

func (e *Extractor) description(doc *goquery.Document, payload string, base *url.URL, rules domain.RuleSet) string {
	if rules.Description != "" {
		sel := doc.Find(rules.Description).First()
		if c, ok := sel.Attr("content"); ok && strings.TrimSpace(c) != "" {
			return html.Clean(c, maxDescriptionRunes)
		}
		if t := html.Clean(sel.Text(), maxDescriptionRunes); t != "" {
			return t
		}
	}
	if d := metaContent(doc, `meta[name="description"]`); d != "" {
		return html.Truncate(d, maxDescriptionRunes)
	}
	if d := metaContent(doc, `meta[property="og:description"]`); d != "" {
		return html.Truncate(d, maxDescriptionRunes)
	}
	if e.opts.DisableReadability {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(payload), base)
	if err != nil {
		e.logger.Debug("Readability found no description", map[string]interface{}{
			"url":   base.String(),
			"error": err.Error(),
		})
		return ""
	}
	return html.Clean(article.Excerpt, maxDescriptionRunes)
}

func firstNonEmpty(s *goquery.Selection, selector string) *goquery.Selection {
	var found *goquery.Selection
	s.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if html.NormalizeSpace(el.Text()) != "" {
			found = el
			return false
		}
		return true
	})
	return found
}

func firstText(s *goquery.Selection, selector string) string {
	if el := firstNonEmpty(s, selector); el != nil {
		return html.NormalizeSpace(el.Text())
	}
	return ""
}

func metaContent(doc *goquery.Document, selector string) string {
	return html.NormalizeSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func resolve(base *url.URL, href string) (*url.URL, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil, false
	}
	return abs, true
}

func sameHost(base, u *url.URL) bool {
	return strings.EqualFold(base.Hostname(), u.Hostname())
}
