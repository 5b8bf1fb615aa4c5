package extract

import (
	"testing"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Public Health News</title>
  <description>&lt;p&gt;Weekly &lt;b&gt;digest&lt;/b&gt;&lt;/p&gt;</description>
  <link>https://journal.example.org/</link>
  <item>
    <title>Vaccine update</title>
    <link>https://journal.example.org/articles/1</link>
    <pubDate>Mon, 05 Oct 2026 10:00:00 GMT</pubDate>
    <description>&lt;p&gt;New &lt;em&gt;guidance&lt;/em&gt; published.&lt;/p&gt;</description>
  </item>
  <item>
    <title>Partner story</title>
    <link>https://partner.example.net/story</link>
  </item>
  <item>
    <title></title>
    <link>https://journal.example.org/articles/untitled</link>
  </item>
</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Journal</title>
  <entry>
    <title>Entry one</title>
    <link href="/entries/1"/>
    <updated>2026-10-06T12:00:00Z</updated>
    <summary>Entry summary</summary>
  </entry>
</feed>`

func TestLooksLikeFeed(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected bool
	}{
		{"rss", rssFeed, true},
		{"atom", atomFeed, true},
		{"json feed", `{"version":"https://jsonfeed.org/version/1.1","title":"x","items":[]}`, true},
		{"html", genericPage, false},
		{"plain text", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeFeed(tt.payload); got != tt.expected {
				t.Errorf("looksLikeFeed() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExtractor_Extract_RSS(t *testing.T) {
	e := newGenericExtractor(Options{})

	ex := e.Extract(rssFeed, "https://journal.example.org/rss.xml")

	if ex.Title != "Public Health News" {
		t.Errorf("Title = %q", ex.Title)
	}
	if ex.Description != "Weekly digest" {
		t.Errorf("Description = %q, want stripped HTML", ex.Description)
	}
	if len(ex.Articles) != 2 {
		t.Fatalf("len(Articles) = %d, want 2 (untitled item dropped)", len(ex.Articles))
	}

	a := ex.Articles[0]
	if a.Title != "Vaccine update" || a.URL != "https://journal.example.org/articles/1" {
		t.Errorf("Articles[0] = %+v", a)
	}
	if a.Date != "2026-10-05T10:00:00Z" {
		t.Errorf("Articles[0].Date = %q", a.Date)
	}
	if a.Summary != "New guidance published." {
		t.Errorf("Articles[0].Summary = %q", a.Summary)
	}

	if len(ex.Links) != 1 || ex.Links[0].URL != "https://journal.example.org/articles/1" {
		t.Errorf("Links = %+v, want only the same-origin item", ex.Links)
	}
}

func TestExtractor_Extract_Atom(t *testing.T) {
	e := newGenericExtractor(Options{})

	ex := e.Extract(atomFeed, "https://atom.example.com/feed")

	if ex.Title != "Atom Journal" {
		t.Errorf("Title = %q", ex.Title)
	}
	if len(ex.Articles) != 1 {
		t.Fatalf("len(Articles) = %d, want 1", len(ex.Articles))
	}
	if ex.Articles[0].URL != "https://atom.example.com/entries/1" {
		t.Errorf("URL = %q, want relative link resolved", ex.Articles[0].URL)
	}
	if ex.Articles[0].Date != "2026-10-06T12:00:00Z" {
		t.Errorf("Date = %q", ex.Articles[0].Date)
	}
}

func TestExtractor_Extract_FeedMaxArticles(t *testing.T) {
	e := newGenericExtractor(Options{MaxArticles: 1})

	ex := e.Extract(rssFeed, "https://journal.example.org/rss.xml")

	if len(ex.Articles) != 1 {
		t.Errorf("len(Articles) = %d, want 1", len(ex.Articles))
	}
}
