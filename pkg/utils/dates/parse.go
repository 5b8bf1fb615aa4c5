// ABOUTME: Flexible date parsing for dates scraped from pages and feeds
// ABOUTME: Handles RFC formats, ISO dates and the long-form dates journals print

package dates

import (
	"strings"
	"time"
)

// Layouts seen on source pages and feeds, most specific first
var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
}

// Parse tries every known layout. The boolean is false when none matched.
func Parse(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Day renders s as YYYY-MM-DD when it parses, else returns it unchanged
func Day(s string) string {
	if t, ok := Parse(s); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}
