// ABOUTME: Text utilities for turning scraped HTML fragments into clean display strings
// ABOUTME: Whitespace normalization, rune-safe truncation and tag stripping

package html

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// NormalizeSpace collapses every run of whitespace to one space and trims the ends
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max runes. It never splits a multi-byte rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Clean normalizes whitespace and then truncates to max runes
func Clean(s string, max int) string {
	return Truncate(NormalizeSpace(s), max)
}

// StripHTML removes markup and decodes entities, returning normalized text.
// Script and style contents are dropped.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return NormalizeSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return NormalizeSpace(fragment)
	}
	doc.Find("script, style").Remove()
	return NormalizeSpace(doc.Text())
}
