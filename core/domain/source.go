// ABOUTME: Source and extraction rule domain models
// ABOUTME: A rule set names the selectors used to pull fields out of a page

package domain

// RuleSet is a named bundle of selectors for one site or the generic fallback.
// An empty selector means "use the built-in default for that field".
type RuleSet struct {
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title,omitempty" yaml:"title"`
	Links       string `json:"links,omitempty" yaml:"links"`
	Articles    string `json:"articles,omitempty" yaml:"articles"`
	Date        string `json:"date,omitempty" yaml:"date"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Source is a configured source URL with its resolved rules and owner
type Source struct {
	URL   string
	Rules RuleSet
	Owner string
}

// Extraction holds the structured fields extracted from one page
type Extraction struct {
	Title       string
	Description string
	Links       []Link
	Articles    []Article
}
