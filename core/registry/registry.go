// ABOUTME: Source registry holds the configured source URLs, extraction rules and owner names
// ABOUTME: Domain rules are an ordered list of matcher/rule pairs where the first match wins

package registry

import (
	"net/url"
	"strings"

	"newswire-api/core/domain"
)

// UnknownOwner is reported for URLs that cannot be parsed
const UnknownOwner = "Unknown Source"

// Matcher decides whether a rule set applies to a parsed page URL
type Matcher func(u *url.URL) bool

// HostContains matches when the page hostname contains fragment
func HostContains(fragment string) Matcher {
	fragment = strings.ToLower(fragment)
	return func(u *url.URL) bool {
		return strings.Contains(strings.ToLower(u.Hostname()), fragment)
	}
}

// PathPrefix matches a hostname and a path prefix, e.g. nature.com + /nm/
func PathPrefix(host, prefix string) Matcher {
	host = strings.ToLower(host)
	return func(u *url.URL) bool {
		return strings.Contains(strings.ToLower(u.Hostname()), host) && strings.HasPrefix(u.Path, prefix)
	}
}

type domainRule struct {
	match Matcher
	rules domain.RuleSet
}

type owner struct {
	url  string
	host string
	name string
}

// Registry is immutable once built and safe for concurrent reads
type Registry struct {
	sources []string
	generic domain.RuleSet
	rules   []domainRule
	owners  []owner
}

// New creates an empty registry using generic as the fallback rule set
func New(generic domain.RuleSet) *Registry {
	return &Registry{generic: generic}
}

// AddSource appends a source URL. Duplicates are ignored.
func (r *Registry) AddSource(rawURL string) *Registry {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return r
	}
	for _, s := range r.sources {
		if s == rawURL {
			return r
		}
	}
	r.sources = append(r.sources, rawURL)
	return r
}

// AddRule registers a domain rule set. Rules are evaluated in registration order.
func (r *Registry) AddRule(match Matcher, rules domain.RuleSet) *Registry {
	r.rules = append(r.rules, domainRule{match: match, rules: rules})
	return r
}

// AddOwner maps a URL (and, as a fallback, its hostname) to a display name
func (r *Registry) AddOwner(rawURL, name string) *Registry {
	if rawURL == "" || name == "" {
		return r
	}
	o := owner{url: rawURL, name: name}
	if u, err := url.Parse(rawURL); err == nil {
		o.host = strings.ToLower(u.Hostname())
	}
	r.owners = append(r.owners, o)
	return r
}

// Sources returns a copy of the configured source URLs in registration order
func (r *Registry) Sources() []string {
	out := make([]string, len(r.sources))
	copy(out, r.sources)
	return out
}

// Generic returns the fallback rule set
func (r *Registry) Generic() domain.RuleSet {
	return r.generic
}

// RulesFor resolves the rule set for pageURL: first matching domain rule, else generic
func (r *Registry) RulesFor(pageURL string) domain.RuleSet {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return r.generic
	}
	for _, dr := range r.rules {
		if dr.match(u) {
			return dr.rules
		}
	}
	return r.generic
}

// Owner resolves the display name of the publication behind pageURL.
//
// Precedence: registered URL equal to or prefixing pageURL, exact hostname,
// hostname without "www.", partial hostname containment, then the bare hostname.
// Containment compares the full request hostname against each registered
// hostname in both its "www." and bare forms, in either direction.
func (r *Registry) Owner(pageURL string) string {
	for _, o := range r.owners {
		if pageURL == o.url || strings.HasPrefix(pageURL, o.url) {
			return o.name
		}
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return UnknownOwner
	}
	host := strings.ToLower(u.Hostname())
	bare := strings.TrimPrefix(host, "www.")

	for _, o := range r.owners {
		if o.host == host {
			return o.name
		}
	}
	for _, o := range r.owners {
		if o.host != "" && strings.TrimPrefix(o.host, "www.") == bare {
			return o.name
		}
	}
	for _, o := range r.owners {
		if o.host == "" {
			continue
		}
		for _, d := range []string{o.host, strings.TrimPrefix(o.host, "www.")} {
			if strings.Contains(host, d) || strings.Contains(d, host) {
				return o.name
			}
		}
	}
	return host
}

// Source resolves the rules and owner for a single URL
func (r *Registry) Source(pageURL string) domain.Source {
	return domain.Source{
		URL:   pageURL,
		Rules: r.RulesFor(pageURL),
		Owner: r.Owner(pageURL),
	}
}
