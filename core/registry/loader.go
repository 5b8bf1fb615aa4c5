package registry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"newswire-api/core/domain"
	"newswire-api/core/errors"
)

// File is the YAML layout of a sources file
type File struct {
	Sources []string        `yaml:"sources"`
	Generic *domain.RuleSet `yaml:"generic"`
	Rules   []FileRule      `yaml:"rules"`
	Owners  []FileOwner     `yaml:"owners"`
}

// FileRule binds a rule set to a hostname fragment and optional path prefix
type FileRule struct {
	Host           string `yaml:"host"`
	PathPrefix     string `yaml:"pathPrefix"`
	domain.RuleSet `yaml:",inline"`
}

// FileOwner maps a URL prefix to a publication name
type FileOwner struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// LoadFile reads a YAML sources file from disk
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, "failed to open sources file")
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML sources document
func Load(r io.Reader) (*Registry, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.WrapError(err, "failed to parse sources file")
	}
	return file.Build()
}

// Build validates the document and constructs a Registry
func (f File) Build() (*Registry, error) {
	if len(f.Sources) == 0 {
		return nil, &errors.ValidationError{Field: "sources", Message: "at least one source is required"}
	}

	generic := GenericRules
	if f.Generic != nil {
		generic = *f.Generic
		if generic.Name == "" {
			generic.Name = "generic"
		}
	}

	reg := New(generic)
	for _, s := range f.Sources {
		reg.AddSource(s)
	}
	for i, rule := range f.Rules {
		if rule.Host == "" {
			return nil, &errors.ValidationError{Field: fmt.Sprintf("rules[%d].host", i), Message: "cannot be empty"}
		}
		rs := rule.RuleSet
		if rs.Name == "" {
			rs.Name = rule.Host
		}
		if rule.PathPrefix != "" {
			reg.AddRule(PathPrefix(rule.Host, rule.PathPrefix), rs)
		} else {
			reg.AddRule(HostContains(rule.Host), rs)
		}
	}
	for _, o := range f.Owners {
		reg.AddOwner(o.URL, o.Name)
	}
	return reg, nil
}
