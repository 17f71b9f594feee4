// Package lexical provides the name-matching primitive shared by every
// rule engine. All rule tables store lowercase name fragments; the matcher
// decides whether a fragment refers to a free-text drug or condition name.
package lexical

import (
	"strings"
)

// Matcher decides whether a table pattern refers to a free-text name.
// The rule engines take a Matcher so the matching strategy can be swapped
// in one place without touching any engine.
type Matcher interface {
	Match(pattern, name string) bool
}

// SubstringMatcher matches case-insensitively in both directions: the
// pattern may appear inside the name or the name inside the pattern.
// "metformin" matches "metformin hydrochloride" and vice versa.
type SubstringMatcher struct{}

// NewSubstringMatcher creates the default matcher
func NewSubstringMatcher() SubstringMatcher {
	return SubstringMatcher{}
}

// Match reports whether pattern and name refer to each other. Empty
// strings never match.
func (m SubstringMatcher) Match(pattern, name string) bool {
	p := Normalize(pattern)
	n := Normalize(name)
	if p == "" || n == "" {
		return false
	}
	return strings.Contains(n, p) || strings.Contains(p, n)
}

// MatchAny reports whether any of the patterns matches the name
func (m SubstringMatcher) MatchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if m.Match(p, name) {
			return true
		}
	}
	return false
}

// Normalize lowercases and trims a name for table lookups
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
