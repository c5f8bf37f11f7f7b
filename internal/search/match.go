// Package search holds the case-insensitive matching used to filter posts and
// journal entries.
package search

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	MaxTags   = 8
	MaxTagLen = 24
)

var (
	ErrTooManyTags = errors.New("too many tags")
	ErrTagTooLong  = errors.New("tag too long")
)

// fold applies Unicode full case folding (ς→σ, ſ→s, ß→ss). A Caser keeps
// state, so each call builds its own.
func fold(s string) string { return cases.Fold().String(s) }

// Terms splits a query into case-folded terms.
func Terms(query string) []string {
	fields := strings.Fields(query)
	for i, f := range fields {
		fields[i] = fold(f)
	}
	return fields
}

// Matches reports whether every term of query occurs in at least one of the
// fields. An empty query matches everything.
func Matches(query string, fields ...string) bool {
	return MatchesTerms(Terms(query), fields...)
}

// MatchesTerms is Matches for pre-split terms, for filtering many records with
// the same query.
func MatchesTerms(terms []string, fields ...string) bool {
	if len(terms) == 0 {
		return true
	}
	lowered := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			lowered = append(lowered, fold(f))
		}
	}
	for _, term := range terms {
		found := false
		for _, f := range lowered {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NormalizeTags splits a comma separated list, trims and lower-cases each tag,
// strips a leading '#', and drops empties and duplicates keeping first-seen order.
func NormalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(raw))
	for _, chunk := range raw {
		for _, t := range strings.Split(chunk, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			t = strings.TrimPrefix(t, "#")
			if t == "" {
				continue
			}
			if utf8.RuneCountInString(t) > MaxTagLen {
				return nil, ErrTagTooLong
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	if len(out) > MaxTags {
		return nil, ErrTooManyTags
	}
	return out, nil
}

// JoinTags is the storage form of a normalised tag list.
func JoinTags(tags []string) string { return strings.Join(tags, ",") }

// SplitTags is the inverse of JoinTags.
func SplitTags(stored string) []string {
	if stored == "" {
		return []string{}
	}
	return strings.Split(stored, ",")
}

// HasTag reports whether the stored tag list contains tag.
func HasTag(stored, tag string) bool {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return true
	}
	for _, t := range SplitTags(stored) {
		if t == tag {
			return true
		}
	}
	return false
}
