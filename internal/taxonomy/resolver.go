// Package taxonomy resolves part identifiers and free-text part names
// to canonical part groups and EZKL classes.
package taxonomy

import (
	"sort"
	"strings"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
)

// Resolver classifies part numbers and part names using the static
// rule tables. It is immutable after construction.
type Resolver struct {
	patterns  []prefixPattern
	synonyms  map[string]string
	threshold int
}

type prefixPattern struct {
	prefix string
	group  string
}

// NewResolver builds a resolver from the rule tables. Prefix patterns
// are sorted longest-first so the most specific prefix always wins,
// regardless of declaration order.
func NewResolver(cfg *model.RulesConfig) *Resolver {
	patterns := make([]prefixPattern, 0, len(cfg.PartGroupPatterns))
	for prefix, group := range cfg.PartGroupPatterns {
		patterns = append(patterns, prefixPattern{prefix: prefix, group: group})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i].prefix) != len(patterns[j].prefix) {
			return len(patterns[i].prefix) > len(patterns[j].prefix)
		}
		return patterns[i].prefix < patterns[j].prefix
	})

	synonyms := make(map[string]string, len(cfg.ExpectedGroupSynonyms))
	for k, v := range cfg.ExpectedGroupSynonyms {
		synonyms[strings.ToLower(k)] = v
	}

	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = 90
	}

	return &Resolver{
		patterns:  patterns,
		synonyms:  synonyms,
		threshold: threshold,
	}
}

// ResolveGroup maps a part number to its named group by longest-prefix
// match, or "Unknown" when no prefix matches.
func (r *Resolver) ResolveGroup(partNumber string) string {
	for _, p := range r.patterns {
		if strings.HasPrefix(partNumber, p.prefix) {
			return p.group
		}
	}
	return "Unknown"
}

// NormalizeExpectedLabel canonicalizes a free-text part name: lowercase
// and trim, truncate at the first ";", "," or ":" (checked in that
// priority order), then map through the synonym table. Empty input
// yields "unassigned".
func (r *Resolver) NormalizeExpectedLabel(raw string) string {
	val := strings.ToLower(strings.TrimSpace(raw))
	if val == "" {
		return "unassigned"
	}
	for _, delim := range []string{";", ",", ":"} {
		if i := strings.Index(val, delim); i >= 0 {
			val = strings.TrimSpace(val[:i])
			break
		}
	}
	if canonical, ok := r.synonyms[val]; ok {
		return canonical
	}
	return val
}

// Similar reports whether two labels match under the resolver's fuzzy
// similarity threshold.
func (r *Resolver) Similar(a, b string) bool {
	return Similar(a, b, r.threshold)
}
