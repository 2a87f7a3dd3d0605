package taxonomy

import (
	gocache "github.com/patrickmn/go-cache"
)

// PrefixIndex maps part-number prefixes to the EZKL classes observed
// for them in a historical ledger, preserving encounter order so mode
// ties resolve deterministically. Mode results are memoized because the
// same prefix is re-asked for every row of the monthly batch.
type PrefixIndex struct {
	byPrefix map[string][]string
	modes    *gocache.Cache
}

// NewPrefixIndex creates an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{
		byPrefix: make(map[string][]string),
		modes:    gocache.New(gocache.NoExpiration, 0),
	}
}

// Add records one observed (prefix, EZKL) pair. Empty keys or values
// are ignored.
func (ix *PrefixIndex) Add(prefix, ezkl string) {
	if prefix == "" || ezkl == "" {
		return
	}
	ix.byPrefix[prefix] = append(ix.byPrefix[prefix], ezkl)
	ix.modes.Delete(prefix)
}

// Len returns the number of distinct prefixes.
func (ix *PrefixIndex) Len() int { return len(ix.byPrefix) }

// ModeEZKL returns the statistical mode of the EZKL classes observed
// for the prefix, ties broken by first-encountered value. Returns ""
// when the prefix was never observed.
func (ix *PrefixIndex) ModeEZKL(prefix string) string {
	if prefix == "" {
		return ""
	}
	if cached, ok := ix.modes.Get(prefix); ok {
		return cached.(string)
	}
	values := ix.byPrefix[prefix]
	if len(values) == 0 {
		return ""
	}
	counts := make(map[string]int, len(values))
	best := ""
	bestCount := 0
	for _, v := range values {
		counts[v]++
		// Strictly-greater keeps the first-encountered value on ties.
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	ix.modes.Set(prefix, best, gocache.NoExpiration)
	return best
}
