package rules

import (
	"strings"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
)

// SubpartConsistency runs the batch-level subpart check. For every
// subpart line the declared part name (normalized to its expected
// group) is fuzzy-compared against the group computed from the customer
// part number; a mismatch marks the line "To object?". Main-part lines
// sharing a reference identifier with a flagged subpart are flagged
// too, even when their own comparison would pass. Everything else
// defaults to "OK".
func (g *Engine) SubpartConsistency(batch []model.ClaimRecord) {
	flaggedRefs := make(map[string]bool)

	for i := range batch {
		rec := &batch[i]
		if rec.PartsDistinction != model.DistinctionSubpart {
			continue
		}
		expected := g.resolver.NormalizeExpectedLabel(rec.PartName)
		computed := strings.ToLower(g.resolver.ResolveGroup(strings.TrimSpace(rec.CustomerPartNo)))
		if g.resolver.Similar(expected, computed) {
			rec.Verdict.Subpart = model.SubpartOK
		} else {
			rec.Verdict.Subpart = model.SubpartObject
			flaggedRefs[rec.ReferenceNo] = true
		}
	}

	for i := range batch {
		rec := &batch[i]
		if rec.PartsDistinction == model.DistinctionMainPart && flaggedRefs[rec.ReferenceNo] {
			rec.Verdict.Subpart = model.SubpartObject
			continue
		}
		if rec.Verdict.Subpart == "" {
			rec.Verdict.Subpart = model.SubpartOK
		}
	}
}
