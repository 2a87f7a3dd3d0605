// Package ledger builds the canonical historical reference ledger for
// one OEM from the full cross-OEM claim ledger: filtering, conflicting
// status deduplication, aggregate statistics and manufacture-date
// backfill.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/normalize"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/taxonomy"
)

// Reconciler filters and deduplicates the historical ledger for a
// target OEM and derives the aggregate statistics consumed by
// enrichment.
type Reconciler struct {
	oem string
	cfg *model.RulesConfig
	log *log.Logger
}

// NewReconciler creates a reconciler for the configured OEM.
func NewReconciler(cfg *model.Config, logger *log.Logger) *Reconciler {
	return &Reconciler{
		oem: cfg.OEM,
		cfg: &cfg.Rules,
		log: logger,
	}
}

// Result is the reconciliation output: the surviving entries, the
// aggregates, the OEM-scoped prefix index for primary EZKL resolution
// and a count of invariant violations left after deduplication.
type Result struct {
	Entries []model.LedgerEntry
	Stats   model.LedgerStats
	Index   *taxonomy.PrefixIndex
	// Anomalies counts objection identifiers that still resolve to more
	// than one surviving entry. These are data-quality defects in the
	// source ledger; they are reported, never silently merged.
	Anomalies int
}

// Reconcile builds the reference ledger for one monthly run. batchDate
// is the current claim-batch date; ledger rows processed on or after it
// are excluded so the current month can not contaminate its own
// statistics.
func (r *Reconciler) Reconcile(all []model.LedgerEntry, batchDate time.Time) (*Result, error) {
	if batchDate.IsZero() {
		return nil, fmt.Errorf("reconcile: batch date is required")
	}

	entries := r.filter(all, batchDate)
	entries = r.dedupe(entries)

	stats := r.computeStats(entries)
	backfillManufactureDates(entries, stats)

	index := taxonomy.NewPrefixIndex()
	for _, e := range entries {
		index.Add(e.PartPrefix, e.EZKLName)
	}

	anomalies := countMultiMapped(entries)
	if anomalies > 0 {
		r.log.Warn("objection identifiers still multi-mapped after dedup",
			"count", anomalies)
	}
	r.log.Info("ledger reconciled",
		"oem", r.oem, "in", len(all), "out", len(entries),
		"prefixes", index.Len())

	return &Result{
		Entries:   entries,
		Stats:     stats,
		Index:     index,
		Anomalies: anomalies,
	}, nil
}

// filter applies the OEM scope, sentinel-key exclusion, processing-date
// window, derived identifiers, part-name/superseded-class exclusions
// and the EZKL replacement table.
func (r *Reconciler) filter(all []model.LedgerEntry, batchDate time.Time) []model.LedgerEntry {
	excluded := make(map[string]bool, len(r.cfg.PartNameExclusions))
	for _, name := range r.cfg.PartNameExclusions {
		excluded[strings.ToLower(name)] = true
	}

	out := make([]model.LedgerEntry, 0, len(all))
	for _, e := range all {
		if e.OEMName != r.oem {
			continue
		}
		if e.KeyNo == r.cfg.SentinelKey {
			continue
		}
		if e.ProcessingDate == nil {
			continue
		}
		if e.ProcessingDate.Before(r.cfg.LedgerCutoff) {
			continue
		}
		if !e.ProcessingDate.Before(batchDate) {
			continue
		}
		if excluded[strings.ToLower(strings.TrimSpace(e.PartName))] {
			continue
		}
		if r.cfg.SupersededEZKLMarker != "" &&
			strings.Contains(e.EZKLName, r.cfg.SupersededEZKLMarker) {
			continue
		}

		e.ObjectionID = model.ObjectionIDFrom(e.ReferenceNo)
		e.PartPrefix = model.PrefixFrom(e.SupplierPartNo, r.cfg.PrefixLength)
		if replacement, ok := r.cfg.EZKLReplacements[e.EZKLName]; ok {
			e.EZKLName = replacement
		}
		if r.cfg.ControlUnitLedgerClass != "" &&
			strings.Contains(strings.ToLower(e.PartName), "control unit") {
			e.EZKLName = r.cfg.ControlUnitLedgerClass
		}
		out = append(out, e)
	}
	return out
}

// dedupe resolves duplicated objection entries in two passes. First,
// objection identifiers occurring exactly twice with two distinct
// effective statuses keep only the earliest-processed entry (the later
// one is a re-submission of an already-settled dispute). Second, per
// (objection id, claimed amount) only the latest-processed entry
// survives.
func (r *Reconciler) dedupe(entries []model.LedgerEntry) []model.LedgerEntry {
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		counts[e.ObjectionID]++
	}

	// Effective status: the recorded outcome, or a unique per-row
	// marker, so a re-submission without an outcome still counts as
	// conflicting with its sibling.
	statusKeys := make(map[string]map[string]bool)
	for i, e := range entries {
		if counts[e.ObjectionID] != 2 {
			continue
		}
		key := string(e.Status)
		if key == "" {
			key = fmt.Sprintf("row:%d", i)
		}
		if statusKeys[e.ObjectionID] == nil {
			statusKeys[e.ObjectionID] = make(map[string]bool, 2)
		}
		statusKeys[e.ObjectionID][key] = true
	}

	earliest := make(map[string]time.Time)
	for _, e := range entries {
		if len(statusKeys[e.ObjectionID]) != 2 {
			continue
		}
		cur, ok := earliest[e.ObjectionID]
		if !ok || e.ProcessingDate.Before(cur) {
			earliest[e.ObjectionID] = *e.ProcessingDate
		}
	}

	pass1 := entries[:0]
	for _, e := range entries {
		if first, ok := earliest[e.ObjectionID]; ok && e.ProcessingDate.After(first) {
			continue
		}
		pass1 = append(pass1, e)
	}

	// Final dedupe: latest processing date wins per (objection id,
	// claimed amount). Stable sort keeps input order between equals.
	sort.SliceStable(pass1, func(i, j int) bool {
		a, b := pass1[i], pass1[j]
		if a.ObjectionID != b.ObjectionID {
			return a.ObjectionID < b.ObjectionID
		}
		if a.ClaimedAmount != b.ClaimedAmount {
			return a.ClaimedAmount < b.ClaimedAmount
		}
		return a.ProcessingDate.Before(*b.ProcessingDate)
	})

	type dedupeKey struct {
		objectionID string
		amount      float64
	}
	out := make([]model.LedgerEntry, 0, len(pass1))
	for i, e := range pass1 {
		key := dedupeKey{e.ObjectionID, e.ClaimedAmount}
		if i+1 < len(pass1) {
			next := pass1[i+1]
			if (dedupeKey{next.ObjectionID, next.ClaimedAmount}) == key {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// computeStats derives the global and per-segment amount statistics,
// the per-EZKL denial ratios and the mean registration-to-failure lag.
func (r *Reconciler) computeStats(entries []model.LedgerEntry) model.LedgerStats {
	var global, domestic, overseas []float64
	denied := make(map[string]model.DeniedRatio)

	var regSum, failSum int64
	var regN, failN int

	for _, e := range entries {
		global = append(global, e.ClaimedAmount)
		switch e.Segment {
		case model.SegmentDomestic:
			domestic = append(domestic, e.ClaimedAmount)
		case model.SegmentOverseas:
			overseas = append(overseas, e.ClaimedAmount)
		}

		switch e.Status {
		case model.StatusAccepted:
			d := denied[e.EZKLName]
			d.Denied++
			denied[e.EZKLName] = d
		case model.StatusRejected:
			d := denied[e.EZKLName]
			d.DeniedPaid++
			denied[e.EZKLName] = d
		}

		if e.RegistrationDate != nil {
			regSum += e.RegistrationDate.Unix()
			regN++
		}
		if e.FailureDate != nil {
			failSum += e.FailureDate.Unix()
			failN++
		}
	}

	stats := model.LedgerStats{
		Amount:       model.ComputeAmountStats(global),
		Domestic:     model.ComputeAmountStats(domestic),
		Overseas:     model.ComputeAmountStats(overseas),
		DeniedByEZKL: denied,
	}
	if regN > 0 && failN > 0 {
		meanReg := regSum / int64(regN)
		meanFail := failSum / int64(failN)
		stats.RegToFailureLag = time.Duration(meanFail-meanReg) * time.Second
		stats.HasRegToFailureLag = true
	}
	return stats
}

// backfillManufactureDates fills missing manufacture dates from the
// registration date when present, else approximates failure date minus
// the ledger-wide mean registration-to-failure lag.
func backfillManufactureDates(entries []model.LedgerEntry, stats model.LedgerStats) {
	for i := range entries {
		e := &entries[i]
		if e.ManufactureDate != nil {
			continue
		}
		if e.RegistrationDate != nil {
			d := *e.RegistrationDate
			e.ManufactureDate = &d
			continue
		}
		if e.FailureDate != nil && stats.HasRegToFailureLag {
			d := e.FailureDate.Add(-stats.RegToFailureLag)
			e.ManufactureDate = &d
		}
	}
}

func countMultiMapped(entries []model.LedgerEntry) int {
	perID := make(map[string]int, len(entries))
	for _, e := range entries {
		perID[e.ObjectionID]++
	}
	anomalies := 0
	for _, n := range perID {
		if n > 1 {
			anomalies++
		}
	}
	return anomalies
}

// BuildCrossOEMIndex builds the prefix index over the entire unfiltered
// ledger, used as the last-resort EZKL lookup. Part numbers are
// canonicalized before taking the prefix because cross-OEM rows carry
// export artifacts.
func BuildCrossOEMIndex(all []model.LedgerEntry, prefixLen int) *taxonomy.PrefixIndex {
	index := taxonomy.NewPrefixIndex()
	for _, e := range all {
		pn := normalize.PartNumber(e.SupplierPartNo)
		if pn == nil {
			continue
		}
		index.Add(model.PrefixFrom(*pn, prefixLen), e.EZKLName)
	}
	return index
}
