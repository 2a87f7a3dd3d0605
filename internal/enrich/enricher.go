// Package enrich joins an incoming claim batch against the reconciled
// ledger, the burden-ratio contract table and the part taxonomy, then
// computes the derived features the rule engine consumes. After
// enrichment every record is a self-contained input for rule
// evaluation; no rule needs to look at another row.
package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/ledger"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/normalize"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/taxonomy"
)

// Enricher fills missing claim fields and derives per-row features.
type Enricher struct {
	cfg *model.RulesConfig
	log *log.Logger
}

// NewEnricher creates an enricher over the given rule tables.
func NewEnricher(cfg *model.Config, logger *log.Logger) *Enricher {
	return &Enricher{cfg: &cfg.Rules, log: logger}
}

// Input bundles everything one enrichment pass needs.
type Input struct {
	Batch     []model.ClaimRecord
	Ledger    *ledger.Result
	CrossOEM  *taxonomy.PrefixIndex // full cross-OEM index for the fallback lookup
	Contracts *model.ContractTable
	BatchDate time.Time
}

// Enrich runs the full enrichment pass and returns the enriched batch
// together with the per-EZKL batch statistics.
func (e *Enricher) Enrich(in Input) ([]model.ClaimRecord, model.BatchStats, error) {
	if in.Ledger == nil || in.Contracts == nil {
		return nil, model.BatchStats{}, fmt.Errorf("enrich: ledger and contracts are required")
	}
	if in.BatchDate.IsZero() {
		return nil, model.BatchStats{}, fmt.Errorf("enrich: batch date is required")
	}

	batch := e.filter(in.Batch)

	for i := range batch {
		rec := &batch[i]
		rec.ObjectionID = model.ObjectionIDFrom(rec.ReferenceNo)
		rec.PartPrefix = model.PrefixFrom(rec.SupplierPartNo, e.cfg.PrefixLength)
		rec.PartName = strings.ToLower(rec.PartName)

		e.resolveEZKL(rec, in.Ledger.Index)
		e.joinContract(rec, in.Contracts)
		e.fillManufactureDate(rec, in.Ledger.Stats)
		e.applySpecialHDEV6Part(rec, in.Contracts)
	}

	unresolved := e.fallbackEZKL(batch, in.CrossOEM)
	e.log.Info("EZKL resolution finished",
		"rows", len(batch), "unresolved", unresolved)

	// Snapshot the fully resolved class; the hybrid label builds on it.
	for i := range batch {
		batch[i].OriginalEZKL = batch[i].EZKLName
	}

	stats := batchStats(batch)
	for i := range batch {
		e.deriveFeatures(&batch[i], in.Ledger.Stats, stats, in.BatchDate)
	}

	return batch, stats, nil
}

// filter keeps only rows from the allow-listed organizational divisions
// and drops the recall/administrative part-name lines, mirroring the
// ledger-side exclusions.
func (e *Enricher) filter(batch []model.ClaimRecord) []model.ClaimRecord {
	allowed := make(map[string]bool, len(e.cfg.Divisions))
	for _, d := range e.cfg.Divisions {
		allowed[d] = true
	}
	excluded := make(map[string]bool, len(e.cfg.PartNameExclusions))
	for _, n := range e.cfg.PartNameExclusions {
		excluded[strings.ToLower(n)] = true
	}

	out := make([]model.ClaimRecord, 0, len(batch))
	for _, rec := range batch {
		if !allowed[rec.Division] {
			continue
		}
		if excluded[strings.ToLower(strings.TrimSpace(rec.PartName))] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// resolveEZKL resolves the primary EZKL class from the OEM-scoped
// reconciled ledger, with the control-unit name fallback.
func (e *Enricher) resolveEZKL(rec *model.ClaimRecord, index *taxonomy.PrefixIndex) {
	rec.EZKLName = index.ModeEZKL(rec.PartPrefix)
	if rec.EZKLName == "" && strings.Contains(rec.PartName, "control unit") {
		rec.EZKLName = e.cfg.ControlUnitEZKL
	}
}

// joinContract copies the burden-ratio contract fields for the resolved
// class. Rows resolved later keep nil contract fields and fail the
// burden check, except the special HDEV6 part which copies its fields
// explicitly.
func (e *Enricher) joinContract(rec *model.ClaimRecord, contracts *model.ContractTable) {
	if rec.EZKLName == "" {
		return
	}
	c, ok := contracts.Lookup(rec.EZKLName)
	if !ok {
		return
	}
	rec.StandardBurdenRatio = c.StandardRatio
	rec.CurrentBurdenRatio = c.CurrentRatio
	rec.NewBRDate = c.NewBRDate
}

// fillManufactureDate applies the two-step backfill: registration-date
// year first, then failure date minus the ledger-wide mean lag.
func (e *Enricher) fillManufactureDate(rec *model.ClaimRecord, stats model.LedgerStats) {
	if rec.ManufactureDate != nil {
		return
	}
	if rec.RegistrationDate != nil {
		d := time.Date(rec.RegistrationDate.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		rec.ManufactureDate = &d
		return
	}
	if rec.FailureDate != nil && stats.HasRegToFailureLag {
		raw := rec.FailureDate.Add(-stats.RegToFailureLag)
		// Normalize the approximation the same way a raw cell would be.
		d := normalize.VehicleManufactureDate(raw.Format("2006-01-02"))
		rec.ManufactureDate = d
	}
}

// applySpecialHDEV6Part force-assigns the known new HDEV6 customer part
// that pre-dates its ledger history, copying the HDEV6 contract fields.
func (e *Enricher) applySpecialHDEV6Part(rec *model.ClaimRecord, contracts *model.ContractTable) {
	if rec.EZKLName != "" || rec.CustomerPartNo != e.cfg.SpecialHDEV6Part {
		return
	}
	rec.EZKLName = "HDEV6"
	if c, ok := contracts.Lookup("HDEV6"); ok {
		rec.StandardBurdenRatio = c.StandardRatio
		rec.CurrentBurdenRatio = c.CurrentRatio
		rec.NewBRDate = c.NewBRDate
	}
}

// fallbackEZKL resolves still-missing classes against the full
// cross-OEM index, keyed by the canonicalized part-number prefix. This
// deliberately searches beyond the target OEM: sibling OEMs often share
// supplier part families the OEM-scoped ledger has never seen.
// Returns the count of rows left unresolved.
func (e *Enricher) fallbackEZKL(batch []model.ClaimRecord, crossOEM *taxonomy.PrefixIndex) int {
	unresolved := 0
	for i := range batch {
		rec := &batch[i]
		if rec.EZKLName != "" {
			continue
		}
		if crossOEM != nil {
			if pn := normalize.AlnumPartNumber(rec.SupplierPartNo); pn != nil {
				rec.EZKLName = crossOEM.ModeEZKL(model.PrefixFrom(*pn, e.cfg.PrefixLength))
			}
		}
		if rec.EZKLName == "" {
			unresolved++
		}
	}
	return unresolved
}

// batchStats computes the per-EZKL amount statistics and group counts
// over the current batch.
func batchStats(batch []model.ClaimRecord) model.BatchStats {
	amounts := make(map[string][]float64)
	counts := make(map[string]int)
	for _, rec := range batch {
		amounts[rec.EZKLName] = append(amounts[rec.EZKLName], rec.ClaimedAmount)
		counts[rec.EZKLName]++
	}
	byEZKL := make(map[string]model.AmountStats, len(amounts))
	for ezkl, a := range amounts {
		byEZKL[ezkl] = model.ComputeAmountStats(a)
	}
	return model.BatchStats{ByEZKL: byEZKL, Counts: counts}
}
