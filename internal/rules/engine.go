// Package rules evaluates the per-record adjudication rules against
// fully enriched claim records. Every function is a pure decision over
// one record; batch-level aggregates were resolved during enrichment.
// Evaluation order matters: the claim decisions short-circuit on the
// month and denial-ratio gates before consulting any other flag.
package rules

import (
	"strings"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/taxonomy"
)

// Engine evaluates the adjudication rules.
type Engine struct {
	cfg      *model.RulesConfig
	resolver *taxonomy.Resolver
}

// NewEngine creates a rule engine over the given tables and resolver.
func NewEngine(cfg *model.Config, resolver *taxonomy.Resolver) *Engine {
	return &Engine{cfg: &cfg.Rules, resolver: resolver}
}

// Adjudicate fills the per-row verdict fields: the burden-ratio check,
// both claim decisions and the irregular-case flag. The batch-level
// subpart pass runs separately.
func (g *Engine) Adjudicate(rec *model.ClaimRecord) {
	correct, irregular := g.CheckBurdenRatio(rec)
	rec.Verdict.BRContract = correct
	rec.Verdict.IrregularBR = irregular
	rec.Verdict.Claim = g.GenerateClaim(rec)
	rec.Verdict.ClaimDPR = g.GenerateClaimDPR(rec)
	if irregular || rec.Features.RightMonth == 1 {
		rec.Verdict.IrregularCase = 1
	}
}

// CheckBurdenRatio verifies the charged burden ratio against the
// contract. Returns (0, _) when correct, (1, _) when incorrect; the
// second value flags the irregular HDEV5 case that is "correct" only
// because no rule covers it.
//
// A missing ratio or contract reference fails the comparison and marks
// the row incorrect. Only rows with no resolved class, or the LUFT
// class, pass unconditionally.
func (g *Engine) CheckBurdenRatio(rec *model.ClaimRecord) (int, bool) {
	// Excluded HDEV6 main parts skip the HDEV6 flags but must carry
	// exactly the fixed ratio.
	for _, part := range g.cfg.HDEV6ExcludedMains {
		if rec.CustomerPartNo == part {
			if rec.BurdenRatio != nil && *rec.BurdenRatio == g.cfg.HDEV6ExcludedRatio {
				return 0, false
			}
			return 1, false
		}
	}

	switch rec.EZKLName {
	case "HDEV5":
		return g.checkHDEV5(rec)
	case "LUFT":
		return 0, false
	case "":
		return 0, false
	}

	// Before the new ratio takes effect (or when no effective date is
	// contracted) the standard ratio applies, afterwards the current
	// one.
	reference := rec.CurrentBurdenRatio
	if rec.NewBRDate == nil ||
		(rec.ProcessingDate != nil && rec.ProcessingDate.Before(*rec.NewBRDate)) {
		reference = rec.StandardBurdenRatio
	}
	if rec.BurdenRatio == nil || reference == nil {
		return 1, false
	}
	if *rec.BurdenRatio == *reference {
		return 0, false
	}
	return 1, false
}

// checkHDEV5 handles the HDEV5 special cases, branching on the customer
// part number and the category text. Source cells sometimes pack
// several part numbers into one field, hence the substring matches.
func (g *Engine) checkHDEV5(rec *model.ClaimRecord) (int, bool) {
	for _, part := range g.cfg.HDEV5HybridParts {
		if !strings.Contains(rec.CustomerPartNo, part) {
			continue
		}
		if !strings.HasPrefix(rec.CustomerCategory, "H") {
			return ratioWithin(rec.BurdenRatio, 5, 6), false
		}
		if rec.ManufactureDate == nil {
			return 1, false
		}
		if rec.ManufactureDate.Before(g.cfg.HDEV5HybridSplit) {
			return ratioWithin(rec.BurdenRatio, 2.4, 3.4), false
		}
		return ratioWithin(rec.BurdenRatio, 49.5, 50.5), false
	}

	for _, part := range g.cfg.HDEV5FixedParts {
		if strings.Contains(rec.CustomerPartNo, part) {
			return ratioWithin(rec.BurdenRatio, 5, 6), false
		}
	}

	// No rule covers this HDEV5 part: pass it, but raise the irregular
	// flag for manual review. The ratio itself is not consulted here.
	return 0, true
}

// GenerateClaim is the main claim decision: 1 means the line should be
// objected. Wrong-month submissions and classes with an overwhelming
// denied-paid history auto-pass before any other flag is consulted.
func (g *Engine) GenerateClaim(rec *model.ClaimRecord) int {
	if rec.Features.RightMonth == 1 {
		return 0
	}
	if rec.Features.HighDeniedPaid == 1 {
		return 0
	}
	return g.claimFlags(rec)
}

// GenerateClaimDPR is the denial-ratio-aware variant: identical to
// GenerateClaim but without the high denied-paid-ratio gate.
func (g *Engine) GenerateClaimDPR(rec *model.ClaimRecord) int {
	if rec.Features.RightMonth == 1 {
		return 0
	}
	return g.claimFlags(rec)
}

func (g *Engine) claimFlags(rec *model.ClaimRecord) int {
	f := rec.Features
	if f.OutlierEZKL == 1 ||
		rec.Verdict.BRContract == 1 ||
		(f.OutsideWarranty != nil && *f.OutsideWarranty == 1) ||
		f.HDEV6Countermeasure == 1 ||
		f.HDEV6OverThreshold == 1 {
		return 1
	}
	return 0
}

// ratioWithin treats a missing ratio like a value outside the band.
func ratioWithin(ratio *float64, lo, hi float64) int {
	if ratio == nil || *ratio < lo || *ratio > hi {
		return 1
	}
	return 0
}
