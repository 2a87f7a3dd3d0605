package enrich

import "github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"

// PrepareContracts builds the contract table used for the equality
// burden check. Class-specific override rows are dropped first: the LS
// class at its superseded ratio, and HDEV5 rows that do not carry the
// textual partial-50% clause (HDEV5 is adjudicated by its own rule
// branch, never by ratio equality). A contract row for the control-unit
// ledger class is ensured so historical control-unit rows always join.
func PrepareContracts(rows []model.BurdenContract, cfg *model.RulesConfig) *model.ContractTable {
	kept := make([]model.BurdenContract, 0, len(rows))
	for _, row := range rows {
		if row.EZKLName == "LS" && row.CurrentRatio != nil &&
			*row.CurrentRatio == cfg.LSExcludedRatio {
			continue
		}
		if row.EZKLName == "HDEV5" && row.CurrentRatioText != cfg.HDEV5RatioMarker {
			continue
		}
		kept = append(kept, row)
	}

	table := model.NewContractTable(kept)
	if cfg.ControlUnitLedgerClass != "" {
		ratio := cfg.ControlUnitRatio
		since := cfg.ControlUnitSince
		table.Append(model.BurdenContract{
			EZKLName:      cfg.ControlUnitLedgerClass,
			StandardRatio: &ratio,
			CurrentRatio:  &ratio,
			NewBRDate:     &since,
		})
	}
	return table
}
