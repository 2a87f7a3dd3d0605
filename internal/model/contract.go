package model

import "time"

// BurdenContract maps one EZKL class to its contractual burden ratios.
// CurrentRatioText keeps the raw cell for classes whose current ratio is
// a textual override (e.g. a partial-50% clause) rather than a number.
type BurdenContract struct {
	EZKLName         string
	StandardRatio    *float64
	CurrentRatio     *float64
	CurrentRatioText string
	NewBRDate        *time.Time // effective date of the current ratio
}

// ContractTable is the burden-ratio contract table for one OEM.
type ContractTable struct {
	rows  []BurdenContract
	index map[string]int // EZKL name -> first row
}

// NewContractTable builds a table from contract rows. The first row per
// EZKL class wins, matching a left join on class name.
func NewContractTable(rows []BurdenContract) *ContractTable {
	t := &ContractTable{index: make(map[string]int, len(rows))}
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Append adds a contract row unless the class is already present.
func (t *ContractTable) Append(row BurdenContract) {
	if _, ok := t.index[row.EZKLName]; ok {
		return
	}
	t.index[row.EZKLName] = len(t.rows)
	t.rows = append(t.rows, row)
}

// Lookup returns the contract for an EZKL class.
func (t *ContractTable) Lookup(ezkl string) (BurdenContract, bool) {
	i, ok := t.index[ezkl]
	if !ok {
		return BurdenContract{}, false
	}
	return t.rows[i], true
}

// Len returns the number of contract rows.
func (t *ContractTable) Len() int { return len(t.rows) }

// Rows returns a copy of the contract rows.
func (t *ContractTable) Rows() []BurdenContract {
	out := make([]BurdenContract, len(t.rows))
	copy(out, t.rows)
	return out
}
