package dataset

import (
	"sort"
	"strconv"
)

// MergeAggregate folds a freshly adjudicated batch into the running
// aggregate table. Rows carrying the same run stamp are replaced, so a
// re-run of a batch date is idempotent. The merged table keeps the
// aggregate's column layout and is ordered descending on every key:
// run stamp, assignment class, claimed amount.
func MergeAggregate(aggregate, result *Table, stamp string) *Table {
	if aggregate == nil || len(aggregate.Columns) == 0 {
		aggregate = NewTable(result.Columns)
	}

	merged := NewTable(aggregate.Columns)
	for i := 0; i < aggregate.Len(); i++ {
		if aggregate.Get(i, ColRunDate) == stamp {
			continue
		}
		merged.AppendRow(aggregate.Rows[i])
	}

	aligned := result.AlignToTemplate(aggregate.Columns, nil, "")
	for i := 0; i < aligned.Len(); i++ {
		row := make([]string, len(merged.Columns))
		for j, col := range merged.Columns {
			row[j] = aligned.Get(i, col)
		}
		merged.AppendRow(row)
	}

	sort.SliceStable(merged.Rows, func(a, b int) bool {
		ra, rb := merged.Rows[a], merged.Rows[b]
		da := cell(merged, ra, ColRunDate)
		db := cell(merged, rb, ColRunDate)
		if da != db {
			return da > db
		}
		ea := cell(merged, ra, ColEZKLName)
		eb := cell(merged, rb, ColEZKLName)
		if ea != eb {
			return ea > eb
		}
		return amount(merged, ra) > amount(merged, rb)
	})
	return merged
}

func cell(t *Table, row []string, col string) string {
	i := t.ColumnIndex(col)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func amount(t *Table, row []string) float64 {
	v, err := strconv.ParseFloat(cell(t, row, ColAmount), 64)
	if err != nil {
		return 0
	}
	return v
}
