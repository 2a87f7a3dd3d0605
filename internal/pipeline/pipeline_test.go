package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/dataset"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const testLedgerCSV = `OEM Name,Key No.,Reference No.,Supplier Parts No.,Supplier Parts Name,EZKL Name,Total Claimed Amount,Domestic/Overseas,Status,SAP Date
NISSAN,1,23F20001-01,166001VA0A,injector,EKP/T,1000,1,Accepted,2023-06-01
NISSAN,1,23F20002-01,166001VA0A,injector,EKP/T,1200,1,Rejected,2023-06-01
NISSAN,1,23F20003-01,166001VA0A,injector,EKP/T,900,2,,2023-07-01
`

// 3rd reference char "D" encodes May, matching the batch date below.
const testClaimsCSV = `Reference No.,Customer Parts No.,Supplier Parts No.,Supplier Parts Name,Division,Domestic/Overseas,Parts Distinction,Category Type,Warranty Period,Total Claimed Amount,Burden Ratio,EDP Date
24D10001-01,999999,166001VA0A,injector,PS(GS),1,1,G1,36,1000,50,2024-05-01
24D10002-01,999999,166001VA0A,injector,PS(GS),1,1,G1,36,1100,40,2024-05-01
`

const testContractsCSV = `EZKL Name,Standard Burden Ratio,Current Burden Ratio,New BR Date
EKPT,30,50,2022-01-01
`

func TestPipeline_Run_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	claims := filepath.Join(dir, "claims.csv")
	ledgerFile := filepath.Join(dir, "ledger.csv")
	contracts := filepath.Join(dir, "contracts.csv")
	out := filepath.Join(dir, "result.csv")
	aggregate := filepath.Join(dir, "aggregate.csv")
	template := filepath.Join(dir, "template.csv")

	writeFile(t, claims, testClaimsCSV)
	writeFile(t, ledgerFile, testLedgerCSV)
	writeFile(t, contracts, testContractsCSV)
	writeFile(t, template, "Judgement.1,Reference No.\n")

	p := NewPipeline(model.DefaultConfig(), log.New(io.Discard))
	summary, err := p.Run(context.Background(), RunInput{
		ClaimsPath:    claims,
		LedgerPath:    ledgerFile,
		ContractsPath: contracts,
		TemplatePath:  template,
		OutPath:       out,
		AggregatePath: aggregate,
		BatchDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Rows)
	// One line carries 40% against the contracted current 50%.
	assert.Equal(t, 1, summary.Objected)
	assert.Equal(t, 1, summary.ObjectedDPR)
	assert.Equal(t, 0, summary.Subparts)
	assert.Equal(t, 0, summary.Anomalies)

	result, err := dataset.ReadTable(out)
	require.NoError(t, err)
	require.Equal(t, 2, result.Len())

	// Template columns lead the worksheet; the legacy review column
	// mirrors the claim verdict.
	assert.Equal(t, "Judgement.1", result.Columns[0])
	assert.Equal(t, "Reference No.", result.Columns[1])

	byRef := map[string]int{}
	for i := 0; i < result.Len(); i++ {
		byRef[result.Get(i, dataset.ColReferenceNo)] = i
	}
	good := byRef["24D10001-01"]
	bad := byRef["24D10002-01"]

	assert.Equal(t, "EKPT", result.Get(good, dataset.ColEZKLName))
	assert.Equal(t, "0", result.Get(good, dataset.ColClaim))
	assert.Equal(t, "0", result.Get(good, "Judgement.1"))
	assert.Equal(t, "1", result.Get(bad, dataset.ColClaim))
	assert.Equal(t, "1", result.Get(bad, "Judgement.1"))
	assert.Equal(t, "2024-05-01", result.Get(bad, dataset.ColRunDate))

	agg, err := dataset.ReadTable(aggregate)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Len())
}

func TestPipeline_Run_RequiresBatchDate(t *testing.T) {
	p := NewPipeline(model.DefaultConfig(), log.New(io.Discard))
	_, err := p.Run(context.Background(), RunInput{})
	require.Error(t, err)
}

func TestPipeline_Run_MissingInputFile(t *testing.T) {
	p := NewPipeline(model.DefaultConfig(), log.New(io.Discard))
	_, err := p.Run(context.Background(), RunInput{
		ClaimsPath: filepath.Join(t.TempDir(), "absent.csv"),
		BatchDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
}

func TestPipeline_Run_AggregateReplacesSameStamp(t *testing.T) {
	dir := t.TempDir()
	claims := filepath.Join(dir, "claims.csv")
	ledgerFile := filepath.Join(dir, "ledger.csv")
	contracts := filepath.Join(dir, "contracts.csv")
	out := filepath.Join(dir, "result.csv")
	aggregate := filepath.Join(dir, "aggregate.csv")

	writeFile(t, claims, testClaimsCSV)
	writeFile(t, ledgerFile, testLedgerCSV)
	writeFile(t, contracts, testContractsCSV)

	p := NewPipeline(model.DefaultConfig(), log.New(io.Discard))
	in := RunInput{
		ClaimsPath:    claims,
		LedgerPath:    ledgerFile,
		ContractsPath: contracts,
		OutPath:       out,
		AggregatePath: aggregate,
		BatchDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), in)
	require.NoError(t, err)

	agg, err := dataset.ReadTable(aggregate)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Len())
}
