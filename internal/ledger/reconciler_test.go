package ledger

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
)

func testReconciler() *Reconciler {
	return NewReconciler(model.DefaultConfig(), log.New(io.Discard))
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func entry(ref string, amount float64, processed *time.Time) model.LedgerEntry {
	return model.LedgerEntry{
		OEMName:        "NISSAN",
		KeyNo:          "1",
		ReferenceNo:    ref,
		SupplierPartNo: "166001VA0A",
		PartName:       "injector",
		EZKLName:       "HDEV5",
		ClaimedAmount:  amount,
		Segment:        model.SegmentDomestic,
		ProcessingDate: processed,
	}
}

func TestReconciler_Reconcile_RequiresBatchDate(t *testing.T) {
	_, err := testReconciler().Reconcile(nil, time.Time{})
	require.Error(t, err)
}

func TestReconciler_Filter_Scope(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	otherOEM := entry("24L10001-01", 100, date(2023, 1, 10))
	otherOEM.OEMName = "TOYOTA"

	sentinel := entry("24L10002-01", 100, date(2023, 1, 10))
	sentinel.KeyNo = "M"

	noDate := entry("24L10003-01", 100, nil)
	tooOld := entry("24L10004-01", 100, date(2020, 12, 31))
	currentMonth := entry("24L10005-01", 100, date(2024, 5, 1))

	excludedName := entry("24L10006-01", 100, date(2023, 1, 10))
	excludedName.PartName = "ECM Campaign Cost"

	superseded := entry("24L10007-01", 100, date(2023, 1, 10))
	superseded.EZKLName = "HDEV5 (S)"

	kept := entry("24L10008-01", 100, date(2023, 1, 10))

	result, err := testReconciler().Reconcile([]model.LedgerEntry{
		otherOEM, sentinel, noDate, tooOld, currentMonth,
		excludedName, superseded, kept,
	}, batchDate)
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "24L10008", result.Entries[0].ObjectionID)
	assert.Equal(t, "166001VA0A", result.Entries[0].PartPrefix)
}

func TestReconciler_Filter_EZKLReplacement(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	e := entry("24L10001-01", 100, date(2023, 1, 10))
	e.EZKLName = "HDEV"

	result, err := testReconciler().Reconcile([]model.LedgerEntry{e}, batchDate)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "HDEV5", result.Entries[0].EZKLName)
}

func TestReconciler_Filter_ControlUnitOverride(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	e := entry("24L10001-01", 100, date(2023, 1, 10))
	e.PartName = "Engine Control Unit Assembly"
	e.EZKLName = "SOMETHING"

	result, err := testReconciler().Reconcile([]model.LedgerEntry{e}, batchDate)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "Control Unit", result.Entries[0].EZKLName)
}

func TestReconciler_Dedupe_ConflictingStatusesKeepEarliest(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	first := entry("24L10001-01", 100, date(2021, 5, 1))
	first.Status = model.StatusAccepted
	second := entry("24L10001-02", 200, date(2021, 8, 1))
	second.Status = model.StatusRejected

	result, err := testReconciler().Reconcile([]model.LedgerEntry{first, second}, batchDate)
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, model.StatusAccepted, result.Entries[0].Status)
	assert.Equal(t, time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC), *result.Entries[0].ProcessingDate)
	assert.Equal(t, 0, result.Anomalies)
}

func TestReconciler_Dedupe_StatuslessPairStillConflicts(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	// A re-submitted objection without recorded outcomes is still a
	// duplicate dispute: only the earliest entry survives.
	a := entry("24L10001-01", 100, date(2021, 5, 1))
	b := entry("24L10001-02", 200, date(2021, 8, 1))

	result, err := testReconciler().Reconcile([]model.LedgerEntry{a, b}, batchDate)
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, 100.0, result.Entries[0].ClaimedAmount)
	assert.Equal(t, 0, result.Anomalies)
}

func TestReconciler_Dedupe_SameAmountKeepsLatest(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	older := entry("24L10001-01", 100, date(2021, 5, 1))
	newer := entry("24L10001-02", 100, date(2022, 5, 1))

	result, err := testReconciler().Reconcile([]model.LedgerEntry{older, newer}, batchDate)
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC), *result.Entries[0].ProcessingDate)
}

func TestReconciler_Stats(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	dom1 := entry("24L10001-01", 100, date(2023, 1, 10))
	dom1.Status = model.StatusAccepted
	dom2 := entry("24L10002-01", 200, date(2023, 1, 10))
	dom2.Status = model.StatusRejected
	over := entry("24L10003-01", 300, date(2023, 1, 10))
	over.Segment = model.SegmentOverseas

	result, err := testReconciler().Reconcile([]model.LedgerEntry{dom1, dom2, over}, batchDate)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.Amount.Count)
	assert.Equal(t, 2, result.Stats.Domestic.Count)
	assert.Equal(t, 1, result.Stats.Overseas.Count)

	ratio := result.Stats.DeniedByEZKL["HDEV5"]
	assert.Equal(t, 1, ratio.Denied)
	assert.Equal(t, 1, ratio.DeniedPaid)
	assert.InDelta(t, 0.5, ratio.Ratio(), 1e-9)
}

func TestReconciler_BackfillManufactureDates(t *testing.T) {
	batchDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	fromReg := entry("24L10001-01", 100, date(2023, 1, 10))
	fromReg.RegistrationDate = date(2022, 3, 1)
	fromReg.FailureDate = date(2022, 9, 1)

	fromLag := entry("24L10002-01", 200, date(2023, 1, 10))
	fromLag.FailureDate = date(2023, 3, 1)

	result, err := testReconciler().Reconcile([]model.LedgerEntry{fromReg, fromLag}, batchDate)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	byID := make(map[string]model.LedgerEntry)
	for _, e := range result.Entries {
		byID[e.ObjectionID] = e
	}

	require.NotNil(t, byID["24L10001"].ManufactureDate)
	assert.Equal(t, time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), *byID["24L10001"].ManufactureDate)

	require.True(t, result.Stats.HasRegToFailureLag)
	require.NotNil(t, byID["24L10002"].ManufactureDate)
	expected := byID["24L10002"].FailureDate.Add(-result.Stats.RegToFailureLag)
	assert.Equal(t, expected, *byID["24L10002"].ManufactureDate)
}

func TestBuildCrossOEMIndex(t *testing.T) {
	entries := []model.LedgerEntry{
		{SupplierPartNo: "16600 1VA0A.0", EZKLName: "HDEV5"},
		{SupplierPartNo: "166001VA0A", EZKLName: "HDEV5"},
		{SupplierPartNo: "", EZKLName: "LUFT"},
	}
	index := BuildCrossOEMIndex(entries, 10)

	assert.Equal(t, 1, index.Len())
	assert.Equal(t, "HDEV5", index.ModeEZKL("166001VA0A"))
}
