package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartNumber_SpreadsheetArtifacts(t *testing.T) {
	got := PartNumber(" 16600 1VA0A.0 ")
	require.NotNil(t, got)
	assert.Equal(t, "166001VA0A", *got)
}

func TestPartNumber_Empty(t *testing.T) {
	assert.Nil(t, PartNumber("   "))
	assert.Nil(t, PartNumber(""))
}

func TestAlnumPartNumber_KeepsLeadingRun(t *testing.T) {
	got := AlnumPartNumber("16600-1VA0A-XX999")
	require.NotNil(t, got)
	// 12-character cap drops trailing suffix codes
	assert.Equal(t, "166001VA0AXX", *got)
}

func TestAlnumPartNumber_ShortFallsBackToFull(t *testing.T) {
	got := AlnumPartNumber("AB-12")
	require.NotNil(t, got)
	assert.Equal(t, "AB12", *got)
}

func TestAlnumPartNumber_Empty(t *testing.T) {
	assert.Nil(t, AlnumPartNumber(""))
	assert.Nil(t, AlnumPartNumber("---"))
}

func TestFlexibleDate_SerialDays(t *testing.T) {
	// Day 1 of the spreadsheet epoch is 1899-12-31.
	got := FlexibleDate("1")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC), *got)

	got = FlexibleDate("44562")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestFlexibleDate_YearMonth(t *testing.T) {
	got := FlexibleDate("2023/7")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestFlexibleDate_GeneralLayouts(t *testing.T) {
	for _, raw := range []string{"2023-07-15", "2023/07/15", "2023.07.15", "2023-07-15 10:30:00"} {
		got := FlexibleDate(raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC), *got, raw)
	}
}

func TestFlexibleDate_Garbage(t *testing.T) {
	assert.Nil(t, FlexibleDate("n/a"))
	assert.Nil(t, FlexibleDate(""))
}

func TestVehicleManufactureDate_BareYear(t *testing.T) {
	for _, raw := range []string{"2018", "2018.0"} {
		got := VehicleManufactureDate(raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), *got, raw)
	}
}

func TestVehicleManufactureDate_YearMonth(t *testing.T) {
	got := VehicleManufactureDate("2020/11")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestVehicleManufactureDate_FullDate(t *testing.T) {
	got := VehicleManufactureDate("2019-03-21")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2019, 3, 21, 0, 0, 0, 0, time.UTC), *got)
}

func TestDate_TruncatesToMidnight(t *testing.T) {
	got := Date("2024-05-01 23:59:59")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestDate_Unparsable(t *testing.T) {
	assert.Nil(t, Date("May 1st"))
}
