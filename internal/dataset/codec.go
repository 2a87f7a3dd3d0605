package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/normalize"
)

// Logical schema column names shared by the claim batch and the
// historical ledger. The tabular schema is the only wire format of the
// system and must be preserved exactly for downstream consumers.
const (
	ColReferenceNo    = "Reference No."
	ColObjectionID    = "Objection ID"
	ColCustomerPartNo = "Customer Parts No."
	ColSupplierPartNo = "Supplier Parts No."
	ColPartName       = "Supplier Parts Name"
	ColEZKLName       = "EZKL Name"
	ColAmount         = "Total Claimed Amount"
	ColMFD            = "Vehicle MFD"
	ColRegDate        = "Vehicle Registration Date"
	ColFailureDate    = "Vehicle Failure Date"
	ColEDPDate        = "EDP Date"
	ColSAPDate        = "SAP Date"
	ColInstallDate    = "Parts Warranty Installation Date"
	ColSegment        = "Domestic/Overseas"
	ColDistinction    = "Parts Distinction"
	ColDivision       = "Division"
	ColCategory       = "Category Type"
	ColWarranty       = "Warranty Period"
	ColBurdenRatio    = "Burden Ratio"

	// Ledger-only columns.
	ColOEMName = "OEM Name"
	ColKeyNo   = "Key No."
	ColStatus  = "Status"

	// Contract table columns.
	ColStandardBR = "Standard Burden Ratio"
	ColCurrentBR  = "Current Burden Ratio"
	ColNewBRDate  = "New BR Date"
)

// Output columns appended by enrichment and adjudication.
const (
	ColOutlier1        = "TCA Outlier1"
	ColOutlier15       = "TCA Outlier15"
	ColOutlierSegment  = "TCA Outlier Segment"
	ColOutlierEZKL     = "TCA Outlier EZKL"
	ColDaysMFDSAP      = "Days MFD SAP"
	ColDaysMFDFailure  = "Days MFD Failure"
	ColMFDYear         = "MFD Year"
	ColOEMDateMonth    = "OEM Date Month"
	ColMonthCode       = "Irr. Month"
	ColRightMonth      = "Right_Month"
	ColOutsideWarranty = "Outside_warranty_period"
	ColDeniedPaidRatio = "Denied Paid Ratio"
	ColNumObjected     = "Num Objected"
	ColHighDeniedPaid  = "High Denied Paid Ratio"
	ColHDEV6CM         = "HDEV6_CM"
	ColHDEV6CMFlag     = "HDEV6_countermeasure"
	ColHDEV6Over       = "HDEV6_over_120000"
	ColBRContract      = "BR Contract"
	ColIrregularBR     = "Irregular case BR"
	ColClaim           = "claim"
	ColClaimDPR        = "claim_DPR"
	ColSubpart         = "Subpart"
	ColIrregularCase   = "Irregular_case"
	ColHybridEZKL      = "Hybrid_specification_EZKL"
	ColGroupCount      = "Group Count"
	ColBRDecimal       = "Burden Ratio Decimal"
	ColRunDate         = "AI_DATE"
)

const dateLayout = "2006-01-02"

// DecodeClaimBatch decodes a raw claim-batch table into records. Cell
// parsing is total: malformed dates and numbers become nil/zero values.
func DecodeClaimBatch(t *Table) []model.ClaimRecord {
	out := make([]model.ClaimRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rec := model.ClaimRecord{
			ReferenceNo:      strings.TrimSpace(t.Get(i, ColReferenceNo)),
			CustomerPartNo:   strings.TrimSpace(t.Get(i, ColCustomerPartNo)),
			PartName:         strings.TrimSpace(t.Get(i, ColPartName)),
			Division:         strings.TrimSpace(t.Get(i, ColDivision)),
			Segment:          strings.TrimSpace(t.Get(i, ColSegment)),
			CustomerCategory: strings.TrimSpace(t.Get(i, ColCategory)),
			WarrantyRaw:      t.Get(i, ColWarranty),
			ClaimedAmount:    parseAmount(t.Get(i, ColAmount)),
			PartsDistinction: parseInt(t.Get(i, ColDistinction)),
			BurdenRatio:      parseRatio(t.Get(i, ColBurdenRatio)),
			ManufactureDate:  normalize.VehicleManufactureDate(t.Get(i, ColMFD)),
			RegistrationDate: normalize.Date(t.Get(i, ColRegDate)),
			FailureDate:      normalize.Date(t.Get(i, ColFailureDate)),
			ProcessingDate:   normalize.Date(t.Get(i, ColEDPDate)),
			InstallationDate: normalize.FlexibleDate(t.Get(i, ColInstallDate)),
		}
		if pn := normalize.PartNumber(t.Get(i, ColSupplierPartNo)); pn != nil {
			rec.SupplierPartNo = *pn
		}
		out = append(out, rec)
	}
	return out
}

// DecodeLedger decodes the historical cross-OEM ledger table.
func DecodeLedger(t *Table) []model.LedgerEntry {
	out := make([]model.LedgerEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		entry := model.LedgerEntry{
			OEMName:          strings.TrimSpace(t.Get(i, ColOEMName)),
			KeyNo:            strings.TrimSpace(t.Get(i, ColKeyNo)),
			ReferenceNo:      strings.TrimSpace(t.Get(i, ColReferenceNo)),
			SupplierPartNo:   strings.TrimSpace(t.Get(i, ColSupplierPartNo)),
			PartName:         strings.TrimSpace(t.Get(i, ColPartName)),
			EZKLName:         strings.TrimSpace(t.Get(i, ColEZKLName)),
			ClaimedAmount:    parseAmount(t.Get(i, ColAmount)),
			Segment:          strings.TrimSpace(t.Get(i, ColSegment)),
			Status:           decodeStatus(t.Get(i, ColStatus)),
			ProcessingDate:   normalize.Date(t.Get(i, ColSAPDate)),
			RegistrationDate: normalize.Date(t.Get(i, ColRegDate)),
			FailureDate:      normalize.Date(t.Get(i, ColFailureDate)),
			ManufactureDate:  normalize.VehicleManufactureDate(t.Get(i, ColMFD)),
			InstallationDate: normalize.FlexibleDate(t.Get(i, ColInstallDate)),
		}
		out = append(out, entry)
	}
	return out
}

// DecodeContracts decodes the burden-ratio contract table. A current
// ratio that does not parse as a number is kept as text so the override
// exclusions can see it.
func DecodeContracts(t *Table) []model.BurdenContract {
	out := make([]model.BurdenContract, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		c := model.BurdenContract{
			EZKLName:      strings.TrimSpace(t.Get(i, ColEZKLName)),
			StandardRatio: parseRatio(t.Get(i, ColStandardBR)),
			NewBRDate:     normalize.Date(t.Get(i, ColNewBRDate)),
		}
		raw := strings.TrimSpace(t.Get(i, ColCurrentBR))
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			c.CurrentRatio = &v
		} else {
			c.CurrentRatioText = raw
		}
		out = append(out, c)
	}
	return out
}

// EncodeResults renders the adjudicated batch as the output table: the
// input schema plus every enrichment and verdict column, stamped with
// the batch date.
func EncodeResults(batch []model.ClaimRecord, batchDate time.Time) *Table {
	t := NewTable([]string{
		ColReferenceNo, ColObjectionID, ColCustomerPartNo, ColSupplierPartNo,
		ColPartName, ColDivision, ColSegment, ColDistinction, ColCategory,
		ColWarranty, ColAmount, ColBurdenRatio, ColBRDecimal,
		ColMFD, ColRegDate, ColFailureDate, ColSAPDate, ColInstallDate,
		ColEZKLName, ColHybridEZKL, ColGroupCount,
		ColStandardBR, ColCurrentBR, ColNewBRDate,
		ColOutlier1, ColOutlier15, ColOutlierSegment, ColOutlierEZKL,
		ColDaysMFDSAP, ColDaysMFDFailure, ColMFDYear,
		ColOEMDateMonth, ColMonthCode, ColRightMonth,
		ColOutsideWarranty, ColDeniedPaidRatio, ColNumObjected, ColHighDeniedPaid,
		ColHDEV6CM, ColHDEV6CMFlag, ColHDEV6Over,
		ColBRContract, ColIrregularBR,
		ColClaim, ColClaimDPR, ColSubpart, ColIrregularCase,
		ColRunDate,
	})

	for _, rec := range batch {
		f := rec.Features
		t.AppendRow([]string{
			rec.ReferenceNo, rec.ObjectionID, rec.CustomerPartNo, rec.SupplierPartNo,
			rec.PartName, rec.Division, rec.Segment, strconv.Itoa(rec.PartsDistinction),
			rec.CustomerCategory,
			rec.WarrantyRaw, formatFloat(rec.ClaimedAmount), formatRatio(rec.BurdenRatio),
			formatDecimalRatio(rec.BurdenRatio),
			formatDate(rec.ManufactureDate), formatDate(rec.RegistrationDate),
			formatDate(rec.FailureDate), formatDate(rec.ProcessingDate),
			formatDate(rec.InstallationDate),
			rec.EZKLName, f.HybridEZKL, strconv.Itoa(f.GroupCount),
			formatRatio(rec.StandardBurdenRatio), formatRatio(rec.CurrentBurdenRatio),
			formatDate(rec.NewBRDate),
			strconv.Itoa(f.OutlierGlobal1), strconv.Itoa(f.OutlierGlobal15),
			strconv.Itoa(f.OutlierSegment), strconv.Itoa(f.OutlierEZKL),
			formatIntPtr(f.DaysMFDToProcessing), formatIntPtr(f.DaysMFDToFailure),
			strconv.Itoa(f.MFDYear),
			strconv.Itoa(f.OEMMonth), f.MonthCode, strconv.Itoa(f.RightMonth),
			formatIntPtr(f.OutsideWarranty), formatFloat(f.DeniedPaidRatio),
			strconv.Itoa(f.NumObjected), strconv.Itoa(f.HighDeniedPaid),
			strconv.Itoa(f.HDEV6CM), strconv.Itoa(f.HDEV6Countermeasure),
			strconv.Itoa(f.HDEV6OverThreshold),
			strconv.Itoa(rec.Verdict.BRContract), formatBoolFlag(rec.Verdict.IrregularBR),
			strconv.Itoa(rec.Verdict.Claim), strconv.Itoa(rec.Verdict.ClaimDPR),
			rec.Verdict.Subpart, strconv.Itoa(rec.Verdict.IrregularCase),
			batchDate.Format(dateLayout),
		})
	}
	return t
}

func decodeStatus(raw string) model.ClaimStatus {
	switch strings.TrimSpace(raw) {
	case string(model.StatusAccepted):
		return model.StatusAccepted
	case string(model.StatusRejected):
		return model.StatusRejected
	}
	return model.StatusNone
}

func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

func parseRatio(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatRatio(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDecimalRatio(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v/100, 'f', -1, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBoolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
