package enrich

import (
	"strconv"
	"strings"
	"time"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
)

// deriveFeatures fills every rule-engine input on the record: outlier
// flags, elapsed-time features, warranty overrun, month checks, denial
// ratios and the HDEV6 flags.
func (e *Enricher) deriveFeatures(rec *model.ClaimRecord, ls model.LedgerStats, bs model.BatchStats, batchDate time.Time) {
	f := &rec.Features

	// Outlier flags against the historical ledger.
	f.OutlierGlobal1 = flag(rec.ClaimedAmount > ls.Amount.Threshold(1))
	f.OutlierGlobal15 = flag(rec.ClaimedAmount > ls.Amount.Threshold(1.5))
	if seg, ok := ls.SegmentStats(rec.Segment); ok {
		f.OutlierSegment = flag(rec.ClaimedAmount > seg.Threshold(1))
	}

	// Per-EZKL outlier against the current batch.
	if cs, ok := bs.ByEZKL[rec.EZKLName]; ok {
		f.OutlierEZKL = flag(rec.ClaimedAmount > cs.Threshold(1))
	}
	f.GroupCount = bs.Counts[rec.EZKLName]

	// Elapsed-time features.
	if rec.ManufactureDate != nil {
		f.MFDYear = rec.ManufactureDate.Year()
		if rec.ProcessingDate != nil {
			f.DaysMFDToProcessing = intPtr(daysBetween(*rec.ManufactureDate, *rec.ProcessingDate))
		}
		if rec.FailureDate != nil {
			f.DaysMFDToFailure = intPtr(daysBetween(*rec.ManufactureDate, *rec.FailureDate))
		}
	}

	// Month decoding from the reference identifier.
	f.OEMMonth = decodeOEMMonth(rec.ObjectionID)
	f.MonthCode = e.monthCode(rec.ReferenceNo)
	f.RightMonth = e.rightMonth(rec.ReferenceNo, batchDate)

	// Warranty-period overrun.
	f.WarrantyMonths = e.warrantyMonths(rec.WarrantyRaw)
	f.OutsideWarranty = e.outsideWarranty(rec, f.WarrantyMonths)

	// Historical denial behaviour of the class.
	dr := ls.DeniedByEZKL[rec.EZKLName]
	f.DeniedPaidRatio = dr.Ratio()
	f.NumObjected = dr.Total()
	f.HighDeniedPaid = flag(dr.Total() >= e.cfg.HighDPRMinObjections &&
		dr.Ratio() >= e.cfg.HighDPRThreshold)

	// HDEV6-specific flags.
	inWindow := rec.EZKLName == "HDEV6" &&
		rec.ManufactureDate != nil &&
		!rec.ManufactureDate.Before(e.cfg.HDEV6MFDCutoff)
	f.HDEV6CM = flag(inWindow)
	f.HDEV6Countermeasure = flag(inWindow && f.OutlierEZKL == 1)
	f.HDEV6OverThreshold = flag(rec.EZKLName == "HDEV6" &&
		rec.ClaimedAmount >= e.cfg.HDEV6AmountMin &&
		rec.ClaimedAmount <= e.cfg.HDEV6AmountMax)
	if e.isExcludedMain(rec.CustomerPartNo) {
		f.HDEV6Countermeasure = 0
		f.HDEV6OverThreshold = 0
	}

	// Hybrid label for reporting.
	f.HybridEZKL = rec.OriginalEZKL
	if rec.OriginalEZKL != "" && strings.HasPrefix(rec.CustomerCategory, "H") {
		f.HybridEZKL = rec.OriginalEZKL + " (H)"
	}
}

func (e *Enricher) isExcludedMain(customerPartNo string) bool {
	for _, p := range e.cfg.HDEV6ExcludedMains {
		if customerPartNo == p {
			return true
		}
	}
	return false
}

// rightMonth returns 0 when the 3rd character of the reference
// identifier encodes the current batch month, else 1.
func (e *Enricher) rightMonth(referenceNo string, batchDate time.Time) int {
	letter, ok := e.cfg.MonthLetters[int(batchDate.Month())]
	if !ok || len(referenceNo) < 3 {
		return 1
	}
	if strings.ToUpper(referenceNo[2:3]) == letter {
		return 0
	}
	return 1
}

// monthCode decodes the 3rd reference character to a month name via the
// month-letter table.
func (e *Enricher) monthCode(referenceNo string) string {
	s := strings.TrimSpace(referenceNo)
	if len(s) < 3 {
		return ""
	}
	letter := strings.ToUpper(s[2:3])
	for month, l := range e.cfg.MonthLetters {
		if l == letter {
			return time.Month(month).String()[:3]
		}
	}
	return ""
}

// decodeOEMMonth decodes the 3rd character of the objection identifier
// as an alphabet position (A=1 .. Z=26), 0 when absent.
func decodeOEMMonth(objectionID string) int {
	if len(objectionID) < 3 {
		return 0
	}
	c := strings.ToUpper(objectionID[2:3])[0]
	if c < 'A' || c > 'Z' {
		return 0
	}
	return int(c-'A') + 1
}

// warrantyMonths parses the contracted warranty length, substituting
// the configured default when the cell is unparseable.
func (e *Enricher) warrantyMonths(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return e.cfg.DefaultWarrantyMonths
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return e.cfg.DefaultWarrantyMonths
	}
	return v
}

// outsideWarranty returns nil when no installation date is recorded,
// else 1 when the failure-to-installation distance in calendar months
// exceeds the contracted warranty length.
func (e *Enricher) outsideWarranty(rec *model.ClaimRecord, warrantyMonths float64) *int {
	if rec.InstallationDate == nil {
		return nil
	}
	if rec.FailureDate == nil {
		return intPtr(0)
	}
	diff := monthsBetween(*rec.InstallationDate, *rec.FailureDate)
	return intPtr(flag(float64(diff) > warrantyMonths))
}

// monthsBetween is the calendar-month distance (year*12+month), sign
// preserved, days ignored.
func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intPtr(v int) *int { return &v }
