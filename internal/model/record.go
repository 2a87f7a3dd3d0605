package model

import "time"

// ClaimStatus is the recorded outcome of a historical objection.
// An empty status means no objection outcome exists for the entry, i.e.
// the claim was simply paid.
type ClaimStatus string

const (
	StatusAccepted ClaimStatus = "Accepted" // objection accepted by the OEM: claim denied
	StatusRejected ClaimStatus = "Rejected" // objection rejected: claim paid despite the dispute
	StatusNone     ClaimStatus = ""
)

// Parts distinction codes used by the OEM claim files.
const (
	DistinctionMainPart = 1
	DistinctionSubpart  = 2
)

// Segment codes for the domestic/overseas split.
const (
	SegmentDomestic = "1"
	SegmentOverseas = "2"
)

// Subpart verdict values.
const (
	SubpartOK     = "OK"
	SubpartObject = "To object?"
)

// ClaimRecord is one warranty claim line from the monthly OEM batch.
// It is created by decoding a raw batch row, enriched in place by the
// enricher, and read-only for the rule engine, which fills Verdict.
type ClaimRecord struct {
	ReferenceNo      string
	ObjectionID      string // first 8 chars of ReferenceNo
	CustomerPartNo   string
	SupplierPartNo   string
	PartPrefix       string // first 10 chars of SupplierPartNo
	PartName         string // free text, lowercased on ingest
	Division         string
	EZKLName         string // "" until resolved
	OriginalEZKL     string // resolved EZKL, snapshotted before the hybrid relabel
	ClaimedAmount    float64
	Segment          string // SegmentDomestic or SegmentOverseas
	PartsDistinction int    // DistinctionMainPart or DistinctionSubpart
	CustomerCategory string // category/type text, drives the HDEV5 sub-cases
	WarrantyRaw      string // contracted warranty length in months, as received

	BurdenRatio *float64 // percentage charged on this line, 0-100

	ManufactureDate  *time.Time
	RegistrationDate *time.Time
	FailureDate      *time.Time
	ProcessingDate   *time.Time // SAP/EDP processing date
	InstallationDate *time.Time // parts warranty installation date

	// Joined from the burden-ratio contract table.
	StandardBurdenRatio *float64
	CurrentBurdenRatio  *float64
	NewBRDate           *time.Time

	Features Features
	Verdict  Verdict
}

// Features holds the derived per-row signals the rule engine consumes.
// All aggregate inputs (means, ratios) are resolved during enrichment so
// rule evaluation stays a pure function of the record.
type Features struct {
	OutlierGlobal1  int // claimed amount > ledger mean + 1 sigma
	OutlierGlobal15 int // claimed amount > ledger mean + 1.5 sigma
	OutlierSegment  int // claimed amount > own-segment mean + 1 sigma
	OutlierEZKL     int // claimed amount > batch per-EZKL mean + 1 sigma

	DaysMFDToProcessing *int
	DaysMFDToFailure    *int
	MFDYear             int
	OEMMonth            int    // month decoded from the 3rd reference char, A=1..Z=26
	MonthCode           string // month name decoded via the month-letter table
	RightMonth          int    // 0 when the reference encodes the batch month, else 1

	WarrantyMonths  float64 // parsed contract length; defaulted when unparseable
	OutsideWarranty *int    // nil when no installation date is recorded

	DeniedPaidRatio float64
	NumObjected     int
	HighDeniedPaid  int

	HDEV6CM             int // HDEV6 manufactured inside the countermeasure window
	HDEV6Countermeasure int
	HDEV6OverThreshold  int

	HybridEZKL string // EZKL label with the "(H)" hybrid qualifier
	GroupCount int    // batch row count sharing this EZKL
}

// Verdict carries the adjudication outputs appended by the rule engine.
type Verdict struct {
	BRContract    int // 0 correct, 1 incorrect
	IrregularBR   bool
	Claim         int // 0 no objection, 1 objection
	ClaimDPR      int
	Subpart       string // SubpartOK or SubpartObject
	IrregularCase int
}

// LedgerEntry is one historical claim outcome from the supplier ledger.
// Shape mirrors ClaimRecord plus the objection Status.
type LedgerEntry struct {
	OEMName        string
	KeyNo          string
	ReferenceNo    string
	ObjectionID    string
	SupplierPartNo string
	PartPrefix     string
	PartName       string
	EZKLName       string
	ClaimedAmount  float64
	Segment        string
	Status         ClaimStatus

	ProcessingDate   *time.Time
	RegistrationDate *time.Time
	FailureDate      *time.Time
	ManufactureDate  *time.Time
	InstallationDate *time.Time
}

// ObjectionIDFrom derives the objection identifier from a reference
// identifier. Short references are used as-is.
func ObjectionIDFrom(referenceNo string) string {
	if len(referenceNo) > 8 {
		return referenceNo[:8]
	}
	return referenceNo
}

// PrefixFrom derives the n-char part-number prefix used for EZKL lookups.
func PrefixFrom(partNo string, n int) string {
	if len(partNo) > n {
		return partNo[:n]
	}
	return partNo
}
