package model

import "time"

// Config is the full runtime configuration for the warranty judge.
//
// Hierarchy (highest to lowest priority):
// 1. CLI flags
// 2. Environment variables (WARRANTY_JUDGE_*)
// 3. Config file (~/.warranty-judge/config.yaml)
// 4. Defaults (DefaultConfig)
type Config struct {
	OEM     string       `yaml:"oem"`     // OEM name key in the cross-OEM ledger
	Workers int          `yaml:"workers"` // phase-2 row evaluation concurrency
	Output  OutputConfig `yaml:"output"`
	Rules   RulesConfig  `yaml:"rules"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	// LegacyClaimColumn is the downstream dashboard column that must
	// mirror the claim verdict for schema compatibility.
	LegacyClaimColumn string `yaml:"legacy_claim_column"`
}

// RulesConfig is the immutable business-rule data: lookup tables,
// exclusion lists and thresholds. It is loaded once at process start and
// kept outside the rule functions so the tables can be versioned and
// unit-tested against golden fixtures independently of the code.
type RulesConfig struct {
	// LedgerCutoff is the earliest processing date admitted into the
	// historical reference ledger.
	LedgerCutoff time.Time `yaml:"ledger_cutoff"`

	// SentinelKey marks ledger rows carrying a non-numeric key that
	// must never enter reconciliation.
	SentinelKey string `yaml:"sentinel_key"`

	// Divisions is the organizational-division allow-list for incoming
	// batches. "P" is a known data-entry artifact produced by the
	// ingest macros and is retained for compatibility.
	Divisions []string `yaml:"divisions"`

	// PartNameExclusions drops recall-campaign and administrative
	// adjustment lines from both ledger and batch (matched lowercase).
	PartNameExclusions []string `yaml:"part_name_exclusions"`

	// SupersededEZKLMarker excludes superseded part classes.
	SupersededEZKLMarker string `yaml:"superseded_ezkl_marker"`

	// EZKLReplacements canonicalizes ambiguous class names, e.g. an
	// unqualified name is assumed to mean its most common variant.
	EZKLReplacements map[string]string `yaml:"ezkl_replacements"`

	// PartGroupPatterns maps part-number prefixes to named groups.
	// Matching is longest-prefix-first regardless of declaration order.
	PartGroupPatterns map[string]string `yaml:"part_group_patterns"`

	// ExpectedGroupSynonyms normalizes free-text part names to the
	// canonical group labels.
	ExpectedGroupSynonyms map[string]string `yaml:"expected_group_synonyms"`

	// MonthLetters maps a calendar month to the letter encoded in the
	// 3rd character of the OEM reference identifier.
	MonthLetters map[int]string `yaml:"month_letters"`

	// SimilarityThreshold is the 0-100 fuzzy-match cutoff for the
	// subpart name/number consistency check.
	SimilarityThreshold int `yaml:"similarity_threshold"`

	// ControlUnitEZKL is assigned when a batch part name mentions a
	// control unit but no class could be resolved from the ledger.
	ControlUnitEZKL string `yaml:"control_unit_ezkl"`

	// ControlUnitLedgerClass overrides the EZKL of historical ledger
	// rows whose part name mentions a control unit.
	ControlUnitLedgerClass string `yaml:"control_unit_ledger_class"`

	// ControlUnitRatio/ControlUnitSince define the synthetic contract
	// row ensured for the control-unit class.
	ControlUnitRatio float64   `yaml:"control_unit_ratio"`
	ControlUnitSince time.Time `yaml:"control_unit_since"`

	// Contract override rows excluded from the equality-based burden
	// check: the LS class at the superseded 1.5 ratio, and HDEV5 rows
	// that do not carry the textual partial-50% clause.
	LSExcludedRatio  float64 `yaml:"ls_excluded_ratio"`
	HDEV5RatioMarker string  `yaml:"hdev5_ratio_marker"`

	// HDEV5 special-case part lists (matched as substrings of the
	// customer part number, as the source files sometimes pack several
	// numbers into one cell).
	HDEV5HybridParts []string `yaml:"hdev5_hybrid_parts"`
	HDEV5FixedParts  []string `yaml:"hdev5_fixed_parts"`

	// HDEV5HybridSplit is the manufacture-date boundary between the
	// legacy [2.4,3.4] band and the [49.5,50.5] band for H-category
	// hybrid parts.
	HDEV5HybridSplit time.Time `yaml:"hdev5_hybrid_split"`

	// SpecialHDEV6Part is force-assigned to HDEV6 when its class is
	// otherwise unresolved.
	SpecialHDEV6Part string `yaml:"special_hdev6_part"`

	// HDEV6 countermeasure and amount-threshold rule constants.
	HDEV6MFDCutoff     time.Time `yaml:"hdev6_mfd_cutoff"`
	HDEV6AmountMin     float64   `yaml:"hdev6_amount_min"`
	HDEV6AmountMax     float64   `yaml:"hdev6_amount_max"`
	HDEV6ExcludedMains []string  `yaml:"hdev6_excluded_mains"`
	// Excluded main parts skip the HDEV6 flags but must carry exactly
	// this burden ratio.
	HDEV6ExcludedRatio float64 `yaml:"hdev6_excluded_ratio"`

	// High Denied Paid Ratio gate.
	HighDPRMinObjections int     `yaml:"high_dpr_min_objections"`
	HighDPRThreshold     float64 `yaml:"high_dpr_threshold"`

	// DefaultWarrantyMonths substitutes an unparseable contracted
	// warranty length.
	DefaultWarrantyMonths float64 `yaml:"default_warranty_months"`

	// PrefixLength is the part-number prefix width for EZKL lookups.
	PrefixLength int `yaml:"prefix_length"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		OEM:     "NISSAN",
		Workers: 4,
		Output: OutputConfig{
			LegacyClaimColumn: "Judgement.1",
		},
		Rules: RulesConfig{
			LedgerCutoff: date(2021, 1, 1),
			SentinelKey:  "M",
			Divisions:    []string{"PS(GS)", "PS(DS)", "P"},
			PartNameExclusions: []string{
				"cp1h recall",
				"retroactive settlement for new burden ratio",
				"ecm campaign cost",
			},
			SupersededEZKLMarker: "(S)",
			EZKLReplacements: map[string]string{
				"HDEV":   "HDEV5",
				"EKP/T":  "EKPT",
				"EGT-PC": "EGT-PC(DM3.4)",
				"EV(Do)": "EV",
			},
			PartGroupPatterns: map[string]string{
				"A6600": "INJECTOR",
				"13276": "INJECTOR",
				"13270": "INJECTOR",
				"14710": "INJECTOR",
				"16672": "INJECTOR",
				"14035": "Injection Valve",
				"21049": "Injection Valve",
				"16600": "Injection Valve",
				"14465": "Injection Valve",
				"16175": "Injection Valve",
				"16630": "High Pressure Pump",
				"16072": "Dosing module",
				"208S4": "Dosing module",
				"17040": "Fuel Pump Mounting Unit",
				"17342": "Fuel Pump Mounting Unit",
				"17343": "Fuel Pump Mounting Unit",
				"11065": "GLOW PLUG",
				"24009": "GLOW PLUG",
				"11067": "GLOW PLUG",
				"22790": "NOx sensor",
				"16618": "O-Ring",
				"16635": "O-Ring",
				"17521": "Supporting Disc",
				"17520": "Supporting Disc",
				"16612": "Supporting Disc",
				"25060": "Sensor Assembly",
				"23703": "CONTROL UNIT",
				"14722": "RAIL",
				"14735": "RAIL",
				"B08D0": "RAIL",
				"16683": "RAIL",
			},
			ExpectedGroupSynonyms: map[string]string{
				"fuel pump assy":       "fuel pump assembly",
				"fuel pump mount unit": "fuel pump mounting unit",
				"sensor assy":          "sensor assembly",
				"o2 sensor":            "oxygen sensor",
				"abs hydraulic":        "hydraulic unit / abs",
				"control unit":         "control unit",
				"controle unit":        "control unit",
				"camshaft sensor":      "camshaft position sensor",
				"brake master cyl":     "brake master cylinder",
				"wheel speed":          "wheel speed sensor",
			},
			MonthLetters: map[int]string{
				1: "L", 2: "A", 3: "B", 4: "C", 5: "D", 6: "E",
				7: "F", 8: "G", 9: "H", 10: "I", 11: "J", 12: "K",
			},
			SimilarityThreshold:    90,
			ControlUnitEZKL:        "ECU-PC/GS",
			ControlUnitLedgerClass: "Control Unit",
			ControlUnitRatio:       0.5,
			ControlUnitSince:       date(2021, 1, 1),
			LSExcludedRatio:        1.5,
			HDEV5RatioMarker:       "5.5 (partial 50%)",
			HDEV5HybridParts: []string{
				"166001VA0A", "166001VA0B", "166001VA0C",
			},
			HDEV5FixedParts: []string{
				"166005CA0A", "166006MR0B", "166006MR0C",
			},
			HDEV5HybridSplit:     date(2021, 7, 1),
			SpecialHDEV6Part:     "166006RC1C",
			HDEV6MFDCutoff:       date(2023, 4, 1),
			HDEV6AmountMin:       120000,
			HDEV6AmountMax:       200000,
			HDEV6ExcludedMains:   []string{"166007JA1A"},
			HDEV6ExcludedRatio:   50,
			HighDPRMinObjections: 10,
			HighDPRThreshold:     0.90,
			DefaultWarrantyMonths: 100,
			PrefixLength:         10,
		},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
