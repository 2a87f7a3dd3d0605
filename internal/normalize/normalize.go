// Package normalize canonicalizes the identifiers, dates and free text
// found in OEM claim files. Every function is total: malformed input
// yields a nil result, never an error, so a single bad cell can not
// abort a batch.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is the spreadsheet date epoch (day 0 = 1899-12-30).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	nonAlnumRe  = regexp.MustCompile(`[^0-9A-Za-z]`)
	alnumRunRe  = regexp.MustCompile(`^[0-9A-Za-z]{8,12}`)
	yearRe      = regexp.MustCompile(`^\d{4}$`)
	yearMonthRe = regexp.MustCompile(`^\d{4}/\d{1,2}$`)
	numberRe    = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// generalLayouts are the date layouts accepted by the fallback parser,
// most specific first.
var generalLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01",
}

// PartNumber canonicalizes a supplier part number: trims whitespace,
// strips the trailing ".0" float artifact left by spreadsheet exports
// and removes embedded spaces. Empty input yields nil.
func PartNumber(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, ".0")
	s = strings.ReplaceAll(s, " ", "")
	return &s
}

// AlnumPartNumber strips every non-alphanumeric character and keeps the
// leading run of 8-12 alphanumerics, dropping trailing suffix codes.
// When no such run exists the full stripped string is returned; empty
// input yields nil.
func AlnumPartNumber(raw string) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	s := nonAlnumRe.ReplaceAllString(raw, "")
	if s == "" {
		return nil
	}
	if m := alnumRunRe.FindString(s); m != "" {
		return &m
	}
	return &s
}

// FlexibleDate parses the mixed date encodings seen in installation-date
// columns: spreadsheet serial day numbers, "YYYY/MM" strings, then the
// general layouts. Unparsable input yields nil.
func FlexibleDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if numberRe.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		t := serialEpoch.AddDate(0, 0, int(f))
		return &t
	}
	if yearMonthRe.MatchString(s) {
		if t, err := time.Parse("2006/1", s); err == nil {
			return &t
		}
		return nil
	}
	return parseGeneral(s)
}

// VehicleManufactureDate parses the manufacture-date column, which may
// carry a bare 4-digit year (mapped to January 1st), a "YYYY/MM" value
// (mapped to day 1) or a full date. Empty or unparsable input yields
// nil.
func VehicleManufactureDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	// Spreadsheet exports render year cells as floats ("2018.0").
	s = strings.TrimSuffix(s, ".0")
	if yearRe.MatchString(s) {
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}
	if yearMonthRe.MatchString(s) {
		if t, err := time.Parse("2006/1", s); err == nil {
			return &t
		}
		return nil
	}
	return parseGeneral(s)
}

// Date parses a plain date cell using the general layouts only. Empty
// or unparsable input yields nil.
func Date(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return parseGeneral(s)
}

func parseGeneral(s string) *time.Time {
	for _, layout := range generalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}
