package model

import (
	"math"
	"time"
)

// AmountStats is the sample mean and standard deviation of claimed
// amounts over one population slice.
type AmountStats struct {
	Count int
	Mean  float64
	Std   float64
}

// Threshold returns mean + k sigma, or +Inf when the slice is too small
// to carry a meaningful deviation, so nothing is flagged against it.
func (s AmountStats) Threshold(k float64) float64 {
	if s.Count < 2 {
		return math.Inf(1)
	}
	return s.Mean + k*s.Std
}

// DeniedRatio holds the per-EZKL objection outcome counts and the
// derived Denied Paid Ratio.
type DeniedRatio struct {
	Denied     int // "Denied Claim": objection accepted, claim denied
	DeniedPaid int // "Denied Paid Claim": objection rejected, claim paid
}

// Total is the number of historical objections for the class.
func (d DeniedRatio) Total() int {
	return d.Denied + d.DeniedPaid
}

// Ratio is DeniedPaid / (Denied + DeniedPaid), 0 when both counts are 0.
func (d DeniedRatio) Ratio() float64 {
	if d.Denied == 0 && d.DeniedPaid == 0 {
		return 0
	}
	return float64(d.DeniedPaid) / float64(d.Denied+d.DeniedPaid)
}

// LedgerStats is the aggregate output of ledger reconciliation, computed
// once per run and threaded read-only into enrichment.
type LedgerStats struct {
	Amount   AmountStats
	Domestic AmountStats
	Overseas AmountStats

	// Mean elapsed time between vehicle registration and failure over
	// the reconciled ledger, used to approximate missing manufacture
	// dates.
	RegToFailureLag    time.Duration
	HasRegToFailureLag bool

	DeniedByEZKL map[string]DeniedRatio
}

// SegmentStats returns the amount stats for the given segment code, or
// false when the segment is unknown.
func (s *LedgerStats) SegmentStats(segment string) (AmountStats, bool) {
	switch segment {
	case SegmentDomestic:
		return s.Domestic, true
	case SegmentOverseas:
		return s.Overseas, true
	}
	return AmountStats{}, false
}

// BatchStats holds the per-EZKL-class amount statistics computed over
// the current claim batch. Recomputed every run, never carried across
// months.
type BatchStats struct {
	ByEZKL map[string]AmountStats
	Counts map[string]int
}

// ComputeAmountStats computes sample mean and standard deviation.
func ComputeAmountStats(amounts []float64) AmountStats {
	n := len(amounts)
	if n == 0 {
		return AmountStats{}
	}
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(n)
	if n < 2 {
		return AmountStats{Count: n, Mean: mean}
	}
	var ss float64
	for _, a := range amounts {
		d := a - mean
		ss += d * d
	}
	return AmountStats{
		Count: n,
		Mean:  mean,
		Std:   math.Sqrt(ss / float64(n-1)),
	}
}
