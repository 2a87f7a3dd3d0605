// Audit program for the historical claim ledger. It runs the same
// filtering and deduplication the monthly adjudication uses and prints
// what survives, so data-quality problems can be inspected without
// running a full batch.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/dataset"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/ledger"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
)

func main() {
	ledgerPath := flag.String("ledger", "", "historical claim ledger CSV")
	cutoff := flag.String("cutoff", "", "audit cutoff date, YYYY-MM-DD (default today)")
	oem := flag.String("oem", "", "manufacturer scope override")
	flag.Parse()

	if *ledgerPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ledger-audit --ledger ledger.csv [--cutoff YYYY-MM-DD]")
		os.Exit(2)
	}

	batchDate := time.Now().UTC().Truncate(24 * time.Hour)
	if *cutoff != "" {
		parsed, err := time.Parse("2006-01-02", *cutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --cutoff %q: %v\n", *cutoff, err)
			os.Exit(2)
		}
		batchDate = parsed
	}

	cfg := model.DefaultConfig()
	if *oem != "" {
		cfg.OEM = *oem
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "ledger-audit"})

	table, err := dataset.ReadTable(*ledgerPath)
	if err != nil {
		logger.Fatal("read ledger", "err", err)
	}
	entries := dataset.DecodeLedger(table)

	result, err := ledger.NewReconciler(cfg, logger).Reconcile(entries, batchDate)
	if err != nil {
		logger.Fatal("reconcile", "err", err)
	}

	fmt.Printf("Ledger rows:          %d\n", len(entries))
	fmt.Printf("Surviving entries:    %d\n", len(result.Entries))
	fmt.Printf("Part-number prefixes: %d\n", result.Index.Len())
	fmt.Printf("Domestic mean/std:    %.2f / %.2f\n",
		result.Stats.Domestic.Mean, result.Stats.Domestic.Std)
	fmt.Printf("Overseas mean/std:    %.2f / %.2f\n",
		result.Stats.Overseas.Mean, result.Stats.Overseas.Std)
	if result.Stats.HasRegToFailureLag {
		fmt.Printf("Reg-to-failure lag:   %.0f days\n",
			result.Stats.RegToFailureLag.Hours()/24)
	}
	fmt.Printf("Classes with denial history: %d\n", len(result.Stats.DeniedByEZKL))
	if result.Anomalies > 0 {
		fmt.Printf("\n⚠ %d objection IDs still map to multiple entries after deduplication\n",
			result.Anomalies)
		os.Exit(1)
	}
	fmt.Println("\n✓ No duplicate objection IDs after deduplication")
}
