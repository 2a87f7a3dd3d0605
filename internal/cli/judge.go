package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/pipeline"
)

var (
	claimsPath    string
	ledgerPath    string
	contractsPath string
	templatePath  string
	outPath       string
	aggregatePath string
	claimDate     string
	oemName       string
	workers       int
)

// judgeCmd represents the judge command
var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Adjudicate one monthly claim batch",
	Long: `Judge runs the full adjudication pass over one monthly claim batch:
- Reconcile the historical ledger up to the batch date
- Resolve assignment classes from supplier part numbers
- Enrich claims with outlier, warranty and denial-history features
- Check burden ratios against the contract tables
- Mark objection candidates and write the reviewer worksheet

Example:
  warranty-judge judge --claims claims_2024_05.csv --ledger ledger.csv \
    --contracts burden_ratios.csv --claim-date 2024-05-01 --out result.csv`,
	RunE: runJudge,
}

func init() {
	rootCmd.AddCommand(judgeCmd)

	judgeCmd.Flags().StringVar(&claimsPath, "claims", "", "monthly claim batch CSV (required)")
	judgeCmd.Flags().StringVar(&ledgerPath, "ledger", "", "historical claim ledger CSV (required)")
	judgeCmd.Flags().StringVar(&contractsPath, "contracts", "", "burden-ratio contract CSV (required)")
	judgeCmd.Flags().StringVar(&templatePath, "template", "", "reporting template CSV (optional)")
	judgeCmd.Flags().StringVar(&outPath, "out", "result.csv", "output worksheet path")
	judgeCmd.Flags().StringVar(&aggregatePath, "aggregate", "", "running aggregate CSV to update (optional)")
	judgeCmd.Flags().StringVar(&claimDate, "claim-date", "", "batch date, YYYY-MM-DD (required)")
	judgeCmd.Flags().StringVar(&oemName, "oem", "", "override the manufacturer scope")
	judgeCmd.Flags().IntVar(&workers, "workers", 0, "adjudication worker count (0 = config default)")

	_ = judgeCmd.MarkFlagRequired("claims")
	_ = judgeCmd.MarkFlagRequired("ledger")
	_ = judgeCmd.MarkFlagRequired("contracts")
	_ = judgeCmd.MarkFlagRequired("claim-date")
}

func runJudge(cmd *cobra.Command, args []string) error {
	batchDate, err := time.Parse("2006-01-02", claimDate)
	if err != nil {
		return fmt.Errorf("invalid --claim-date %q: %w", claimDate, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if oemName != "" {
		cfg.OEM = oemName
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	logger := newLogger()
	if verbose {
		fmt.Fprintf(os.Stderr, "Claims:    %s\n", claimsPath)
		fmt.Fprintf(os.Stderr, "Ledger:    %s\n", ledgerPath)
		fmt.Fprintf(os.Stderr, "Contracts: %s\n", contractsPath)
		fmt.Fprintf(os.Stderr, "Date:      %s\n", batchDate.Format("2006-01-02"))
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, logger)
	summary, err := p.Run(context.Background(), pipeline.RunInput{
		ClaimsPath:    claimsPath,
		LedgerPath:    ledgerPath,
		ContractsPath: contractsPath,
		TemplatePath:  templatePath,
		OutPath:       outPath,
		AggregatePath: aggregatePath,
		BatchDate:     batchDate,
	})
	if err != nil {
		return fmt.Errorf("judge failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Adjudicated %d claims\n", summary.Rows)
	fmt.Fprintf(os.Stderr, "✓ Objection candidates: %d (%d by denial history)\n", summary.Objected, summary.ObjectedDPR)
	fmt.Fprintf(os.Stderr, "✓ Subpart mismatches: %d\n", summary.Subparts)
	if summary.Anomalies > 0 {
		fmt.Fprintf(os.Stderr, "! Ledger anomalies left after deduplication: %d\n", summary.Anomalies)
	}
	fmt.Fprintf(os.Stderr, "✓ Worksheet written to %s\n", outPath)
	return nil
}
