// Package pipeline orchestrates one monthly adjudication run: decode
// the input tables, reconcile the ledger, enrich the claim batch,
// adjudicate every row, and write the schema-aligned result plus the
// running aggregate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/dataset"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/enrich"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/ledger"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/model"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/rules"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/taxonomy"
	"github.com/gabrielmenz/warranty-claim-pipeline-synthetic/internal/worker"
)

// Pipeline wires the adjudication stages together.
type Pipeline struct {
	cfg        *model.Config
	reconciler *ledger.Reconciler
	enricher   *enrich.Enricher
	engine     *rules.Engine
	pool       *worker.Pool
	log        *log.Logger
}

// NewPipeline creates a pipeline from the run configuration.
func NewPipeline(cfg *model.Config, logger *log.Logger) *Pipeline {
	resolver := taxonomy.NewResolver(&cfg.Rules)
	return &Pipeline{
		cfg:        cfg,
		reconciler: ledger.NewReconciler(cfg, logger),
		enricher:   enrich.NewEnricher(cfg, logger),
		engine:     rules.NewEngine(cfg, resolver),
		pool:       worker.NewPool(cfg.Workers),
		log:        logger,
	}
}

// RunInput names the files of one monthly run. TemplatePath and
// AggregatePath are optional; without them the result keeps its native
// column order and no aggregate is maintained.
type RunInput struct {
	ClaimsPath    string
	LedgerPath    string
	ContractsPath string
	TemplatePath  string
	OutPath       string
	AggregatePath string
	BatchDate     time.Time
}

// Summary reports what one run did.
type Summary struct {
	Rows        int
	Objected    int
	ObjectedDPR int
	Subparts    int
	Anomalies   int
}

// Run executes one full adjudication run.
func (p *Pipeline) Run(ctx context.Context, in RunInput) (*Summary, error) {
	if in.BatchDate.IsZero() {
		return nil, fmt.Errorf("pipeline: batch date is required")
	}

	claimsTable, err := dataset.ReadTable(in.ClaimsPath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	ledgerTable, err := dataset.ReadTable(in.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	contractsTable, err := dataset.ReadTable(in.ContractsPath)
	if err != nil {
		return nil, fmt.Errorf("read contracts: %w", err)
	}

	batch := dataset.DecodeClaimBatch(claimsTable)
	entries := dataset.DecodeLedger(ledgerTable)
	contractRows := dataset.DecodeContracts(contractsTable)

	p.log.Info("inputs decoded",
		"claims", len(batch), "ledger", len(entries), "contracts", len(contractRows))

	reconciled, err := p.reconciler.Reconcile(entries, in.BatchDate)
	if err != nil {
		return nil, fmt.Errorf("reconcile ledger: %w", err)
	}
	crossOEM := ledger.BuildCrossOEMIndex(entries, p.cfg.Rules.PrefixLength)
	contracts := enrich.PrepareContracts(contractRows, &p.cfg.Rules)

	enriched, _, err := p.enricher.Enrich(enrich.Input{
		Batch:     batch,
		Ledger:    reconciled,
		CrossOEM:  crossOEM,
		Contracts: contracts,
		BatchDate: in.BatchDate,
	})
	if err != nil {
		return nil, fmt.Errorf("enrich batch: %w", err)
	}

	err = p.pool.Run(ctx, len(enriched), func(_ context.Context, i int) error {
		p.engine.Adjudicate(&enriched[i])
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adjudicate: %w", err)
	}
	p.engine.SubpartConsistency(enriched)

	result := dataset.EncodeResults(enriched, in.BatchDate)
	if in.TemplatePath != "" {
		result, err = p.alignToTemplate(result, in.TemplatePath)
		if err != nil {
			return nil, err
		}
	}
	if err := dataset.WriteTable(result, in.OutPath); err != nil {
		return nil, fmt.Errorf("write result: %w", err)
	}

	if in.AggregatePath != "" {
		if err := p.updateAggregate(result, in.AggregatePath, in.BatchDate); err != nil {
			return nil, err
		}
	}

	sum := summarize(enriched)
	sum.Anomalies = reconciled.Anomalies
	p.log.Info("run finished",
		"rows", sum.Rows, "objected", sum.Objected,
		"objected_dpr", sum.ObjectedDPR, "subparts", sum.Subparts,
		"ledger_anomalies", sum.Anomalies)
	return sum, nil
}

// alignToTemplate reorders the result to the reporting template and
// mirrors the claim verdict into the legacy review column.
func (p *Pipeline) alignToTemplate(result *dataset.Table, templatePath string) (*dataset.Table, error) {
	columns, err := dataset.ReadTemplateColumns(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	mapping := map[string]string{
		p.cfg.Output.LegacyClaimColumn: dataset.ColClaim,
	}
	return result.AlignToTemplate(columns, mapping, ""), nil
}

func (p *Pipeline) updateAggregate(result *dataset.Table, path string, batchDate time.Time) error {
	aggregate, err := dataset.ReadTable(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read aggregate: %w", err)
		}
		aggregate = nil
	}
	merged := dataset.MergeAggregate(aggregate, result, batchDate.Format("2006-01-02"))
	if err := dataset.WriteTable(merged, path); err != nil {
		return fmt.Errorf("write aggregate: %w", err)
	}
	return nil
}

func summarize(batch []model.ClaimRecord) *Summary {
	sum := &Summary{Rows: len(batch)}
	for i := range batch {
		v := batch[i].Verdict
		if v.Claim == 1 {
			sum.Objected++
		}
		if v.ClaimDPR == 1 {
			sum.ObjectedDPR++
		}
		if v.Subpart == model.SubpartObject {
			sum.Subparts++
		}
	}
	return sum
}
