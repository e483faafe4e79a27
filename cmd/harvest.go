// Harvest command.
// This is the main command that orchestrates the pipeline:
// discover → fetch → parse → gate → write or import.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/output"
	"github.com/kevinaugment/laserspechub/core/pipeline"
	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Discover, extract and import equipment records",
	Long: `Harvest discovers candidate pages for every catalog brand, extracts the
equipment specs, and keeps the records that pass the quality gate. Records
are POSTed to the import service, or written to a file with --dry/--output.

Examples:
  laserspec harvest --dry
  laserspec harvest --brand Bodor --output out/bodor.csv
  laserspec harvest --seeds seeds.json --import-url http://localhost:3000/api/admin/import`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	targets, err := rt.discover(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Found %d targets to process\n", len(targets))

	p := pipeline.New(rt.catalog, rt.fetcher, cfg.Thresholds(), pipeline.Options{
		Concurrency: cfg.Concurrency,
		Metrics:     rt.metrics,
		Logger:      logger,
	})
	records, err := p.Run(ctx, targets)
	if err != nil {
		return err
	}
	logger.Info("harvest complete", "records", len(records), "targets", len(targets))
	if ctx.Err() != nil {
		logger.Warn("interrupted, writing records admitted so far", "records", len(records))
	}

	// Admitted records are delivered even after an interrupt.
	return deliver(context.WithoutCancel(ctx), cmd, records)
}

func deliver(ctx context.Context, cmd *cobra.Command, records []core.EquipmentRecord) error {
	if cfg.FileMode() {
		path, err := output.New(cfg.Output).Write(records)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s (%d records)\n", path, len(records))
		return nil
	}

	res, err := output.NewImporter(cfg.ImportURL).Import(ctx, records)
	if err != nil {
		return fmt.Errorf("importing %d records: %w", len(records), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported: %d inserted, %d updated\n", res.Inserted, res.Updated)
	return nil
}
