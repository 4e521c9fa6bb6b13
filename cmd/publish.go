package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/energy-cli/internal/config"
	"github.com/sells-group/energy-cli/internal/db"
	"github.com/sells-group/energy-cli/internal/loader"
	"github.com/sells-group/energy-cli/internal/prepare"
	"github.com/sells-group/energy-cli/internal/store"
	"github.com/sells-group/energy-cli/internal/warehouse"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the clean panel and latest run metrics to Postgres",
	Long:  "Rebuilds the clean annual panel from the raw tables, upserts it into the warehouse keyed by year, and appends the latest complete run's model metrics.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("publish"); err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.Warehouse.DatabaseURL, nil)
		if err != nil {
			return eris.Wrap(err, "publish: connect")
		}
		defer pool.Close()

		var st store.Store
		if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
			s, err := initStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		return runPublish(ctx, pool, st, cfg, os.Stdout)
	},
}

func init() {
	publishCmd.Flags().Bool("metrics", true, "also publish the latest complete run's metrics")
	rootCmd.AddCommand(publishCmd)
}

// runPublish migrates the warehouse and writes the panel. A nil store skips metrics.
func runPublish(ctx context.Context, pool db.Pool, st store.Store, c *config.Config, w io.Writer) error {
	table := c.Warehouse.Table
	if table == "" {
		table = warehouse.DefaultTable
	}

	energy, co2, err := loader.LoadPair(ctx, c.Data.RawDir, c.Data.EnergyFile, c.Data.CO2File)
	if err != nil {
		return err
	}
	rows, err := prepare.PrepareFullDataset(energy, co2)
	if err != nil {
		return eris.Wrap(err, "publish: prepare")
	}

	if err := warehouse.Migrate(ctx, pool, table); err != nil {
		return err
	}
	n, err := warehouse.PublishPanel(ctx, pool, table, rows)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "upserted %d rows into %s\n", n, table)

	if st == nil {
		return nil
	}
	run, err := st.LatestRun(ctx)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Warn("publish: no complete run, skipping metrics")
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "publish: latest run")
	}
	if run.Results == nil {
		return eris.Errorf("publish: run %s has no results", run.ID)
	}
	m, err := warehouse.PublishMetrics(ctx, pool, table, run.ID, run.Results)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "appended %d metrics for run %s into %s\n", m, truncateID(run.ID), warehouse.MetricsTable(table))
	return nil
}
