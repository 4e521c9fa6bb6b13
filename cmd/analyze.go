package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/energy-cli/internal/analysis"
	"github.com/sells-group/energy-cli/internal/config"
	"github.com/sells-group/energy-cli/internal/loader"
	"github.com/sells-group/energy-cli/internal/metrics"
	"github.com/sells-group/energy-cli/internal/model"
	"github.com/sells-group/energy-cli/internal/prepare"
	"github.com/sells-group/energy-cli/internal/report"
	"github.com/sells-group/energy-cli/internal/store"
)

// Output artifact names.
const (
	cleanDataFile = "clean_energy_co2_data.csv"
	workbookFile  = "energy_co2_results.xlsx"
	bundleBase    = "results"
	figuresDir    = "figures"
)

type analyzeOptions struct {
	SkipFigures bool
	Format      string
	NoRecord    bool
}

// analyzeOutput lists what one analysis run produced.
type analyzeOutput struct {
	RunID     string
	CleanPath string
	Files     []string
	Rows      []model.CleanRow
	Results   *model.Results
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full energy structure vs. CO2 intensity analysis",
	Long:  "Loads the raw MER tables, builds the clean annual dataset, fits the models, and writes the report, figures, workbook and result bundle.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		opts := analyzeOptions{}
		opts.SkipFigures, _ = cmd.Flags().GetBool("no-figures")
		opts.Format, _ = cmd.Flags().GetString("format")
		opts.NoRecord, _ = cmd.Flags().GetBool("no-record")

		var st store.Store
		if !opts.NoRecord {
			s, err := initStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			st = s
		}

		out, err := runAnalyze(ctx, cfg, st, metrics.NewCollector(), os.Stdout, opts)
		if err != nil {
			return err
		}

		zap.L().Info("analysis complete",
			zap.String("run_id", out.RunID),
			zap.String("clean_data", out.CleanPath),
			zap.Int("files", len(out.Files)),
		)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("no-figures", false, "skip PNG figure generation")
	analyzeCmd.Flags().String("format", report.FormatJSON, "result bundle format (json, yaml)")
	analyzeCmd.Flags().Bool("no-record", false, "do not record the run in the store")
	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze executes one recorded analysis run. A nil store skips recording.
func runAnalyze(ctx context.Context, c *config.Config, st store.Store, mc *metrics.Collector, w io.Writer, opts analyzeOptions) (*analyzeOutput, error) {
	energyPath := filepath.Join(c.Data.RawDir, c.Data.EnergyFile)
	co2Path := filepath.Join(c.Data.RawDir, c.Data.CO2File)
	if err := checkInputs(energyPath, co2Path); err != nil {
		mc.RecordRun(string(model.RunStatusFailed))
		return nil, err
	}

	var runID string
	if st != nil {
		run, err := st.CreateRun(ctx, energyPath, co2Path)
		if err != nil {
			return nil, eris.Wrap(err, "analyze: create run")
		}
		runID = run.ID
	}

	out, err := analyzePipeline(ctx, c, mc, w, opts)
	if err != nil {
		mc.RecordRun(string(model.RunStatusFailed))
		if st != nil {
			if ferr := st.FailRun(ctx, runID, err); ferr != nil {
				zap.L().Error("analyze: record failure", zap.String("run_id", runID), zap.Error(ferr))
			}
		}
		return nil, err
	}
	out.RunID = runID

	if st != nil {
		if err := st.CompleteRun(ctx, runID, out.Results); err != nil {
			return out, eris.Wrap(err, "analyze: complete run")
		}
	}
	mc.RecordRun(string(model.RunStatusComplete))
	return out, nil
}

func analyzePipeline(ctx context.Context, c *config.Config, mc *metrics.Collector, w io.Writer, opts analyzeOptions) (*analyzeOutput, error) {
	log := zap.L().With(zap.String("raw_dir", c.Data.RawDir))

	// Load and profile
	energy, co2, err := loader.LoadPair(ctx, c.Data.RawDir, c.Data.EnergyFile, c.Data.CO2File)
	if err != nil {
		return nil, err
	}
	mc.RecordRows("raw_energy", len(energy.Records))
	mc.RecordRows("raw_co2", len(co2.Records))

	for _, tbl := range []*model.RawTable{energy, co2} {
		p := loader.ProfileTable(tbl)
		log.Info("raw profile",
			zap.String("table", p.Name),
			zap.Int("rows", p.Rows),
			zap.Int("not_available", p.NotAvailableCount),
			zap.Bool("mixed_granularity", p.MixedGranularity),
		)
	}

	// Prepare
	rows, err := prepare.PrepareFullDataset(energy, co2)
	if err != nil {
		return nil, eris.Wrap(err, "analyze: prepare")
	}
	mc.RecordRows("clean", len(rows))

	out := &analyzeOutput{
		CleanPath: filepath.Join(c.Data.ProcessedDir, cleanDataFile),
		Rows:      rows,
	}
	if err := prepare.WriteCSV(rows, out.CleanPath); err != nil {
		return nil, err
	}
	out.Files = append(out.Files, out.CleanPath)

	// Analyze
	timer := mc.NewTimer(mc.AnalysisDuration)
	res, err := analysis.Run(ctx, rows, c.Analysis)
	elapsed := timer.ObserveDuration()
	if err != nil {
		return nil, eris.Wrap(err, "analyze: models")
	}
	out.Results = res
	log.Debug("models fitted", zap.Duration("elapsed", elapsed))

	report.WriteSummary(w, rows, res)

	// Artifacts
	if !opts.SkipFigures {
		figs, err := report.WriteFigures(filepath.Join(c.Data.OutputDir, figuresDir), rows, res)
		if err != nil {
			return nil, err
		}
		out.Files = append(out.Files, figs...)
	}

	wb := filepath.Join(c.Data.OutputDir, workbookFile)
	if err := report.WriteWorkbook(wb, rows, res); err != nil {
		return nil, err
	}
	out.Files = append(out.Files, wb)

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = report.FormatJSON
	}
	bundle := filepath.Join(c.Data.OutputDir, bundleBase+"."+format)
	if err := report.SaveBundle(bundle, res); err != nil {
		return nil, err
	}
	out.Files = append(out.Files, bundle)

	return out, nil
}

// checkInputs logs each missing raw file and fails with the expected list.
func checkInputs(paths ...string) error {
	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			zap.L().Error("raw data file not found", zap.String("path", p))
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return eris.Wrapf(loader.ErrFileNotFound, "analyze: data files not found, expected %s (run `energy-cli fetch`)",
		strings.Join(paths, ", "))
}
