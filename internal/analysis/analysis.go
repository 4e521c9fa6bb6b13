package analysis

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/energy-cli/internal/config"
	"github.com/sells-group/energy-cli/internal/model"
)

// Run computes correlations, multicollinearity and target autocorrelation,
// then fits the full OLS model, the regression tree and the time-split
// evaluation concurrently. rows must be in ascending year order.
func Run(ctx context.Context, rows []model.CleanRow, cfg config.AnalysisConfig) (*model.Results, error) {
	start := time.Now()
	cfg = withDefaults(cfg)

	ds, err := Extract(rows, cfg.Target, cfg.Features)
	if err != nil {
		return nil, err
	}
	if err := ds.requireRows(minRows); err != nil {
		return nil, err
	}

	res := &model.Results{
		Rows:      ds.Len(),
		FirstYear: ds.Years[0],
		LastYear:  ds.Years[ds.Len()-1],
		Target:    cfg.Target,
		Features:  cfg.Features,
	}

	if res.Correlations, err = Correlations(rows, cfg.Target, cfg.CorrelationPredictors, cfg.Alpha); err != nil {
		return nil, err
	}
	if res.Multicollinearity, err = Multicollinearity(rows, cfg.CorrelationPredictors); err != nil {
		return nil, err
	}
	res.Autocorrelation = Autocorrelation(Series(rows, cfg.Target), cfg.AutocorrLag)

	lin := LinearOptions{Scale: cfg.Scale}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		local := ds.Slice(0, ds.Len())
		m, err := FitLinear(local.X, local.Y, local.Features, lin)
		if err != nil {
			return eris.Wrap(err, "analysis: full model")
		}
		res.FullModel = m.Result(local.X, local.Y)
		res.FullModel.Years = local.Years
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		local := ds.Slice(0, ds.Len())
		t, err := FitTree(local.X, local.Y, local.Features, TreeOptions{
			MaxDepth: cfg.MaxDepth,
			Seed:     cfg.Seed,
		})
		if err != nil {
			return eris.Wrap(err, "analysis: decision tree")
		}
		res.DecisionTree = t.Result(local.X, local.Y)
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		split, err := EvaluateTimeSplit(ds.Slice(0, ds.Len()), TimeSplitOptions{
			TestFraction:   cfg.TestFraction,
			BreakThreshold: cfg.BreakThreshold,
			Linear:         lin,
		})
		if err != nil {
			return err
		}
		res.TimeSplit = split
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("analysis: complete",
		zap.Int("rows", res.Rows),
		zap.Float64("full_r2", res.FullModel.Metrics.R2),
		zap.Float64("tree_r2", res.DecisionTree.Metrics.R2),
		zap.Bool("structural_break", res.TimeSplit.StructuralBreak),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// withDefaults fills the column selections and model knobs left empty.
// TestFraction and BreakThreshold are taken as given: zero is a valid
// threshold, and config.Load already defaults both.
func withDefaults(cfg config.AnalysisConfig) config.AnalysisConfig {
	if cfg.Target == "" {
		cfg.Target = model.ColCO2Intensity
	}
	if len(cfg.Features) == 0 {
		cfg.Features = []string{model.ColFossilShare, model.ColRenewableShare}
	}
	if len(cfg.CorrelationPredictors) == 0 {
		cfg.CorrelationPredictors = []string{model.ColFossilShare, model.ColRenewableShare, model.ColNuclearShare}
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.AutocorrLag == 0 {
		cfg.AutocorrLag = 1
	}
	return cfg
}
