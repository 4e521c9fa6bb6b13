package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/energy-cli/internal/config"
	"github.com/sells-group/energy-cli/internal/model"
)

func defaultAnalysis() config.AnalysisConfig {
	return config.AnalysisConfig{
		Target:                model.ColCO2Intensity,
		Features:              []string{model.ColFossilShare, model.ColRenewableShare},
		CorrelationPredictors: []string{model.ColFossilShare, model.ColRenewableShare, model.ColNuclearShare},
		Alpha:                 0.05,
		MaxDepth:              4,
		Seed:                  42,
		TestFraction:          0.2,
		BreakThreshold:        5,
		AutocorrLag:           1,
	}
}

func TestRun_LinearPanel(t *testing.T) {
	res, err := Run(context.Background(), linearPanel(10), defaultAnalysis())
	require.NoError(t, err)

	assert.Equal(t, 10, res.Rows)
	assert.Equal(t, 1980, res.FirstYear)
	assert.Equal(t, 1989, res.LastYear)

	assert.InDelta(t, 1.0, res.FullModel.Metrics.R2, 1e-9)
	assert.Less(t, res.FullModel.Coefficients[model.ColFossilShare], 0.0)
	assert.Len(t, res.FullModel.Predictions, 10)
	assert.Equal(t, 1980, res.FullModel.Years[0])

	assert.Len(t, res.Correlations, 3)
	assert.True(t, res.Correlations[model.ColFossilShare].Significant)
	assert.Len(t, res.Multicollinearity, 3)
	assert.True(t, res.Autocorrelation.Valid)

	assert.Len(t, res.DecisionTree.FeatureImportance, 2)
	assert.LessOrEqual(t, res.DecisionTree.Depth, 4)

	assert.Equal(t, 8, res.TimeSplit.TrainSize)
	assert.Equal(t, 2, res.TimeSplit.TestSize)
	assert.False(t, res.TimeSplit.StructuralBreak)
}

func TestRun_StructuralBreak(t *testing.T) {
	res, err := Run(context.Background(), shiftPanel(12), defaultAnalysis())
	require.NoError(t, err)
	assert.True(t, res.TimeSplit.StructuralBreak)
}

func TestRun_ListwiseDeletion(t *testing.T) {
	rows := linearPanel(12)
	rows[4].CO2Intensity = model.Missing
	rows[7].RenewableShare = model.Missing

	res, err := Run(context.Background(), rows, defaultAnalysis())
	require.NoError(t, err)
	assert.Equal(t, 10, res.Rows)
	assert.Equal(t, 10, res.TimeSplit.TrainSize+res.TimeSplit.TestSize)
}

func TestRun_InsufficientData(t *testing.T) {
	_, err := Run(context.Background(), linearPanel(2), defaultAnalysis())
	assert.ErrorContains(t, err, "insufficient data")
}

func TestRun_Deterministic(t *testing.T) {
	a, err := Run(context.Background(), shiftPanel(3), defaultAnalysis())
	require.NoError(t, err)
	b, err := Run(context.Background(), shiftPanel(3), defaultAnalysis())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, linearPanel(10), defaultAnalysis())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_DefaultsFillZeroConfig(t *testing.T) {
	res, err := Run(context.Background(), linearPanel(10), config.AnalysisConfig{
		Seed:           42,
		TestFraction:   DefaultTestFraction,
		BreakThreshold: DefaultBreakThreshold,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ColCO2Intensity, res.Target)
	assert.Equal(t, []string{model.ColFossilShare, model.ColRenewableShare}, res.Features)
}

func TestRun_ZeroBreakThreshold(t *testing.T) {
	cfg := defaultAnalysis()
	cfg.BreakThreshold = 0

	res, err := Run(context.Background(), shiftPanel(2), cfg)
	require.NoError(t, err)
	assert.True(t, res.TimeSplit.StructuralBreak)

	cfg.BreakThreshold = DefaultBreakThreshold
	res, err = Run(context.Background(), shiftPanel(2), cfg)
	require.NoError(t, err)
	assert.False(t, res.TimeSplit.StructuralBreak)
}

func TestRun_ZeroTestFractionRejected(t *testing.T) {
	cfg := defaultAnalysis()
	cfg.TestFraction = 0

	_, err := Run(context.Background(), linearPanel(10), cfg)
	assert.ErrorContains(t, err, "test fraction")
}

func TestRun_ConstantPredictor(t *testing.T) {
	rows := linearPanel(10)
	for i := range rows {
		rows[i].NuclearShare = model.Float(8)
	}

	res, err := Run(context.Background(), rows, defaultAnalysis())
	require.NoError(t, err)

	nuclear := res.Correlations[model.ColNuclearShare]
	assert.False(t, nuclear.Correlation.Valid)
	assert.False(t, nuclear.PValue.Valid)
	assert.False(t, nuclear.Significant)
	assert.Equal(t, 10, nuclear.N)
	assert.True(t, res.Correlations[model.ColFossilShare].Significant)

	assert.False(t, res.Multicollinearity[model.ColNuclearShare][model.ColFossilShare].Valid)
	assert.False(t, res.Multicollinearity[model.ColFossilShare][model.ColNuclearShare].Valid)
	assert.False(t, res.Multicollinearity[model.ColNuclearShare][model.ColNuclearShare].Valid)
	assert.Equal(t, model.Float(1), res.Multicollinearity[model.ColFossilShare][model.ColFossilShare])

	assert.InDelta(t, 1.0, res.FullModel.Metrics.R2, 1e-9)
	assert.Len(t, res.DecisionTree.FeatureImportance, 2)
	assert.Equal(t, 8, res.TimeSplit.TrainSize)
}

func TestExtract_UnknownColumn(t *testing.T) {
	_, err := Extract(linearPanel(3), "Bogus", nil)
	assert.ErrorContains(t, err, "unknown column")
}
