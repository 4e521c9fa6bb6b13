package analysis

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/energy-cli/internal/model"
)

// Time split defaults.
const (
	DefaultTestFraction   = 0.2
	DefaultBreakThreshold = 5.0
)

// TimeSplitOptions controls EvaluateTimeSplit.
type TimeSplitOptions struct {
	TestFraction   float64
	BreakThreshold float64
	Linear         LinearOptions
}

// TestSize returns ceil(fraction*n), clamped so both sides keep at least one row.
func TestSize(n int, fraction float64) int {
	size := int(math.Ceil(fraction*float64(n) - 1e-9))
	if size < 1 {
		size = 1
	}
	if size > n-1 {
		size = n - 1
	}
	return size
}

// EvaluateTimeSplit fits OLS on the chronologically first rows of ds and
// scores it on the last TestSize rows. A structural break is flagged when
// the train target mean exceeds the test target mean by more than the
// threshold. ds must be in ascending year order.
func EvaluateTimeSplit(ds *Dataset, opts TimeSplitOptions) (model.TimeSplitResult, error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return model.TimeSplitResult{}, eris.Errorf("analysis: test fraction %v not in (0, 1)", opts.TestFraction)
	}
	if err := ds.requireRows(minRows); err != nil {
		return model.TimeSplitResult{}, err
	}

	n := ds.Len()
	testSize := TestSize(n, opts.TestFraction)
	trainSize := n - testSize
	train, test := ds.Slice(0, trainSize), ds.Slice(trainSize, n)

	m, err := FitLinear(train.X, train.Y, ds.Features, opts.Linear)
	if err != nil {
		return model.TimeSplitResult{}, eris.Wrap(err, "analysis: time split fit")
	}
	metrics := Evaluate(test.Y, m.Predict(test.X))

	trainMean := stat.Mean(train.Y, nil)
	testMean := stat.Mean(test.Y, nil)
	return model.TimeSplitResult{
		TrainSize:       trainSize,
		TestSize:        testSize,
		TrainMean:       trainMean,
		TestMean:        testMean,
		R2:              metrics.R2,
		RMSE:            metrics.RMSE,
		StructuralBreak: trainMean-testMean > opts.BreakThreshold,
		SplitYear:       test.Years[0],
	}, nil
}
