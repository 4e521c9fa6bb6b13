package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/energy-cli/internal/model"
)

// Evaluate computes R², RMSE and MAE of pred against y.
// When y has zero variance R² is 1 for a perfect fit and 0 otherwise.
func Evaluate(y, pred []float64) model.Metrics {
	n := float64(len(y))
	if n == 0 {
		return model.Metrics{}
	}

	mean := stat.Mean(y, nil)
	var ssRes, ssTot, absErr float64
	for i := range y {
		e := y[i] - pred[i]
		ssRes += e * e
		absErr += math.Abs(e)
		d := y[i] - mean
		ssTot += d * d
	}

	var r2 float64
	switch {
	case ssTot > 0:
		r2 = 1 - ssRes/ssTot
	case ssRes == 0:
		r2 = 1
	}

	return model.Metrics{
		R2:   r2,
		RMSE: math.Sqrt(ssRes / n),
		MAE:  absErr / n,
	}
}
