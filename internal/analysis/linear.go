package analysis

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/energy-cli/internal/model"
)

// rcond is the relative singular value cutoff used to decide the rank of
// the centred design matrix.
const rcond = 1e-10

// LinearOptions controls FitLinear.
type LinearOptions struct {
	// Scale standardises each feature to zero mean and unit population
	// variance before fitting. Coefficients are then per standard deviation.
	Scale bool
}

// LinearModel is a fitted ordinary least squares model with intercept.
type LinearModel struct {
	Features  []string
	Coef      []float64
	Intercept float64
	Scaled    bool

	mean []float64
	std  []float64
}

// FitLinear fits y = b0 + X·b by least squares. X is row-major with one
// column per name. Rank-deficient designs get the minimum-norm solution.
func FitLinear(X [][]float64, y []float64, names []string, opts LinearOptions) (*LinearModel, error) {
	n, p := len(X), len(names)
	if n != len(y) {
		return nil, eris.Errorf("analysis: %d rows but %d targets", n, len(y))
	}
	if n == 0 {
		return nil, eris.New("analysis: insufficient data: no rows to fit")
	}
	for i, row := range X {
		if len(row) != p {
			return nil, eris.Errorf("analysis: row %d has %d features, want %d", i, len(row), p)
		}
	}

	m := &LinearModel{
		Features: names,
		Coef:     make([]float64, p),
		Scaled:   opts.Scale,
		mean:     make([]float64, p),
		std:      make([]float64, p),
	}

	a := mat.NewDense(n, p, nil)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		for i := range X {
			col[i] = X[i][j]
		}
		m.std[j] = 1
		if opts.Scale {
			mu, sd := meanStd(col)
			m.mean[j] = mu
			if sd > 0 {
				m.std[j] = sd
			}
		}
		for i, v := range col {
			a.Set(i, j, (v-m.mean[j])/m.std[j])
		}
	}

	// Centre design and target so the intercept drops out of the solve.
	xMean := make([]float64, p)
	for j := 0; j < p; j++ {
		xMean[j] = stat.Mean(mat.Col(nil, j, a), nil)
		for i := 0; i < n; i++ {
			a.Set(i, j, a.At(i, j)-xMean[j])
		}
	}
	yMean := stat.Mean(y, nil)
	b := mat.NewVecDense(n, nil)
	for i, v := range y {
		b.SetVec(i, v-yMean)
	}

	if p > 0 {
		var svd mat.SVD
		if !svd.Factorize(a, mat.SVDThin) {
			return nil, eris.New("analysis: least squares factorisation failed")
		}
		if rank := svd.Rank(rcond); rank > 0 {
			var beta mat.VecDense
			svd.SolveVecTo(&beta, b, rank)
			for j := 0; j < p; j++ {
				m.Coef[j] = beta.AtVec(j)
			}
		}
	}
	m.Intercept = yMean - floats.Dot(xMean, m.Coef)
	return m, nil
}

// Predict returns fitted values for X.
func (m *LinearModel) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		v := m.Intercept
		for j, x := range row {
			v += m.Coef[j] * (x - m.mean[j]) / m.std[j]
		}
		out[i] = v
	}
	return out
}

// Coefficients maps feature names to fitted coefficients.
func (m *LinearModel) Coefficients() map[string]float64 {
	out := make(map[string]float64, len(m.Features))
	for j, name := range m.Features {
		out[name] = m.Coef[j]
	}
	return out
}

// Result evaluates the model on (X, y) and packages it for reporting.
func (m *LinearModel) Result(X [][]float64, y []float64) model.LinearResult {
	pred := m.Predict(X)
	return model.LinearResult{
		Metrics:      Evaluate(y, pred),
		Coefficients: m.Coefficients(),
		Intercept:    m.Intercept,
		Scaled:       m.Scaled,
		Predictions:  pred,
	}
}

// meanStd returns the mean and population standard deviation of x.
func meanStd(x []float64) (float64, float64) {
	mu, variance := stat.PopMeanVariance(x, nil)
	return mu, math.Sqrt(variance)
}
