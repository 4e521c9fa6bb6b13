package analysis

import (
	"errors"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sells-group/energy-cli/internal/model"
)

// DefaultAlpha is the significance level for correlation tests.
const DefaultAlpha = 0.05

// ErrConstantSeries reports a correlation with a zero-variance side.
var ErrConstantSeries = eris.New("analysis: correlation undefined for a constant series")

// Pearson returns the Pearson correlation of x and y and the two-sided
// p-value for the null hypothesis of zero correlation (Student t, n-2 df).
func Pearson(x, y []float64) (r, p float64, err error) {
	n := len(x)
	if n != len(y) {
		return 0, 0, eris.Errorf("analysis: length mismatch %d vs %d", len(x), len(y))
	}
	if n < minRows {
		return 0, 0, eris.Errorf("analysis: insufficient data: %d pairs, need at least %d", n, minRows)
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, 0, ErrConstantSeries
	}

	r = math.Max(-1, math.Min(1, stat.Correlation(x, y, nil)))
	return r, pValue(r, n), nil
}

func pValue(r float64, n int) float64 {
	if n <= 2 {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return math.Max(0, math.Min(1, p))
}

// pairs returns the values of cols a and b over rows where both are present.
func pairs(rows []model.CleanRow, a, b string) ([]float64, []float64, error) {
	for _, c := range []string{a, b} {
		if !model.IsCleanColumn(c) {
			return nil, nil, eris.Errorf("analysis: unknown column %q", c)
		}
	}
	var xs, ys []float64
	for _, r := range rows {
		x, y := r.Field(a), r.Field(b)
		if x.Valid && y.Valid {
			xs = append(xs, x.V)
			ys = append(ys, y.V)
		}
	}
	return xs, ys, nil
}

// correlate is Pearson with a constant side reported as missing r and p.
func correlate(x, y []float64, a, b string) (r, p model.NullFloat, err error) {
	rv, pv, err := Pearson(x, y)
	switch {
	case errors.Is(err, ErrConstantSeries):
		zap.L().Warn("analysis: correlation undefined, constant series",
			zap.String("a", a), zap.String("b", b), zap.Int("pairs", len(x)))
		return model.Missing, model.Missing, nil
	case err != nil:
		return model.Missing, model.Missing, eris.Wrapf(err, "analysis: correlate %s with %s", a, b)
	}
	return model.Float(rv), model.Float(pv), nil
}

// Correlations tests each predictor against target. Rows missing either
// value are dropped per pair. A predictor is significant when p < alpha;
// one with a constant side has missing r and p and is not significant.
func Correlations(rows []model.CleanRow, target string, predictors []string, alpha float64) (map[string]model.Correlation, error) {
	out := make(map[string]model.Correlation, len(predictors))
	for _, pred := range predictors {
		x, y, err := pairs(rows, pred, target)
		if err != nil {
			return nil, err
		}
		r, p, err := correlate(x, y, pred, target)
		if err != nil {
			return nil, err
		}
		out[pred] = model.Correlation{
			Correlation: r,
			PValue:      p,
			Significant: p.Valid && p.V < alpha,
			N:           len(x),
		}
	}
	return out, nil
}

// Multicollinearity returns the symmetric pairwise correlation matrix of cols,
// each pair using its own complete rows. The diagonal is 1 except for a
// constant column, whose whole row and column are missing.
func Multicollinearity(rows []model.CleanRow, cols []string) (map[string]map[string]model.NullFloat, error) {
	out := make(map[string]map[string]model.NullFloat, len(cols))
	for _, c := range cols {
		x, _, err := pairs(rows, c, c)
		if err != nil {
			return nil, err
		}
		diag := model.Float(1)
		if len(x) > 0 && stat.Variance(x, nil) == 0 {
			diag = model.Missing
		}
		out[c] = map[string]model.NullFloat{c: diag}
	}
	for i, a := range cols {
		for _, b := range cols[i+1:] {
			x, y, err := pairs(rows, a, b)
			if err != nil {
				return nil, err
			}
			r, _, err := correlate(x, y, a, b)
			if err != nil {
				return nil, err
			}
			out[a][b] = r
			out[b][a] = r
		}
	}
	return out, nil
}

// Autocorrelation is the Pearson correlation of series against itself
// shifted by lag. Pairs with a missing side are skipped. The result is
// missing when fewer than two pairs remain or either side is constant.
func Autocorrelation(series []model.NullFloat, lag int) model.NullFloat {
	if lag < 0 {
		lag = -lag
	}
	var x, y []float64
	for i := 0; i+lag < len(series); i++ {
		a, b := series[i], series[i+lag]
		if a.Valid && b.Valid {
			x = append(x, a.V)
			y = append(y, b.V)
		}
	}
	if len(x) < 2 || stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return model.Missing
	}
	return model.Float(stat.Correlation(x, y, nil))
}

// Series returns one column of rows in row order.
func Series(rows []model.CleanRow, col string) []model.NullFloat {
	out := make([]model.NullFloat, len(rows))
	for i, r := range rows {
		out[i] = r.Field(col)
	}
	return out
}
