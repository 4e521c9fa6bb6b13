package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sells-group/energy-cli/internal/model"
)

// Figure file names written by WriteFigures.
const (
	FigEnergyStructure = "fig1_energy_structure.png"
	FigIntensityTrend  = "fig2_co2_intensity_trend.png"
	FigCorrelation     = "fig4_correlation_matrix.png"
	FigScatter         = "fig5_scatter_shares_vs_intensity.png"
	FigDistributions   = "fig6_distributions.png"
	FigFinalSummary    = "fig12_final_summary.png"
)

var shareColumns = []string{model.ColFossilShare, model.ColRenewableShare, model.ColNuclearShare}

// WriteFigures renders every figure into dir and returns the written paths.
func WriteFigures(dir string, rows []model.CleanRow, res *model.Results) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "figures: create %s", dir)
	}

	steps := []struct {
		name string
		fn   func(string) error
	}{
		{FigEnergyStructure, func(p string) error { return energyStructure(p, rows) }},
		{FigIntensityTrend, func(p string) error { return intensityTrend(p, rows, res.Target) }},
		{FigCorrelation, func(p string) error { return correlationMatrix(p, res.Multicollinearity) }},
		{FigScatter, func(p string) error { return scatterShares(p, rows, res.Target) }},
		{FigDistributions, func(p string) error { return distributions(p, rows, res.Target) }},
		{FigFinalSummary, func(p string) error { return finalSummary(p, rows, res) }},
	}

	paths := make([]string, 0, len(steps))
	for _, s := range steps {
		path := filepath.Join(dir, s.name)
		if err := s.fn(path); err != nil {
			return paths, eris.Wrapf(err, "figures: %s", s.name)
		}
		zap.L().Debug("figures: wrote", zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// series returns (Year, col) points for rows where col is present.
func series(rows []model.CleanRow, col string) plotter.XYs {
	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		if v := r.Field(col); v.Valid {
			pts = append(pts, plotter.XY{X: float64(r.Year), Y: v.V})
		}
	}
	return pts
}

// pairsOf returns (x, y) points for rows where both columns are present.
func pairsOf(rows []model.CleanRow, xCol, yCol string) plotter.XYs {
	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		x, y := r.Field(xCol), r.Field(yCol)
		if x.Valid && y.Valid {
			pts = append(pts, plotter.XY{X: x.V, Y: y.V})
		}
	}
	return pts
}

func values(rows []model.CleanRow, col string) plotter.Values {
	vals := make(plotter.Values, 0, len(rows))
	for _, r := range rows {
		if v := r.Field(col); v.Valid {
			vals = append(vals, v.V)
		}
	}
	return vals
}

func addLine(p *plot.Plot, pts plotter.XYs, label string, c color.Color, dashed bool) error {
	if len(pts) == 0 {
		return nil
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = vg.Points(2)
	if dashed {
		l.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	}
	p.Add(l)
	if label != "" {
		p.Legend.Add(label, l)
	}
	return nil
}

func energyStructure(path string, rows []model.CleanRow) error {
	p := plot.New()
	p.Title.Text = "US Energy Structure Evolution"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Share of Total Energy Consumption (%)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, col := range shareColumns {
		if err := addLine(p, series(rows, col), col, plotutil.Color(i), false); err != nil {
			return err
		}
	}
	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

func intensityTrend(path string, rows []model.CleanRow, target string) error {
	p := plot.New()
	p.Title.Text = target + " Trend"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = target
	p.Add(plotter.NewGrid())

	pts := series(rows, target)
	if err := addLine(p, pts, target, plotutil.Color(0), false); err != nil {
		return err
	}
	if len(pts) >= 2 {
		xs, ys := make([]float64, len(pts)), make([]float64, len(pts))
		for i, pt := range pts {
			xs[i], ys[i] = pt.X, pt.Y
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		trend := plotter.XYs{
			{X: xs[0], Y: alpha + beta*xs[0]},
			{X: xs[len(xs)-1], Y: alpha + beta*xs[len(xs)-1]},
		}
		if err := addLine(p, trend, "Trend", plotutil.Color(0), true); err != nil {
			return err
		}
	}
	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ.
type corrGrid struct {
	names []string
	m     map[string]map[string]model.NullFloat
}

func (g corrGrid) Dims() (c, r int)   { return len(g.names), len(g.names) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
func (g corrGrid) Z(c, r int) float64 {
	if v := g.m[g.names[c]][g.names[r]]; v.Valid {
		return v.V
	}
	return math.NaN()
}

func correlationMatrix(path string, m map[string]map[string]model.NullFloat) error {
	names := sortedKeys(m)
	p := plot.New()
	p.Title.Text = "Correlation Matrix"
	if len(names) == 0 {
		return p.Save(6*vg.Inch, 6*vg.Inch, path)
	}

	grid := corrGrid{names: names, m: m}
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 0xdd}
	p.Add(hm)

	ticks := make([]plot.Tick, len(names))
	var xys plotter.XYs
	var labels []string
	for i, n := range names {
		ticks[i] = plot.Tick{Value: float64(i), Label: n}
		for j := range names {
			xys = append(xys, plotter.XY{X: float64(i), Y: float64(j)})
			label := "n/a"
			if z := grid.Z(i, j); !math.IsNaN(z) {
				label = fmt.Sprintf("%.2f", z)
			}
			labels = append(labels, label)
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	p.Add(lbl)
	return p.Save(7*vg.Inch, 6*vg.Inch, path)
}

func scatterShares(path string, rows []model.CleanRow, target string) error {
	plots := make([][]*plot.Plot, 1)
	for i, col := range shareColumns {
		pts := pairsOf(rows, col, target)
		p := plot.New()
		p.X.Label.Text = col + " (%)"
		p.Y.Label.Text = target
		p.Add(plotter.NewGrid())

		if len(pts) > 0 {
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return err
			}
			s.GlyphStyle.Color = plotutil.Color(i)
			s.GlyphStyle.Radius = vg.Points(3)
			p.Add(s)
		}

		title := col + " vs " + target
		if len(pts) >= 3 {
			xs, ys := make([]float64, len(pts)), make([]float64, len(pts))
			for k, pt := range pts {
				xs[k], ys[k] = pt.X, pt.Y
			}
			alpha, beta := stat.LinearRegression(xs, ys, nil, false)
			fit := plotter.NewFunction(func(x float64) float64 { return alpha + beta*x })
			fit.Color = color.RGBA{R: 200, A: 255}
			fit.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
			p.Add(fit)
			title = fmt.Sprintf("%s\nr = %.3f", title, stat.Correlation(xs, ys, nil))
		}
		p.Title.Text = title
		plots[0] = append(plots[0], p)
	}
	return saveTiled(path, plots, 18*vg.Inch, 5*vg.Inch)
}

func distributions(path string, rows []model.CleanRow, target string) error {
	cols := append([]string{target}, shareColumns...)
	plots := [][]*plot.Plot{make([]*plot.Plot, 2), make([]*plot.Plot, 2)}
	for i, col := range cols {
		p := plot.New()
		p.X.Label.Text = col
		p.Y.Label.Text = "Frequency"
		vals := values(rows, col)
		if len(vals) > 0 {
			h, err := plotter.NewHist(vals, 15)
			if err != nil {
				return err
			}
			h.FillColor = plotutil.Color(i)
			p.Add(h)
			p.Title.Text = fmt.Sprintf("%s Distribution\nMean: %.2f", col, stat.Mean(vals, nil))
		} else {
			p.Title.Text = col + " Distribution"
		}
		plots[i/2][i%2] = p
	}
	return saveTiled(path, plots, 12*vg.Inch, 10*vg.Inch)
}

func finalSummary(path string, rows []model.CleanRow, res *model.Results) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("US %s: %d-%d Trend Analysis", res.Target, res.FirstYear, res.LastYear)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = res.Target
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	actual := series(rows, res.Target)
	if err := addLine(p, actual, "Actual "+res.Target, color.RGBA{B: 200, A: 255}, false); err != nil {
		return err
	}

	pred := make(plotter.XYs, 0, len(res.FullModel.Years))
	for i, y := range res.FullModel.Years {
		if i < len(res.FullModel.Predictions) {
			pred = append(pred, plotter.XY{X: float64(y), Y: res.FullModel.Predictions[i]})
		}
	}
	label := fmt.Sprintf("Model Prediction (R²=%.3f)", res.FullModel.Metrics.R2)
	if err := addLine(p, pred, label, color.RGBA{G: 150, A: 255}, true); err != nil {
		return err
	}

	if ts := res.TimeSplit; ts.SplitYear > 0 && len(actual) > 0 {
		lo, hi := actual[0].Y, actual[0].Y
		for _, pt := range actual {
			lo, hi = min(lo, pt.Y), max(hi, pt.Y)
		}
		marker := plotter.XYs{{X: float64(ts.SplitYear), Y: lo}, {X: float64(ts.SplitYear), Y: hi}}
		name := "Test period start"
		if ts.StructuralBreak {
			name = "Structural break"
		}
		if err := addLine(p, marker, name, color.RGBA{R: 220, G: 180, A: 255}, true); err != nil {
			return err
		}
	}
	return p.Save(12*vg.Inch, 6*vg.Inch, path)
}

func saveTiled(path string, plots [][]*plot.Plot, w, h vg.Length) error {
	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: len(plots[0]),
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j, p := range plots[i] {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
