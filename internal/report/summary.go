// Package report renders analysis results as console text, figures, an
// xlsx workbook and a machine-readable bundle.
package report

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/energy-cli/internal/model"
)

const (
	rule     = "======================================================================"
	thinRule = "--------------------------------------------------"
)

// Stars returns the conventional significance marker for p.
func Stars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return ""
	}
}

// WriteSummary prints correlations, model performance, the structural
// break notice, coefficient interpretation and key results to w.
func WriteSummary(w io.Writer, rows []model.CleanRow, res *model.Results) {
	p := message.NewPrinter(language.English)

	section(p, w, "CORRELATION ANALYSIS")
	for _, name := range sortedKeys(res.Correlations) {
		c := res.Correlations[name]
		if !c.Correlation.Valid {
			_, _ = p.Fprintf(w, "  %s: r = undefined (constant series)\n", name)
			continue
		}
		line := p.Sprintf("  %s: r = %+.3f %s", name, c.Correlation.V, Stars(c.PValue.V))
		_, _ = p.Fprintln(w, strings.TrimRight(line, " "))
	}

	section(p, w, "MODEL PERFORMANCE")
	_, _ = p.Fprintf(w, "  Full Data Linear Regression: R² = %.4f\n", res.FullModel.Metrics.R2)
	_, _ = p.Fprintf(w, "  Decision Tree: R² = %.4f\n", res.DecisionTree.Metrics.R2)
	_, _ = p.Fprintf(w, "  Time-Split Test: R² = %.4f\n", res.TimeSplit.R2)

	if ts := res.TimeSplit; ts.StructuralBreak {
		_, _ = p.Fprintln(w)
		_, _ = p.Fprintln(w, "  ** STRUCTURAL BREAK DETECTED **")
		_, _ = p.Fprintf(w, "  Training mean: %.2f\n", ts.TrainMean)
		_, _ = p.Fprintf(w, "  Test mean: %.2f\n", ts.TestMean)
		_, _ = p.Fprintf(w, "  %s declined faster than the model predicted from %s\n", res.Target, year(ts.SplitYear))
	}

	section(p, w, "MODEL INTERPRETATION")
	for _, name := range res.Features {
		_, _ = p.Fprintf(w, "  1%% increase in %s -> %+.3f change in %s\n",
			name, res.FullModel.Coefficients[name], res.Target)
	}

	_, _ = p.Fprintln(w)
	_, _ = p.Fprintln(w, rule)
	_, _ = p.Fprintln(w, "KEY RESULTS")
	_, _ = p.Fprintln(w, rule)
	_, _ = p.Fprintf(w, "  - Analysis Period: %s-%s (%d years)\n", year(res.FirstYear), year(res.LastYear), res.Rows)
	if first, last, ok := endpoints(rows, model.ColFossilShare); ok {
		_, _ = p.Fprintf(w, "  - Fossil Share Change: %.1f%% -> %.1f%%\n", first, last)
	}
	if first, last, ok := endpoints(rows, model.ColRenewableShare); ok {
		_, _ = p.Fprintf(w, "  - Renewable Share Change: %.1f%% -> %.1f%%\n", first, last)
	}
	if first, last, ok := endpoints(rows, res.Target); ok && first != 0 {
		_, _ = p.Fprintf(w, "  - %s Change: %.1f%%\n", res.Target, (last/first-1)*100)
	}
	_, _ = p.Fprintf(w, "  - Model R²: %.4f\n", res.FullModel.Metrics.R2)
}

// year formats y without the locale's digit grouping.
func year(y int) string { return strconv.Itoa(y) }

func section(p *message.Printer, w io.Writer, title string) {
	_, _ = p.Fprintln(w)
	_, _ = p.Fprintln(w, thinRule)
	_, _ = p.Fprintln(w, title)
	_, _ = p.Fprintln(w, thinRule)
}

// endpoints returns the first and last valid values of col in row order.
func endpoints(rows []model.CleanRow, col string) (first, last float64, ok bool) {
	for _, r := range rows {
		v := r.Field(col)
		if !v.Valid {
			continue
		}
		if !ok {
			first, ok = v.V, true
		}
		last = v.V
	}
	return first, last, ok
}
