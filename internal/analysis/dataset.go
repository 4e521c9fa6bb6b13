// Package analysis fits correlation, regression and structural-break models
// over the clean energy/CO2 panel.
package analysis

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/energy-cli/internal/model"
)

// minRows is the smallest number of complete rows any statistic is computed on.
const minRows = 3

// Dataset is a complete-case design matrix extracted from clean rows.
type Dataset struct {
	Years    []int
	Features []string
	X        [][]float64 // row-major, len(Years) x len(Features)
	Y        []float64
}

// Extract builds a Dataset from rows, keeping only rows where the target and
// every feature are present (listwise deletion). Row order is preserved.
func Extract(rows []model.CleanRow, target string, features []string) (*Dataset, error) {
	for _, c := range append([]string{target}, features...) {
		if !model.IsCleanColumn(c) {
			return nil, eris.Errorf("analysis: unknown column %q", c)
		}
	}

	ds := &Dataset{Features: features}
	for _, r := range rows {
		y := r.Field(target)
		if !y.Valid {
			continue
		}
		x := make([]float64, len(features))
		complete := true
		for j, f := range features {
			v := r.Field(f)
			if !v.Valid {
				complete = false
				break
			}
			x[j] = v.V
		}
		if !complete {
			continue
		}
		ds.Years = append(ds.Years, r.Year)
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y.V)
	}
	return ds, nil
}

// Len returns the number of complete rows.
func (d *Dataset) Len() int { return len(d.Y) }

// Column returns feature j as a slice.
func (d *Dataset) Column(j int) []float64 {
	out := make([]float64, len(d.X))
	for i, row := range d.X {
		out[i] = row[j]
	}
	return out
}

// Slice returns rows [from, to) as a new Dataset sharing no row slices with d.
func (d *Dataset) Slice(from, to int) *Dataset {
	out := &Dataset{
		Features: d.Features,
		Years:    append([]int(nil), d.Years[from:to]...),
		Y:        append([]float64(nil), d.Y[from:to]...),
		X:        make([][]float64, 0, to-from),
	}
	for _, row := range d.X[from:to] {
		out.X = append(out.X, append([]float64(nil), row...))
	}
	return out
}

func (d *Dataset) requireRows(n int) error {
	if d.Len() < n {
		return eris.Errorf("analysis: insufficient data: %d complete rows, need at least %d", d.Len(), n)
	}
	return nil
}
