package prepare

import (
	"slices"

	"github.com/sells-group/energy-cli/internal/model"
)

// EnergyVariables maps MER Table 1.1 mnemonics to panel columns.
var EnergyVariables = []model.Variable{
	{MSN: "TETCBUS", Column: model.ColTotalEnergy},     // Total Primary Energy Consumption
	{MSN: "FFTCBUS", Column: model.ColFossilEnergy},    // Total Fossil Fuels Consumption
	{MSN: "RETCBUS", Column: model.ColRenewableEnergy}, // Total Renewable Energy Consumption
	{MSN: "NUETBUS", Column: model.ColNuclearEnergy},   // Nuclear Electric Power Consumption
}

// CO2Variables maps MER Table 11.1 mnemonics to panel columns.
var CO2Variables = []model.Variable{
	{MSN: "TETCEUS", Column: model.ColTotalCO2}, // Total Energy CO2 Emissions
}

// Pivot reshapes annual records into a wide panel with one row per year and
// one column per mapped variable. Unmapped variables are dropped. On duplicate
// (Year, MSN) pairs the first non-missing value wins. Columns with no valid
// observation are omitted, as are years where every mapped value is missing.
// Rows are sorted by year.
func Pivot(records []model.AnnualRecord, mapping []model.Variable) *model.Panel {
	colFor := make(map[string]string, len(mapping))
	for _, v := range mapping {
		colFor[v.MSN] = v.Column
	}

	byYear := make(map[int]map[string]model.NullFloat)
	observed := make(map[string]bool)
	for _, r := range records {
		col, ok := colFor[r.MSN]
		if !ok {
			continue
		}
		vals, ok := byYear[r.Year]
		if !ok {
			vals = make(map[string]model.NullFloat, len(mapping))
			byYear[r.Year] = vals
		}
		if cur, seen := vals[col]; seen && cur.Valid {
			continue
		}
		vals[col] = r.Value
		if r.Value.Valid {
			observed[col] = true
		}
	}

	p := &model.Panel{}
	for _, v := range mapping {
		if observed[v.Column] && !slices.Contains(p.Columns, v.Column) {
			p.Columns = append(p.Columns, v.Column)
		}
	}

	for year, vals := range byYear {
		row := model.PanelRow{Year: year, Values: make(map[string]model.NullFloat, len(p.Columns))}
		hasValue := false
		for _, col := range p.Columns {
			v, ok := vals[col]
			if !ok {
				v = model.Missing
			}
			row.Values[col] = v
			hasValue = hasValue || v.Valid
		}
		if hasValue {
			p.Rows = append(p.Rows, row)
		}
	}
	slices.SortFunc(p.Rows, func(a, b model.PanelRow) int { return a.Year - b.Year })
	return p
}

// Merge inner-joins two panels on Year. Years present in only one panel are dropped.
func Merge(left, right *model.Panel) *model.Panel {
	out := &model.Panel{Columns: slices.Clone(left.Columns)}
	for _, c := range right.Columns {
		if !slices.Contains(out.Columns, c) {
			out.Columns = append(out.Columns, c)
		}
	}

	rightByYear := make(map[int]model.PanelRow, len(right.Rows))
	for _, r := range right.Rows {
		if _, dup := rightByYear[r.Year]; !dup {
			rightByYear[r.Year] = r
		}
	}

	for _, l := range left.Rows {
		r, ok := rightByYear[l.Year]
		if !ok {
			continue
		}
		vals := make(map[string]model.NullFloat, len(out.Columns))
		for k, v := range l.Values {
			vals[k] = v
		}
		for k, v := range r.Values {
			if _, taken := vals[k]; !taken {
				vals[k] = v
			}
		}
		out.Rows = append(out.Rows, model.PanelRow{Year: l.Year, Values: vals})
	}
	slices.SortFunc(out.Rows, func(a, b model.PanelRow) int { return a.Year - b.Year })
	return out
}
