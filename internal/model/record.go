package model

import "slices"

// Column names used across the prepared panel.
const (
	ColYear            = "Year"
	ColTotalEnergy     = "TotalEnergy"
	ColFossilEnergy    = "FossilEnergy"
	ColRenewableEnergy = "RenewableEnergy"
	ColNuclearEnergy   = "NuclearEnergy"
	ColTotalCO2        = "TotalCO2"
	ColFossilShare     = "FossilShare"
	ColRenewableShare  = "RenewableShare"
	ColNuclearShare    = "NuclearShare"
	ColCO2Intensity    = "CO2Intensity"
)

// CleanColumns is the column order of the clean dataset artifact.
var CleanColumns = []string{
	ColYear,
	ColTotalEnergy,
	ColFossilEnergy,
	ColRenewableEnergy,
	ColNuclearEnergy,
	ColTotalCO2,
	ColFossilShare,
	ColRenewableShare,
	ColNuclearShare,
	ColCO2Intensity,
}

// RawRecord is one long-format row of an EIA Monthly Energy Review table.
// Period is the composite YYYYMM code; MM 01-12 is a month and 13 the annual total.
type RawRecord struct {
	Period      string `json:"period"`
	MSN         string `json:"msn"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

// RawTable is a loaded raw dataset together with the header observed in the source.
type RawTable struct {
	Name    string      `json:"name"`
	Columns []string    `json:"columns"`
	Records []RawRecord `json:"records"`
}

// HasColumn reports whether the source header contained col.
func (t RawTable) HasColumn(col string) bool {
	return slices.Contains(t.Columns, col)
}

// AnnualRecord is a RawRecord restricted to the annual-total marker,
// with the period decomposed into Year and the value coerced.
type AnnualRecord struct {
	Year        int       `json:"year"`
	MSN         string    `json:"msn"`
	Value       NullFloat `json:"value"`
	Description string    `json:"description,omitempty"`
}

// Variable maps a raw mnemonic to an output column name.
type Variable struct {
	MSN    string `json:"msn"`
	Column string `json:"column"`
}

// PanelRow is one year of a wide panel.
type PanelRow struct {
	Year   int
	Values map[string]NullFloat
}

// Get returns the value of col, or Missing when the column is absent.
func (r PanelRow) Get(col string) NullFloat {
	v, ok := r.Values[col]
	if !ok {
		return Missing
	}
	return v
}

// Panel is a wide annual panel: one row per year, one column per named variable.
type Panel struct {
	Columns []string
	Rows    []PanelRow
}

// HasColumn reports whether the panel carries col.
func (p *Panel) HasColumn(col string) bool {
	return slices.Contains(p.Columns, col)
}

// Years returns the panel's years in row order.
func (p *Panel) Years() []int {
	years := make([]int, len(p.Rows))
	for i, r := range p.Rows {
		years[i] = r.Year
	}
	return years
}

// Clone returns a deep copy of the panel.
func (p *Panel) Clone() *Panel {
	out := &Panel{
		Columns: slices.Clone(p.Columns),
		Rows:    make([]PanelRow, len(p.Rows)),
	}
	for i, r := range p.Rows {
		vals := make(map[string]NullFloat, len(r.Values))
		for k, v := range r.Values {
			vals[k] = v
		}
		out.Rows[i] = PanelRow{Year: r.Year, Values: vals}
	}
	return out
}

// CleanRow is one year of the final prepared dataset.
type CleanRow struct {
	Year            int       `json:"year"`
	TotalEnergy     NullFloat `json:"total_energy"`
	FossilEnergy    NullFloat `json:"fossil_energy"`
	RenewableEnergy NullFloat `json:"renewable_energy"`
	NuclearEnergy   NullFloat `json:"nuclear_energy"`
	TotalCO2        NullFloat `json:"total_co2"`
	FossilShare     NullFloat `json:"fossil_share"`
	RenewableShare  NullFloat `json:"renewable_share"`
	NuclearShare    NullFloat `json:"nuclear_share"`
	CO2Intensity    NullFloat `json:"co2_intensity"`
}

// Field returns the named numeric column of the row. Unknown names are Missing.
func (r CleanRow) Field(col string) NullFloat {
	switch col {
	case ColYear:
		return Float(float64(r.Year))
	case ColTotalEnergy:
		return r.TotalEnergy
	case ColFossilEnergy:
		return r.FossilEnergy
	case ColRenewableEnergy:
		return r.RenewableEnergy
	case ColNuclearEnergy:
		return r.NuclearEnergy
	case ColTotalCO2:
		return r.TotalCO2
	case ColFossilShare:
		return r.FossilShare
	case ColRenewableShare:
		return r.RenewableShare
	case ColNuclearShare:
		return r.NuclearShare
	case ColCO2Intensity:
		return r.CO2Intensity
	default:
		return Missing
	}
}

// IsCleanColumn reports whether col names a CleanRow field.
func IsCleanColumn(col string) bool {
	return slices.Contains(CleanColumns, col)
}
