package prepare

import (
	"github.com/sells-group/energy-cli/internal/model"
)

func requireColumns(p *model.Panel, cols ...string) error {
	for _, c := range cols {
		if !p.HasColumn(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}

func addColumn(p *model.Panel, col string, f func(model.PanelRow) model.NullFloat) {
	if !p.HasColumn(col) {
		p.Columns = append(p.Columns, col)
	}
	for i := range p.Rows {
		p.Rows[i].Values[col] = f(p.Rows[i])
	}
}

// EnergyShares adds FossilShare, RenewableShare and NuclearShare as
// percentages of TotalEnergy. A zero or missing total yields missing shares.
func EnergyShares(p *model.Panel) (*model.Panel, error) {
	if err := requireColumns(p,
		model.ColTotalEnergy, model.ColFossilEnergy, model.ColRenewableEnergy, model.ColNuclearEnergy,
	); err != nil {
		return nil, err
	}

	out := p.Clone()
	for share, component := range map[string]string{
		model.ColFossilShare:    model.ColFossilEnergy,
		model.ColRenewableShare: model.ColRenewableEnergy,
		model.ColNuclearShare:   model.ColNuclearEnergy,
	} {
		addColumn(out, share, func(r model.PanelRow) model.NullFloat {
			return r.Get(component).Div(r.Get(model.ColTotalEnergy)).Scale(100)
		})
	}
	orderColumns(out)
	return out, nil
}

// CO2Intensity adds CO2Intensity = TotalCO2 / TotalEnergy.
func CO2Intensity(p *model.Panel) (*model.Panel, error) {
	if err := requireColumns(p, model.ColTotalCO2, model.ColTotalEnergy); err != nil {
		return nil, err
	}

	out := p.Clone()
	addColumn(out, model.ColCO2Intensity, func(r model.PanelRow) model.NullFloat {
		return r.Get(model.ColTotalCO2).Div(r.Get(model.ColTotalEnergy))
	})
	return out, nil
}

// orderColumns puts known clean columns first in artifact order, keeping any
// other columns after them in their existing order.
func orderColumns(p *model.Panel) {
	ordered := make([]string, 0, len(p.Columns))
	for _, c := range model.CleanColumns {
		if p.HasColumn(c) {
			ordered = append(ordered, c)
		}
	}
	for _, c := range p.Columns {
		if !model.IsCleanColumn(c) {
			ordered = append(ordered, c)
		}
	}
	p.Columns = ordered
}
