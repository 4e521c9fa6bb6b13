package prepare

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/energy-cli/internal/model"
)

// BuildPanel runs annual filtering, numeric coercion and pivoting for one raw table.
func BuildPanel(tbl *model.RawTable, mapping []model.Variable) (*model.Panel, error) {
	annual, err := FilterAnnual(tbl)
	if err != nil {
		return nil, err
	}
	p := Pivot(ToNumeric(annual), mapping)

	zap.L().Debug("built annual panel",
		zap.String("dataset", tbl.Name),
		zap.Int("annual_rows", len(annual)),
		zap.Int("years", len(p.Rows)),
		zap.Strings("columns", p.Columns),
	)
	return p, nil
}

// PrepareFullDataset reconciles the energy and CO2 tables into the clean
// dataset: per-table annual panels, an inner join on Year, then derived
// share and intensity columns. Rows are sorted by Year.
func PrepareFullDataset(energy, co2 *model.RawTable) ([]model.CleanRow, error) {
	energyPanel, err := BuildPanel(energy, EnergyVariables)
	if err != nil {
		return nil, eris.Wrap(err, "prepare: energy panel")
	}
	co2Panel, err := BuildPanel(co2, CO2Variables)
	if err != nil {
		return nil, eris.Wrap(err, "prepare: co2 panel")
	}

	merged := Merge(energyPanel, co2Panel)

	withShares, err := EnergyShares(merged)
	if err != nil {
		return nil, eris.Wrap(err, "prepare: energy shares")
	}
	withIntensity, err := CO2Intensity(withShares)
	if err != nil {
		return nil, eris.Wrap(err, "prepare: co2 intensity")
	}

	rows, err := ToCleanRows(withIntensity)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.Int("rows", len(rows)))
	if len(rows) > 0 {
		log = log.With(zap.Int("first_year", rows[0].Year), zap.Int("last_year", rows[len(rows)-1].Year))
	}
	log.Info("prepared clean dataset",
		zap.Int("energy_years", len(energyPanel.Rows)),
		zap.Int("co2_years", len(co2Panel.Rows)),
	)
	return rows, nil
}

// ToCleanRows converts a fully featured panel to typed rows.
func ToCleanRows(p *model.Panel) ([]model.CleanRow, error) {
	if err := requireColumns(p, model.CleanColumns[1:]...); err != nil {
		return nil, err
	}

	rows := make([]model.CleanRow, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = model.CleanRow{
			Year:            r.Year,
			TotalEnergy:     r.Get(model.ColTotalEnergy),
			FossilEnergy:    r.Get(model.ColFossilEnergy),
			RenewableEnergy: r.Get(model.ColRenewableEnergy),
			NuclearEnergy:   r.Get(model.ColNuclearEnergy),
			TotalCO2:        r.Get(model.ColTotalCO2),
			FossilShare:     r.Get(model.ColFossilShare),
			RenewableShare:  r.Get(model.ColRenewableShare),
			NuclearShare:    r.Get(model.ColNuclearShare),
			CO2Intensity:    r.Get(model.ColCO2Intensity),
		}
	}
	return rows, nil
}
