package prepare

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/energy-cli/internal/model"
)

var energyCols = []string{model.ColTotalEnergy, model.ColFossilEnergy, model.ColRenewableEnergy, model.ColNuclearEnergy}

func TestEnergyShares(t *testing.T) {
	p := panelOf(energyCols, map[int][]float64{
		2000: {100, 80, 10, 8},
		2001: {50, 25, 25, 0},
	})

	out, err := EnergyShares(p)
	require.NoError(t, err)

	r := out.Rows[0]
	assert.InDelta(t, 80.0, r.Get(model.ColFossilShare).V, 1e-9)
	assert.InDelta(t, 10.0, r.Get(model.ColRenewableShare).V, 1e-9)
	assert.InDelta(t, 8.0, r.Get(model.ColNuclearShare).V, 1e-9)
	assert.InDelta(t, 50.0, out.Rows[1].Get(model.ColRenewableShare).V, 1e-9)
	assert.Equal(t, []string{
		model.ColTotalEnergy, model.ColFossilEnergy, model.ColRenewableEnergy, model.ColNuclearEnergy,
		model.ColFossilShare, model.ColRenewableShare, model.ColNuclearShare,
	}, out.Columns)

	// input untouched
	assert.False(t, p.HasColumn(model.ColFossilShare))
}

func TestEnergyShares_SumAtMostHundred(t *testing.T) {
	annual, err := FilterAnnual(energyYears(1973, 2024))
	require.NoError(t, err)

	out, err := EnergyShares(Pivot(ToNumeric(annual), EnergyVariables))
	require.NoError(t, err)

	for _, r := range out.Rows {
		f, rn, n := r.Get(model.ColFossilShare), r.Get(model.ColRenewableShare), r.Get(model.ColNuclearShare)
		require.True(t, f.Valid && rn.Valid && n.Valid)
		assert.LessOrEqual(t, f.V+rn.V+n.V, 100.0+1e-9)
	}
}

func TestEnergyShares_ZeroAndMissingTotal(t *testing.T) {
	p := panelOf(energyCols, map[int][]float64{2000: {0, 1, 1, 1}, 2001: {10, 5, 1, 1}})
	p.Rows[1].Values[model.ColTotalEnergy] = model.Missing

	out, err := EnergyShares(p)
	require.NoError(t, err)
	for _, r := range out.Rows {
		assert.False(t, r.Get(model.ColFossilShare).Valid)
		assert.False(t, r.Get(model.ColRenewableShare).Valid)
		assert.False(t, r.Get(model.ColNuclearShare).Valid)
	}
}

func TestEnergyShares_MissingComponentPropagates(t *testing.T) {
	p := panelOf(energyCols, map[int][]float64{2000: {100, 80, 10, 8}})
	p.Rows[0].Values[model.ColNuclearEnergy] = model.Missing

	out, err := EnergyShares(p)
	require.NoError(t, err)
	assert.True(t, out.Rows[0].Get(model.ColFossilShare).Valid)
	assert.False(t, out.Rows[0].Get(model.ColNuclearShare).Valid)
}

func TestEnergyShares_MissingColumn(t *testing.T) {
	p := panelOf([]string{model.ColTotalEnergy, model.ColFossilEnergy, model.ColNuclearEnergy},
		map[int][]float64{2000: {100, 80, 8}})

	_, err := EnergyShares(p)
	var mcErr *MissingColumnError
	require.True(t, errors.As(err, &mcErr))
	assert.Equal(t, model.ColRenewableEnergy, mcErr.Column)
	assert.Contains(t, err.Error(), "RenewableEnergy")
}

func TestCO2Intensity(t *testing.T) {
	p := panelOf([]string{model.ColTotalEnergy, model.ColTotalCO2}, map[int][]float64{
		2000: {98.8, 5900},
		2001: {0, 5800},
	})

	out, err := CO2Intensity(p)
	require.NoError(t, err)
	assert.InDelta(t, 5900/98.8, out.Rows[0].Get(model.ColCO2Intensity).V, 1e-9)
	assert.False(t, out.Rows[1].Get(model.ColCO2Intensity).Valid)
}

func TestCO2Intensity_MissingColumn(t *testing.T) {
	_, err := CO2Intensity(panelOf([]string{model.ColTotalEnergy}, map[int][]float64{2000: {1}}))
	var mcErr *MissingColumnError
	require.True(t, errors.As(err, &mcErr))
	assert.Equal(t, model.ColTotalCO2, mcErr.Column)
}
