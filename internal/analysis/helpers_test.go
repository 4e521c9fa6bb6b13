package analysis

import (
	"github.com/sells-group/energy-cli/internal/model"
)

func shareRow(year int, fossil, renewable, nuclear, intensity float64) model.CleanRow {
	return model.CleanRow{
		Year:           year,
		FossilShare:    model.Float(fossil),
		RenewableShare: model.Float(renewable),
		NuclearShare:   model.Float(nuclear),
		CO2Intensity:   model.Float(intensity),
	}
}

// linearPanel returns n rows where CO2Intensity = 150 - 1.5*FossilShare exactly.
func linearPanel(n int) []model.CleanRow {
	rows := make([]model.CleanRow, n)
	for i := range rows {
		fossil := 85 - float64(i)
		renewable := 5 + float64(i%3) + 0.5*float64(i)
		nuclear := 8 + 0.3*float64(i) + float64(i%2)
		rows[i] = shareRow(1980+i, fossil, renewable, nuclear, 150-1.5*fossil)
	}
	return rows
}

// shiftPanel returns ten rows whose last two intensities sit drop units
// below the 70-unit level of the first eight.
func shiftPanel(drop float64) []model.CleanRow {
	wobble := []float64{0.4, -0.3, 0.2, -0.1, 0.3, -0.4, 0.1, -0.2, 0.2, -0.2}
	rows := make([]model.CleanRow, 10)
	for i := range rows {
		intensity := 70 + wobble[i]
		if i >= 8 {
			intensity -= drop
		}
		rows[i] = shareRow(2000+i, 80-0.5*float64(i), 8+0.7*float64(i)+float64(i%2), 9+0.1*float64(i%4), intensity)
	}
	return rows
}
