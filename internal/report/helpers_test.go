package report

import (
	"github.com/sells-group/energy-cli/internal/model"
)

func fixtureRows() []model.CleanRow {
	rows := make([]model.CleanRow, 10)
	for i := range rows {
		fossil := 85 - float64(i)
		rows[i] = model.CleanRow{
			Year:            2000 + i,
			TotalEnergy:     model.Float(100),
			FossilEnergy:    model.Float(fossil),
			RenewableEnergy: model.Float(5 + float64(i)),
			NuclearEnergy:   model.Float(8 + 0.2*float64(i)),
			TotalCO2:        model.Float(5000 - 40*float64(i)),
			FossilShare:     model.Float(fossil),
			RenewableShare:  model.Float(5 + float64(i)),
			NuclearShare:    model.Float(8 + 0.2*float64(i) + float64(i%2)),
			CO2Intensity:    model.Float(50 - 0.4*float64(i)),
		}
	}
	rows[3].TotalCO2 = model.Missing
	rows[3].CO2Intensity = model.Missing
	return rows
}

func fixtureResults(breakDetected bool) *model.Results {
	years := []int{2000, 2001, 2002, 2004, 2005, 2006, 2007, 2008, 2009}
	pred := make([]float64, len(years))
	for i, y := range years {
		pred[i] = 50 - 0.4*float64(y-2000)
	}
	preds := []string{model.ColFossilShare, model.ColNuclearShare, model.ColRenewableShare}
	matrix := map[string]map[string]model.NullFloat{}
	for _, a := range preds {
		matrix[a] = map[string]model.NullFloat{}
		for _, b := range preds {
			matrix[a][b] = model.Float(-0.5)
			if a == b {
				matrix[a][b] = model.Float(1)
			}
		}
	}
	return &model.Results{
		Rows:      9,
		FirstYear: 2000,
		LastYear:  2009,
		Target:    model.ColCO2Intensity,
		Features:  []string{model.ColFossilShare, model.ColRenewableShare},
		Correlations: map[string]model.Correlation{
			model.ColFossilShare:    {Correlation: model.Float(0.998), PValue: model.Float(0.0000001), Significant: true, N: 9},
			model.ColRenewableShare: {Correlation: model.Float(-0.95), PValue: model.Float(0.004), Significant: true, N: 9},
			model.ColNuclearShare:   {Correlation: model.Float(-0.2), PValue: model.Float(0.6), N: 9},
		},
		Multicollinearity: matrix,
		Autocorrelation:   model.Float(0.9),
		FullModel: model.LinearResult{
			Metrics:      model.Metrics{R2: 0.9876, RMSE: 0.1, MAE: 0.08},
			Coefficients: map[string]float64{model.ColFossilShare: 0.4, model.ColRenewableShare: -0.012},
			Intercept:    16,
			Predictions:  pred,
			Years:        years,
		},
		DecisionTree: model.TreeResult{
			Metrics:           model.Metrics{R2: 0.99, RMSE: 0.05, MAE: 0.04},
			FeatureImportance: map[string]float64{model.ColFossilShare: 0.8, model.ColRenewableShare: 0.2},
			Depth:             3,
			Leaves:            6,
		},
		TimeSplit: model.TimeSplitResult{
			TrainSize:       7,
			TestSize:        2,
			TrainMean:       48.8,
			TestMean:        42.1,
			R2:              -1.25,
			RMSE:            0.7,
			StructuralBreak: breakDetected,
			SplitYear:       2008,
		},
	}
}

// undefinedNuclear marks NuclearShare as a constant series in res.
func undefinedNuclear(res *model.Results) *model.Results {
	res.Correlations[model.ColNuclearShare] = model.Correlation{
		Correlation: model.Missing,
		PValue:      model.Missing,
		N:           9,
	}
	for name, row := range res.Multicollinearity {
		row[model.ColNuclearShare] = model.Missing
		res.Multicollinearity[model.ColNuclearShare][name] = model.Missing
	}
	return res
}
