package report

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/energy-cli/internal/model"
)

// Workbook sheet names.
const (
	SheetCleanData    = "Clean Data"
	SheetCorrelations = "Correlations"
	SheetModels       = "Models"
)

// WriteWorkbook saves the clean panel and the analysis results to an xlsx
// file at path.
func WriteWorkbook(path string, rows []model.CleanRow, res *model.Results) error {
	f := xlsx.NewFile()

	data, err := f.AddSheet(SheetCleanData)
	if err != nil {
		return eris.Wrap(err, "workbook: add clean data sheet")
	}
	addStrings(data, model.CleanColumns...)
	for _, r := range rows {
		row := data.AddRow()
		row.AddCell().SetInt(r.Year)
		for _, col := range model.CleanColumns[1:] {
			addNullFloat(row, r.Field(col))
		}
	}

	corr, err := f.AddSheet(SheetCorrelations)
	if err != nil {
		return eris.Wrap(err, "workbook: add correlations sheet")
	}
	addStrings(corr, "Predictor", "Correlation", "PValue", "Significant", "N")
	for _, name := range sortedKeys(res.Correlations) {
		c := res.Correlations[name]
		row := corr.AddRow()
		row.AddCell().SetString(name)
		addNullFloat(row, c.Correlation)
		addNullFloat(row, c.PValue)
		row.AddCell().SetBool(c.Significant)
		row.AddCell().SetInt(c.N)
	}

	models, err := f.AddSheet(SheetModels)
	if err != nil {
		return eris.Wrap(err, "workbook: add models sheet")
	}
	addStrings(models, "Model", "Metric", "Value")
	addMetric(models, "Linear Regression", "R2", res.FullModel.Metrics.R2)
	addMetric(models, "Linear Regression", "RMSE", res.FullModel.Metrics.RMSE)
	addMetric(models, "Linear Regression", "MAE", res.FullModel.Metrics.MAE)
	addMetric(models, "Linear Regression", "Intercept", res.FullModel.Intercept)
	for _, name := range res.Features {
		addMetric(models, "Linear Regression", "Coefficient "+name, res.FullModel.Coefficients[name])
	}
	addMetric(models, "Decision Tree", "R2", res.DecisionTree.Metrics.R2)
	addMetric(models, "Decision Tree", "RMSE", res.DecisionTree.Metrics.RMSE)
	addMetric(models, "Decision Tree", "MAE", res.DecisionTree.Metrics.MAE)
	for _, name := range res.Features {
		addMetric(models, "Decision Tree", "Importance "+name, res.DecisionTree.FeatureImportance[name])
	}
	ts := res.TimeSplit
	addMetric(models, "Time Split", "Train Size", float64(ts.TrainSize))
	addMetric(models, "Time Split", "Test Size", float64(ts.TestSize))
	addMetric(models, "Time Split", "Train Mean", ts.TrainMean)
	addMetric(models, "Time Split", "Test Mean", ts.TestMean)
	addMetric(models, "Time Split", "R2", ts.R2)
	addMetric(models, "Time Split", "RMSE", ts.RMSE)
	row := models.AddRow()
	row.AddCell().SetString("Time Split")
	row.AddCell().SetString("Structural Break")
	row.AddCell().SetBool(ts.StructuralBreak)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "workbook: create dir for %s", path)
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "workbook: save %s", path)
	}
	return nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// addNullFloat appends a cell left empty for a missing value.
func addNullFloat(row *xlsx.Row, v model.NullFloat) {
	cell := row.AddCell()
	if v.Valid {
		cell.SetFloat(v.V)
	}
}

func addMetric(sheet *xlsx.Sheet, modelName, metric string, v float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(modelName)
	row.AddCell().SetString(metric)
	row.AddCell().SetFloat(v)
}
