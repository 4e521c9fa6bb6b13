// Package warehouse publishes the clean panel and run metrics to Postgres.
package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/energy-cli/internal/db"
	"github.com/sells-group/energy-cli/internal/model"
)

// DefaultTable is the panel table used when none is configured.
const DefaultTable = "energy.clean_panel"

// panelColumns are the warehouse column names for model.CleanColumns.
var panelColumns = []string{
	"year", "total_energy", "fossil_energy", "renewable_energy", "nuclear_energy",
	"total_co2", "fossil_share", "renewable_share", "nuclear_share", "co2_intensity",
}

// metricColumns are the columns of the run metrics table.
var metricColumns = []string{"run_id", "model", "metric", "value", "recorded_at"}

// MetricsTable returns the run metrics table that sits next to panelTable.
func MetricsTable(panelTable string) string {
	if i := strings.LastIndex(panelTable, "."); i >= 0 {
		return panelTable[:i+1] + "analysis_metrics"
	}
	return "analysis_metrics"
}

// Migrate creates the schema, panel table and metrics table if needed.
func Migrate(ctx context.Context, pool db.Pool, table string) error {
	if table == "" {
		table = DefaultTable
	}
	var stmts []string
	if i := strings.Index(table, "."); i > 0 {
		stmts = append(stmts, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{table[:i]}.Sanitize()))
	}

	cols := []string{"year INTEGER PRIMARY KEY"}
	for _, c := range panelColumns[1:] {
		cols = append(cols, c+" DOUBLE PRECISION")
	}
	cols = append(cols, "updated_at TIMESTAMPTZ NOT NULL DEFAULT now()")
	stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", ident(table), strings.Join(cols, ",\n\t")))

	stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id      TEXT NOT NULL,
	model       TEXT NOT NULL,
	metric      TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, ident(MetricsTable(table))))

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return eris.Wrapf(err, "warehouse: migrate %s", table)
		}
	}
	return nil
}

// PublishPanel upserts rows into table keyed by year. Missing values are
// written as NULL.
func PublishPanel(ctx context.Context, pool db.Pool, table string, rows []model.CleanRow) (int64, error) {
	if table == "" {
		table = DefaultTable
	}
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		row := make([]any, len(panelColumns))
		row[0] = int32(r.Year)
		for i, col := range model.CleanColumns[1:] {
			if v := r.Field(col); v.Valid {
				row[i+1] = v.V
			}
		}
		values = append(values, row)
	}

	n, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table:        table,
		Columns:      panelColumns,
		ConflictKeys: []string{"year"},
	}, values)
	if err != nil {
		return 0, eris.Wrap(err, "warehouse: publish panel")
	}
	zap.L().Info("warehouse: published panel",
		zap.String("table", table),
		zap.Int64("rows", n),
	)
	return n, nil
}

// PublishMetrics appends the model metrics of one run to the metrics table.
func PublishMetrics(ctx context.Context, pool db.Pool, table, runID string, res *model.Results) (int64, error) {
	if table == "" {
		table = DefaultTable
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, 16)
	add := func(modelName, metric string, v float64) {
		rows = append(rows, []any{runID, modelName, metric, v, now})
	}

	add("linear", "r2", res.FullModel.Metrics.R2)
	add("linear", "rmse", res.FullModel.Metrics.RMSE)
	add("linear", "mae", res.FullModel.Metrics.MAE)
	add("linear", "intercept", res.FullModel.Intercept)
	for _, f := range res.Features {
		add("linear", "coef_"+f, res.FullModel.Coefficients[f])
	}
	add("tree", "r2", res.DecisionTree.Metrics.R2)
	add("tree", "rmse", res.DecisionTree.Metrics.RMSE)
	add("tree", "mae", res.DecisionTree.Metrics.MAE)
	add("time_split", "r2", res.TimeSplit.R2)
	add("time_split", "rmse", res.TimeSplit.RMSE)
	add("time_split", "train_mean", res.TimeSplit.TrainMean)
	add("time_split", "test_mean", res.TimeSplit.TestMean)

	n, err := db.CopyFrom(ctx, pool, MetricsTable(table), metricColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "warehouse: publish metrics")
	}
	return n, nil
}

func ident(table string) string {
	return pgx.Identifier(strings.SplitN(table, ".", 2)).Sanitize()
}
