// Package prepare reconciles raw EIA records into a clean annual panel with
// derived share and intensity features.
package prepare

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/energy-cli/internal/loader"
	"github.com/sells-group/energy-cli/internal/model"
)

// AnnualMarker is the sub-period code of an annual-total row.
const AnnualMarker = "13"

// RawAnnual is an annual-total raw record whose value has not been coerced yet.
type RawAnnual struct {
	Year        int
	MSN         string
	Value       string
	Description string
}

// ValidateSchema checks that a raw table carries the period, variable and value columns.
func ValidateSchema(tbl *model.RawTable) error {
	for _, col := range []string{loader.ColPeriod, loader.ColMSN, loader.ColValue} {
		if !tbl.HasColumn(col) {
			return &SchemaError{Dataset: tbl.Name, Column: col}
		}
	}
	return nil
}

// FilterAnnual keeps only annual-total rows (period code ending in 13) and
// decomposes the period code into a Year. Rows whose period code cannot be
// parsed are skipped. A table without annual rows yields an empty result.
func FilterAnnual(tbl *model.RawTable) ([]RawAnnual, error) {
	if err := ValidateSchema(tbl); err != nil {
		return nil, err
	}

	out := make([]RawAnnual, 0, len(tbl.Records)/13+1)
	skipped := 0
	for _, r := range tbl.Records {
		year, marker, ok := splitPeriod(r.Period)
		if !ok {
			skipped++
			continue
		}
		if marker != AnnualMarker {
			continue
		}
		out = append(out, RawAnnual{
			Year:        year,
			MSN:         r.MSN,
			Value:       r.Value,
			Description: r.Description,
		})
	}

	if skipped > 0 {
		zap.L().Debug("skipped rows with malformed period code",
			zap.String("dataset", tbl.Name),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

// splitPeriod splits a YYYYMM code into its year and two-digit sub-period marker.
func splitPeriod(period string) (int, string, bool) {
	if len(period) < 3 {
		return 0, "", false
	}
	year, err := strconv.Atoi(period[:len(period)-2])
	if err != nil {
		return 0, "", false
	}
	marker := period[len(period)-2:]
	if _, err := strconv.Atoi(marker); err != nil {
		return 0, "", false
	}
	return year, marker, true
}
