// Package loader reads EIA Monthly Energy Review tables into raw long-format records.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/energy-cli/internal/fetcher"
	"github.com/sells-group/energy-cli/internal/model"
)

// Canonical raw column names.
const (
	ColPeriod      = "YYYYMM"
	ColMSN         = "MSN"
	ColValue       = "Value"
	ColDescription = "Description"
	ColUnit        = "Unit"
)

var knownColumns = []string{ColPeriod, ColMSN, ColValue, ColDescription, ColUnit}

// ErrFileNotFound is returned when a raw input file does not exist.
var ErrFileNotFound = eris.New("loader: file not found")

// Load reads a raw table from a .csv or .xlsx file.
func Load(ctx context.Context, path string) (*model.RawTable, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrFileNotFound, "loader: %s", path)
		}
		return nil, eris.Wrapf(err, "loader: stat %s", path)
	}

	var (
		header []string
		rows   [][]string
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		header, rows, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	default:
		header, rows, err = readCSVFile(ctx, path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read %s", path)
	}

	tbl := Parse(filepath.Base(path), header, rows)
	zap.L().Debug("loaded raw table",
		zap.String("file", path),
		zap.Int("rows", len(tbl.Records)),
		zap.Strings("columns", tbl.Columns),
	)
	return tbl, nil
}

// LoadPair loads the energy and CO2 tables from dir.
func LoadPair(ctx context.Context, dir, energyFile, co2File string) (*model.RawTable, *model.RawTable, error) {
	energy, err := Load(ctx, filepath.Join(dir, energyFile))
	if err != nil {
		return nil, nil, err
	}
	co2, err := Load(ctx, filepath.Join(dir, co2File))
	if err != nil {
		return nil, nil, err
	}
	return energy, co2, nil
}

func readCSVFile(ctx context.Context, path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open file")
	}
	defer f.Close() //nolint:errcheck

	return fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{LazyQuotes: true})
}

// Parse maps a header and data rows onto raw records. Header names are matched
// case-insensitively; unknown columns (e.g. Column_Order) are ignored. Columns
// records only the known columns actually present.
func Parse(name string, header []string, rows [][]string) *model.RawTable {
	colIdx := mapColumns(header)

	tbl := &model.RawTable{Name: name}
	for _, c := range knownColumns {
		if _, ok := colIdx[c]; ok {
			tbl.Columns = append(tbl.Columns, c)
		}
	}

	tbl.Records = make([]model.RawRecord, 0, len(rows))
	for _, row := range rows {
		tbl.Records = append(tbl.Records, model.RawRecord{
			Period:      getCol(row, colIdx, ColPeriod),
			MSN:         getCol(row, colIdx, ColMSN),
			Value:       getCol(row, colIdx, ColValue),
			Description: getCol(row, colIdx, ColDescription),
			Unit:        getCol(row, colIdx, ColUnit),
		})
	}
	return tbl
}

// mapColumns builds a canonical column name → index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		for _, known := range knownColumns {
			if strings.EqualFold(col, known) {
				if _, dup := m[known]; !dup {
					m[known] = i
				}
			}
		}
	}
	return m
}

func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
