package prepare

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/energy-cli/internal/model"
)

// WriteCSV writes the clean dataset to path, creating parent directories.
func WriteCSV(rows []model.CleanRow, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "clean export: create dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "clean export: create file")
	}
	defer f.Close() //nolint:errcheck

	return EncodeCSV(f, rows)
}

// EncodeCSV writes the clean dataset as CSV. Missing values are empty cells.
func EncodeCSV(w io.Writer, rows []model.CleanRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(model.CleanColumns); err != nil {
		return eris.Wrap(err, "clean export: write header")
	}

	record := make([]string, len(model.CleanColumns))
	for _, r := range rows {
		record[0] = strconv.Itoa(r.Year)
		for i, col := range model.CleanColumns[1:] {
			record[i+1] = r.Field(col).String()
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "clean export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "clean export: flush")
}
