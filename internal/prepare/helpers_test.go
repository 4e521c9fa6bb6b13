package prepare

import (
	"fmt"

	"github.com/sells-group/energy-cli/internal/loader"
	"github.com/sells-group/energy-cli/internal/model"
)

var rawHeader = []string{"MSN", "YYYYMM", "Value", "Description"}

// rawTable builds a raw table from (msn, period, value) triples.
func rawTable(name string, rows ...[3]string) *model.RawTable {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r[0], r[1], r[2], r[0] + " description"}
	}
	return loader.Parse(name, rawHeader, data)
}

// energyYears builds a synthetic Table 1.1 with monthly and annual rows for each year.
func energyYears(from, to int) *model.RawTable {
	var rows [][3]string
	for y := from; y <= to; y++ {
		total := 80.0 + float64(y-from)*0.3
		fossil := total * 0.85
		renew := total * 0.07
		nuclear := total * 0.06
		for m := 1; m <= 12; m++ {
			rows = append(rows, [3]string{"TETCBUS", fmt.Sprintf("%d%02d", y, m), fmt.Sprint(total / 12)})
		}
		rows = append(rows,
			[3]string{"TETCBUS", fmt.Sprintf("%d13", y), fmt.Sprint(total)},
			[3]string{"FFTCBUS", fmt.Sprintf("%d13", y), fmt.Sprint(fossil)},
			[3]string{"RETCBUS", fmt.Sprintf("%d13", y), fmt.Sprint(renew)},
			[3]string{"NUETBUS", fmt.Sprintf("%d13", y), fmt.Sprint(nuclear)},
			[3]string{"PMTCBUS", fmt.Sprintf("%d13", y), "1.0"},
		)
	}
	return rawTable("MER_T01_01.csv", rows...)
}

// co2Years builds a synthetic Table 11.1.
func co2Years(from, to int) *model.RawTable {
	var rows [][3]string
	for y := from; y <= to; y++ {
		rows = append(rows,
			[3]string{"TETCEUS", fmt.Sprintf("%d06", y), "400"},
			[3]string{"TETCEUS", fmt.Sprintf("%d13", y), fmt.Sprint(4800.0 - float64(y-from)*10)},
		)
	}
	return rawTable("MER_T11_01.csv", rows...)
}
