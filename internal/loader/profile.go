package loader

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/energy-cli/internal/model"
)

// NotAvailable is the EIA sentinel for a missing observation.
const NotAvailable = "Not Available"

// Profile summarises data quality issues in a raw table.
type Profile struct {
	Name              string         `json:"name"`
	Rows              int            `json:"rows"`
	Columns           []string       `json:"columns"`
	MissingValues     map[string]int `json:"missing_values"`
	NotAvailableCount int            `json:"not_available_count"`
	MonthCodes        map[string]int `json:"month_codes,omitempty"`
	MixedGranularity  bool           `json:"has_mixed_granularity"`
	Variables         int            `json:"variables"`
}

// ProfileTable profiles a raw table. Month codes are only reported when the
// table carries a period column.
func ProfileTable(tbl *model.RawTable) Profile {
	p := Profile{
		Name:          tbl.Name,
		Rows:          len(tbl.Records),
		Columns:       slices.Clone(tbl.Columns),
		MissingValues: make(map[string]int, len(tbl.Columns)),
	}

	hasPeriod := tbl.HasColumn(ColPeriod)
	if hasPeriod {
		p.MonthCodes = make(map[string]int)
	}
	msns := make(map[string]struct{})

	for _, r := range tbl.Records {
		fields := map[string]string{
			ColPeriod:      r.Period,
			ColMSN:         r.MSN,
			ColValue:       r.Value,
			ColDescription: r.Description,
			ColUnit:        r.Unit,
		}
		for _, c := range tbl.Columns {
			v := fields[c]
			if v == "" {
				p.MissingValues[c]++
			}
			if v == NotAvailable {
				p.NotAvailableCount++
			}
		}
		if hasPeriod && len(r.Period) >= 2 {
			p.MonthCodes[r.Period[len(r.Period)-2:]]++
		}
		if r.MSN != "" {
			msns[r.MSN] = struct{}{}
		}
	}

	p.MixedGranularity = len(p.MonthCodes) > 1
	p.Variables = len(msns)
	return p
}

// Variable is an MSN code with its description.
type Variable struct {
	MSN         string `json:"msn"`
	Description string `json:"description"`
}

// Variables lists the MSN codes in a table with their first observed description.
func Variables(tbl *model.RawTable) ([]Variable, error) {
	if !tbl.HasColumn(ColMSN) || !tbl.HasColumn(ColDescription) {
		return nil, eris.Errorf("loader: %s must contain %q and %q columns", tbl.Name, ColMSN, ColDescription)
	}

	seen := make(map[string]string)
	for _, r := range tbl.Records {
		if r.MSN == "" {
			continue
		}
		if _, ok := seen[r.MSN]; !ok {
			seen[r.MSN] = r.Description
		}
	}

	out := make([]Variable, 0, len(seen))
	for msn, desc := range seen {
		out = append(out, Variable{MSN: msn, Description: desc})
	}
	slices.SortFunc(out, func(a, b Variable) int { return cmp.Compare(a.MSN, b.MSN) })
	return out, nil
}
