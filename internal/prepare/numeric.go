package prepare

import (
	"strconv"
	"strings"

	"github.com/sells-group/energy-cli/internal/model"
)

// CoerceNumeric parses a raw value. The "Not Available" sentinel and any
// non-numeric token become Missing; it never fails.
func CoerceNumeric(s string) model.NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Missing
	}
	return model.Float(v)
}

// ToNumeric coerces the values of annual rows.
func ToNumeric(rows []RawAnnual) []model.AnnualRecord {
	out := make([]model.AnnualRecord, len(rows))
	for i, r := range rows {
		out[i] = model.AnnualRecord{
			Year:        r.Year,
			MSN:         r.MSN,
			Value:       CoerceNumeric(r.Value),
			Description: r.Description,
		}
	}
	return out
}
