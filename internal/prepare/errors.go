package prepare

import "fmt"

// SchemaError reports a column missing from a raw input table.
type SchemaError struct {
	Dataset string
	Column  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("prepare: dataset %q is missing required column %q", e.Dataset, e.Column)
}

// MissingColumnError reports a feature prerequisite column absent from a panel.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("prepare: missing required column %q", e.Column)
}
