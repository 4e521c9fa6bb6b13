package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/energy-cli/internal/loader"
	"github.com/sells-group/energy-cli/internal/model"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile the raw MER tables",
	Long:  "Prints row counts, missing values, month codes and the available MSN variables for each raw table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		energy, co2, err := loader.LoadPair(cmd.Context(), cfg.Data.RawDir, cfg.Data.EnergyFile, cfg.Data.CO2File)
		if err != nil {
			return err
		}
		showVars, _ := cmd.Flags().GetBool("variables")
		for _, tbl := range []*model.RawTable{energy, co2} {
			if err := formatProfile(os.Stdout, tbl, showVars); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	profileCmd.Flags().Bool("variables", true, "list available MSN variables")
	rootCmd.AddCommand(profileCmd)
}

// formatProfile writes a table profile and optionally its variables to out.
func formatProfile(out io.Writer, tbl *model.RawTable, showVars bool) error {
	p := loader.ProfileTable(tbl)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "== %s\n", p.Name)
	_, _ = fmt.Fprintf(w, "Rows:\t%d\n", p.Rows)
	_, _ = fmt.Fprintf(w, "Variables:\t%d\n", p.Variables)
	_, _ = fmt.Fprintf(w, "Not Available:\t%d\n", p.NotAvailableCount)
	_, _ = fmt.Fprintf(w, "Mixed granularity:\t%t\n", p.MixedGranularity)
	for _, c := range p.Columns {
		if n := p.MissingValues[c]; n > 0 {
			_, _ = fmt.Fprintf(w, "  missing %s:\t%d\n", c, n)
		}
	}
	if len(p.MonthCodes) > 0 {
		codes := make([]string, 0, len(p.MonthCodes))
		for code := range p.MonthCodes {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		_, _ = fmt.Fprintf(w, "Month codes:\t%v\n", codes)
	}
	_ = w.Flush()

	if !showVars {
		return nil
	}
	vars, err := loader.Variables(tbl)
	if err != nil {
		return err
	}
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MSN\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "---\t-----------")
	for _, v := range vars {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", v.MSN, v.Description)
	}
	_, _ = fmt.Fprintln(w)
	return w.Flush()
}
