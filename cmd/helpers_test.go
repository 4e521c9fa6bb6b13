package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/energy-cli/internal/config"
)

const (
	fixtureFrom = 1990
	fixtureTo   = 2009
)

// testConfig returns a config rooted at dir with the analysis defaults.
func testConfig(dir string) *config.Config {
	return &config.Config{
		Data: config.DataConfig{
			RawDir:       filepath.Join(dir, "raw"),
			EnergyFile:   "MER_T01_01.csv",
			CO2File:      "MER_T11_01.csv",
			ProcessedDir: filepath.Join(dir, "processed"),
			OutputDir:    filepath.Join(dir, "outputs"),
		},
		EIA: config.EIAConfig{
			EnergyURL: "https://www.eia.gov/totalenergy/data/browse/csv.php?tbl=T01.01",
			CO2URL:    "https://www.eia.gov/totalenergy/data/browse/csv.php?tbl=T11.01",
		},
		Analysis: config.AnalysisConfig{
			Target:                "CO2Intensity",
			Features:              []string{"FossilShare", "RenewableShare"},
			CorrelationPredictors: []string{"FossilShare", "RenewableShare", "NuclearShare"},
			Alpha:                 0.05,
			MaxDepth:              4,
			Seed:                  42,
			TestFraction:          0.2,
			BreakThreshold:        5,
			AutocorrLag:           1,
		},
		Warehouse: config.WarehouseConfig{Table: "energy.clean_panel"},
	}
}

// energyCSV renders a synthetic MER Table 1.1 with a shrinking fossil share.
func energyCSV() string {
	var b strings.Builder
	b.WriteString("MSN,YYYYMM,Value,Column_Order,Description,Unit\n")
	for y := fixtureFrom; y <= fixtureTo; y++ {
		i := float64(y - fixtureFrom)
		total := 84.0 + 0.4*i
		for m := 1; m <= 12; m++ {
			fmt.Fprintf(&b, "TETCBUS,%d%02d,%.4f,1,\"Total Primary Energy Consumption\",Quadrillion Btu\n", y, m, total/12)
		}
		fmt.Fprintf(&b, "TETCBUS,%d13,%.4f,1,\"Total Primary Energy Consumption\",Quadrillion Btu\n", y, total)
		fmt.Fprintf(&b, "FFTCBUS,%d13,%.4f,2,\"Total Fossil Fuels Consumption\",Quadrillion Btu\n", y, total*(0.90-0.005*i))
		fmt.Fprintf(&b, "RETCBUS,%d13,%.4f,3,\"Total Renewable Energy Consumption\",Quadrillion Btu\n", y, total*(0.04+0.0002*i*i))
		fmt.Fprintf(&b, "NUETBUS,%d13,%.4f,4,\"Nuclear Electric Power Consumption\",Quadrillion Btu\n", y, total*(0.05+0.001*i))
	}
	b.WriteString("PMTCBUS,199013,Not Available,5,\"Petroleum Consumption\",Quadrillion Btu\n")
	return b.String()
}

// co2CSV renders a synthetic MER Table 11.1 consistent with energyCSV.
func co2CSV() string {
	var b strings.Builder
	b.WriteString("MSN,YYYYMM,Value,Column_Order,Description,Unit\n")
	for y := fixtureFrom; y <= fixtureTo; y++ {
		i := float64(y - fixtureFrom)
		total := 84.0 + 0.4*i
		co2 := total*70*(0.90-0.005*i) + float64(y%3)*4
		fmt.Fprintf(&b, "TETCEUS,%d06,%.4f,1,\"Total Energy CO2 Emissions\",Million Metric Tons of Carbon Dioxide\n", y, co2/12)
		fmt.Fprintf(&b, "TETCEUS,%d13,%.4f,1,\"Total Energy CO2 Emissions\",Million Metric Tons of Carbon Dioxide\n", y, co2)
	}
	return b.String()
}

// writeRaw writes both raw tables into c.Data.RawDir.
func writeRaw(t *testing.T, c *config.Config, energy, co2 string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(c.Data.RawDir, 0o755))
	if energy != "" {
		require.NoError(t, os.WriteFile(filepath.Join(c.Data.RawDir, c.Data.EnergyFile), []byte(energy), 0o644))
	}
	if co2 != "" {
		require.NoError(t, os.WriteFile(filepath.Join(c.Data.RawDir, c.Data.CO2File), []byte(co2), 0o644))
	}
}
