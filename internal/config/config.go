package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	EIA       EIAConfig       `yaml:"eia" mapstructure:"eia"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Warehouse WarehouseConfig `yaml:"warehouse" mapstructure:"warehouse"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates raw inputs and output artifacts.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" mapstructure:"raw_dir"`
	EnergyFile   string `yaml:"energy_file" mapstructure:"energy_file"`
	CO2File      string `yaml:"co2_file" mapstructure:"co2_file"`
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	OutputDir    string `yaml:"output_dir" mapstructure:"output_dir"`
}

// EIAConfig holds the download locations of the Monthly Energy Review tables.
type EIAConfig struct {
	EnergyURL   string `yaml:"energy_url" mapstructure:"energy_url"`
	CO2URL      string `yaml:"co2_url" mapstructure:"co2_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// AnalysisConfig configures the statistics and model fits.
type AnalysisConfig struct {
	Target                string   `yaml:"target" mapstructure:"target"`
	Features              []string `yaml:"features" mapstructure:"features"`
	CorrelationPredictors []string `yaml:"correlation_predictors" mapstructure:"correlation_predictors"`
	Alpha                 float64  `yaml:"alpha" mapstructure:"alpha"`
	MaxDepth              int      `yaml:"max_depth" mapstructure:"max_depth"`
	Seed                  uint64   `yaml:"seed" mapstructure:"seed"`
	TestFraction          float64  `yaml:"test_fraction" mapstructure:"test_fraction"`
	BreakThreshold        float64  `yaml:"break_threshold" mapstructure:"break_threshold"`
	AutocorrLag           int      `yaml:"autocorr_lag" mapstructure:"autocorr_lag"`
	Scale                 bool     `yaml:"scale" mapstructure:"scale"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// WarehouseConfig configures the Postgres publish target.
type WarehouseConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// ServerConfig configures the results API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENERGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.energy_file", "MER_T01_01.csv")
	v.SetDefault("data.co2_file", "MER_T11_01.csv")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.output_dir", "outputs")
	v.SetDefault("eia.energy_url", "https://www.eia.gov/totalenergy/data/browse/csv.php?tbl=T01.01")
	v.SetDefault("eia.co2_url", "https://www.eia.gov/totalenergy/data/browse/csv.php?tbl=T11.01")
	v.SetDefault("eia.user_agent", "energy-cli/1.0")
	v.SetDefault("eia.timeout_secs", 60)
	v.SetDefault("eia.max_retries", 3)
	v.SetDefault("analysis.target", "CO2Intensity")
	v.SetDefault("analysis.features", []string{"FossilShare", "RenewableShare"})
	v.SetDefault("analysis.correlation_predictors", []string{"FossilShare", "RenewableShare", "NuclearShare"})
	v.SetDefault("analysis.alpha", 0.05)
	v.SetDefault("analysis.max_depth", 4)
	v.SetDefault("analysis.seed", 42)
	v.SetDefault("analysis.test_fraction", 0.2)
	v.SetDefault("analysis.break_threshold", 5.0)
	v.SetDefault("analysis.autocorr_lag", 1)
	v.SetDefault("analysis.scale", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "data/energy.db")
	v.SetDefault("warehouse.table", "energy.clean_panel")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.timeout_secs", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required by the given command mode.
// Valid modes are "analyze", "fetch", "publish" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "analyze":
		errs = append(errs, c.validateData()...)
		errs = append(errs, c.validateAnalysis()...)
	case "fetch":
		if c.EIA.EnergyURL == "" || c.EIA.CO2URL == "" {
			errs = append(errs, "eia.energy_url and eia.co2_url are required")
		}
		if c.Data.RawDir == "" {
			errs = append(errs, "data.raw_dir is required")
		}
	case "publish":
		errs = append(errs, c.validateData()...)
		if c.Warehouse.DatabaseURL == "" {
			errs = append(errs, "warehouse.database_url is required")
		}
		if c.Warehouse.Table == "" {
			errs = append(errs, "warehouse.table is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateData() []string {
	var errs []string
	if c.Data.EnergyFile == "" {
		errs = append(errs, "data.energy_file is required")
	}
	if c.Data.CO2File == "" {
		errs = append(errs, "data.co2_file is required")
	}
	return errs
}

func (c *Config) validateAnalysis() []string {
	a := c.Analysis
	var errs []string
	if a.Target == "" {
		errs = append(errs, "analysis.target is required")
	}
	if len(a.Features) == 0 {
		errs = append(errs, "analysis.features must not be empty")
	}
	if a.Alpha <= 0 || a.Alpha >= 1 {
		errs = append(errs, fmt.Sprintf("analysis.alpha must be in (0, 1), got %v", a.Alpha))
	}
	if a.TestFraction <= 0 || a.TestFraction >= 1 {
		errs = append(errs, fmt.Sprintf("analysis.test_fraction must be in (0, 1), got %v", a.TestFraction))
	}
	if a.MaxDepth < 1 {
		errs = append(errs, "analysis.max_depth must be >= 1")
	}
	if a.AutocorrLag < 1 {
		errs = append(errs, "analysis.autocorr_lag must be >= 1")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
