package model

// Correlation is a Pearson correlation of one predictor against the target.
// Correlation and PValue are missing when either side is constant.
type Correlation struct {
	Correlation NullFloat `json:"correlation" yaml:"correlation"`
	PValue      NullFloat `json:"p_value" yaml:"p_value"`
	Significant bool      `json:"significant" yaml:"significant"`
	N           int       `json:"n" yaml:"n"`
}

// Metrics is the goodness-of-fit triple reported for every model.
type Metrics struct {
	R2   float64 `json:"r2" yaml:"r2"`
	RMSE float64 `json:"rmse" yaml:"rmse"`
	MAE  float64 `json:"mae" yaml:"mae"`
}

// LinearResult holds an ordinary least squares fit.
type LinearResult struct {
	Metrics      Metrics            `json:"metrics" yaml:"metrics"`
	Coefficients map[string]float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64            `json:"intercept" yaml:"intercept"`
	Scaled       bool               `json:"scaled" yaml:"scaled"`
	Predictions  []float64          `json:"predictions,omitempty" yaml:"-"`
	Years        []int              `json:"years,omitempty" yaml:"-"`
}

// TreeResult holds a regression tree fit.
type TreeResult struct {
	Metrics           Metrics            `json:"metrics" yaml:"metrics"`
	FeatureImportance map[string]float64 `json:"feature_importance" yaml:"feature_importance"`
	Depth             int                `json:"depth" yaml:"depth"`
	Leaves            int                `json:"leaves" yaml:"leaves"`
}

// TimeSplitResult holds a chronological train/test evaluation.
type TimeSplitResult struct {
	TrainSize       int     `json:"train_size" yaml:"train_size"`
	TestSize        int     `json:"test_size" yaml:"test_size"`
	TrainMean       float64 `json:"train_mean" yaml:"train_mean"`
	TestMean        float64 `json:"test_mean" yaml:"test_mean"`
	R2              float64 `json:"r2" yaml:"r2"`
	RMSE            float64 `json:"rmse" yaml:"rmse"`
	StructuralBreak bool    `json:"structural_break" yaml:"structural_break"`
	SplitYear       int     `json:"split_year,omitempty" yaml:"split_year,omitempty"`
}

// Results is the bundle handed to reporting consumers.
type Results struct {
	Rows              int                             `json:"rows" yaml:"rows"`
	FirstYear         int                             `json:"first_year" yaml:"first_year"`
	LastYear          int                             `json:"last_year" yaml:"last_year"`
	Target            string                          `json:"target" yaml:"target"`
	Features          []string                        `json:"features" yaml:"features"`
	Correlations      map[string]Correlation          `json:"correlations" yaml:"correlations"`
	Multicollinearity map[string]map[string]NullFloat `json:"multicollinearity" yaml:"multicollinearity"`
	Autocorrelation   NullFloat                       `json:"autocorrelation" yaml:"autocorrelation"`
	FullModel         LinearResult                    `json:"full_model" yaml:"full_model"`
	DecisionTree      TreeResult                      `json:"decision_tree" yaml:"decision_tree"`
	TimeSplit         TimeSplitResult                 `json:"time_split" yaml:"time_split"`
}
