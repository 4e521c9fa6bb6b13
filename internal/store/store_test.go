package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/energy-cli/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleResults() *model.Results {
	return &model.Results{
		Rows:      52,
		FirstYear: 1973,
		LastYear:  2024,
		Target:    model.ColCO2Intensity,
		Features:  []string{model.ColFossilShare, model.ColRenewableShare},
		Correlations: map[string]model.Correlation{
			model.ColFossilShare: {Correlation: model.Float(0.97), PValue: model.Float(1e-30), Significant: true, N: 52},
		},
		Autocorrelation: model.Float(0.98),
		FullModel: model.LinearResult{
			Metrics:      model.Metrics{R2: 0.95, RMSE: 0.4, MAE: 0.3},
			Coefficients: map[string]float64{model.ColFossilShare: 0.55, model.ColRenewableShare: -0.1},
			Intercept:    12.5,
		},
		TimeSplit: model.TimeSplitResult{TrainSize: 41, TestSize: 11, StructuralBreak: true, SplitYear: 2014},
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "data/raw/MER_T01_01.csv", "data/raw/MER_T11_01.csv")
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, model.RunStatusRunning, run.Status)

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, model.RunStatusRunning, got.Status)
		assert.Equal(t, "data/raw/MER_T01_01.csv", got.EnergyFile)
		assert.Equal(t, "data/raw/MER_T11_01.csv", got.CO2File)
		assert.Nil(t, got.Results)
		assert.Empty(t, got.Error)
	})

	t.Run("GetRunNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetRun(context.Background(), "nonexistent-id")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("CompleteRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "e.csv", "c.csv")
		require.NoError(t, err)
		require.NoError(t, s.CompleteRun(ctx, run.ID, sampleResults()))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		require.NotNil(t, got.Results)
		assert.Equal(t, sampleResults(), got.Results)
	})

	t.Run("CompleteRunNotFound", func(t *testing.T) {
		s := newStore(t)
		err := s.CompleteRun(context.Background(), "nonexistent-id", sampleResults())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("FailRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "e.csv", "c.csv")
		require.NoError(t, err)
		require.NoError(t, s.FailRun(ctx, run.ID, errors.New("prepare: energy panel: missing column")))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusFailed, got.Status)
		assert.Equal(t, "prepare: energy panel: missing column", got.Error)
	})

	t.Run("LatestRunSkipsIncomplete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.LatestRun(ctx)
		assert.True(t, errors.Is(err, ErrNotFound))

		first, err := s.CreateRun(ctx, "e.csv", "c.csv")
		require.NoError(t, err)
		require.NoError(t, s.CompleteRun(ctx, first.ID, sampleResults()))

		failed, err := s.CreateRun(ctx, "e.csv", "c.csv")
		require.NoError(t, err)
		require.NoError(t, s.FailRun(ctx, failed.ID, nil))

		latest, err := s.LatestRun(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, latest.ID)
	})

	t.Run("ListRuns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateRun(ctx, "a.csv", "c.csv")
		require.NoError(t, err)
		b, err := s.CreateRun(ctx, "b.csv", "c.csv")
		require.NoError(t, err)
		require.NoError(t, s.CompleteRun(ctx, b.ID, sampleResults()))

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, b.ID, all[0].ID)
		assert.Equal(t, a.ID, all[1].ID)

		running, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
		require.NoError(t, err)
		require.Len(t, running, 1)
		assert.Equal(t, "a.csv", running[0].EnergyFile)

		limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		offset, err := s.ListRuns(ctx, RunFilter{Limit: 10, Offset: 1})
		require.NoError(t, err)
		require.Len(t, offset, 1)
		assert.Equal(t, a.ID, offset[0].ID)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}
