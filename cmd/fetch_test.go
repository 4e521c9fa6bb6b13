package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/energy-cli/internal/fetcher/mocks"
)

func TestRunFetch(t *testing.T) {
	c := testConfig(t.TempDir())
	require.NoError(t, os.MkdirAll(c.Data.RawDir, 0o755))
	co2Path := filepath.Join(c.Data.RawDir, c.Data.CO2File)
	require.NoError(t, os.WriteFile(co2Path, []byte("cached"), 0o644))
	require.NoError(t, os.WriteFile(co2Path+".etag", []byte(`"co2-v1"`), 0o644))

	f := mocks.NewMockFetcher(t)
	f.On("DownloadIfChanged", mock.Anything, c.EIA.EnergyURL, "").
		Return(io.NopCloser(strings.NewReader(energyCSV())), `"energy-v1"`, true, nil)
	f.On("DownloadIfChanged", mock.Anything, c.EIA.CO2URL, `"co2-v1"`).
		Return(nil, `"co2-v1"`, false, nil)

	var buf bytes.Buffer
	require.NoError(t, runFetch(context.Background(), f, c, &buf))

	assert.Contains(t, buf.String(), "downloaded "+filepath.Join(c.Data.RawDir, c.Data.EnergyFile))
	assert.Contains(t, buf.String(), "unchanged  "+co2Path)

	data, err := os.ReadFile(co2Path)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
}

func TestRunFetch_StopsOnError(t *testing.T) {
	c := testConfig(t.TempDir())

	f := mocks.NewMockFetcher(t)
	f.On("DownloadIfChanged", mock.Anything, c.EIA.EnergyURL, "").
		Return(nil, "", false, errors.New("unexpected status 500"))

	err := runFetch(context.Background(), f, c, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
