package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timberprices.msstate.edu/internal/app"
	"timberprices.msstate.edu/internal/appconf"
	"timberprices.msstate.edu/internal/restapi"
	"timberprices.msstate.edu/internal/stumpage"
)

func fixturePath(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", "ms_stumpage.csv"))
	require.NoError(t, err)
	return path
}

func TestRunExport(t *testing.T) {
	var buf bytes.Buffer
	n, err := runExport(context.Background(), nil, exportOptions{
		Source:   fixturePath(t),
		Types:    []string{"Pine Sawtimber"},
		Quarters: []string{"Q1"},
		YearMin:  2022,
	}, &buf)
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, n+1, len(rows))
	assert.Equal(t, []string{"Year", "Quarter", "Type", "Minimum", "Average", "Maximum", "Time"}, rows[0])
	for _, row := range rows[1:] {
		assert.Equal(t, "Pine Sawtimber", row[2])
		assert.Equal(t, "Q1", row[1])
		assert.GreaterOrEqual(t, row[0], "2022")
	}
}

func TestRunExportNoData(t *testing.T) {
	var buf bytes.Buffer
	_, err := runExport(context.Background(), nil, exportOptions{
		Source:  fixturePath(t),
		YearMin: 1990,
		YearMax: 1991,
	}, &buf)

	assert.ErrorIs(t, err, errNoData)
	assert.Zero(t, buf.Len())
}

func TestRunExportInvalidFilters(t *testing.T) {
	_, err := runExport(context.Background(), nil, exportOptions{
		Source:   fixturePath(t),
		Quarters: []string{"Q5"},
		YearMin:  2023,
		YearMax:  2021,
	}, io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filters")
	assert.Contains(t, err.Error(), "quarter: invalid quarter")
	assert.Contains(t, err.Error(), "yearMin must not be greater than yearMax")
}

func TestRunExportMissingSource(t *testing.T) {
	_, err := runExport(context.Background(), nil, exportOptions{
		Source: filepath.Join(t.TempDir(), "missing.csv"),
	}, io.Discard)

	var retrievalErr *stumpage.RetrievalError
	assert.ErrorAs(t, err, &retrievalErr)
}

func TestNewHandlerServesDashboardAndAPI(t *testing.T) {
	source := fixturePath(t)
	dataset, err := stumpage.Load(context.Background(), nil, source)
	require.NoError(t, err)

	application := &app.Application{
		Config: appconf.Config{
			Server: appconf.ServerConfig{Env: "test"},
			HTTP:   appconf.HTTPConfig{RateLimit: 100},
		},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Manager: stumpage.NewStaticManager(source, dataset),
	}
	api := restapi.NewRestAPI(application)
	t.Cleanup(api.Shutdown)

	server := httptest.NewServer(newHandler(application, api))
	t.Cleanup(server.Close)

	for _, endpoint := range []string{"/", "/api/options.json", "/api/prices.csv", "/healthz", "/debug/?dataType=types"} {
		resp, err := http.Get(server.URL + endpoint)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, endpoint)
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"), endpoint)
	}
}

func TestExportCommandOutFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("no matching records leaves no file", func(t *testing.T) {
		out := filepath.Join(dir, "empty.csv")
		rootCmd.SetArgs([]string{"export", "--source", fixturePath(t), "--year-min", "1990", "--year-max", "1991", "--out", out})
		rootCmd.SetOut(io.Discard)
		rootCmd.SetErr(io.Discard)

		err := rootCmd.Execute()

		assert.ErrorIs(t, err, errNoData)
		_, statErr := os.Stat(out)
		assert.True(t, os.IsNotExist(statErr), "no file should be created")
	})

	t.Run("matching records are written", func(t *testing.T) {
		out := filepath.Join(dir, "filtered.csv")
		rootCmd.SetArgs([]string{"export", "--source", fixturePath(t), "--type", "Pine Sawtimber", "--year-min", "2021", "--year-max", "2023", "--out", out})
		rootCmd.SetOut(io.Discard)
		rootCmd.SetErr(io.Discard)

		require.NoError(t, rootCmd.Execute())

		b, err := os.ReadFile(out)
		require.NoError(t, err)
		rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
		require.NoError(t, err)
		assert.Greater(t, len(rows), 1)
	})
}

func TestWriteOutput(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		require.NoError(t, writeOutput("-", &stdout, []byte("a,b\n")))
		assert.Equal(t, "a,b\n", stdout.String())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, writeOutput(path, io.Discard, []byte("a,b\n")))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n", string(b))
	})

	t.Run("unwritable path", func(t *testing.T) {
		err := writeOutput(filepath.Join(t.TempDir(), "missing", "out.csv"), io.Discard, []byte("x"))
		assert.Error(t, err)
	})
}

func TestWriteTimeoutCoversSourceFetch(t *testing.T) {
	assert.Equal(t, 40*time.Second, writeTimeout(30*time.Second))
	assert.Greater(t, writeTimeout(2*time.Minute), 2*time.Minute)
	assert.Equal(t, 10*time.Second, writeTimeout(0))
}
