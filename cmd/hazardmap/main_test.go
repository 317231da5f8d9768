package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/hazard-map-overlay/internal/adapter/backend"
	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startMockBackend(t *testing.T, fail ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newMockBackend(fail))
	t.Cleanup(srv.Close)
	return srv
}

// setTestEnv points the config at srv and disables optional integrations.
func setTestEnv(t *testing.T, srv *httptest.Server) {
	t.Helper()
	t.Setenv("BACKEND_URL", srv.URL)
	t.Setenv("MAPBOX_TOKEN", "")
	t.Setenv("MAPBOX_ENABLED", "false")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "")
	t.Setenv("VIEW_PRESET", "")
	t.Setenv("COORDINATE_POLICY", "")
	t.Setenv("LOG_LEVEL", "error")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func testClient(srv *httptest.Server) *backend.Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return backend.NewClient(srv.URL, 0, logger, observability.NewMetricsForTesting())
}

func TestMockBackend_FiltersByQuery(t *testing.T) {
	srv := startMockBackend(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"all eonet", "/api/eonet", 4},
		{"eonet by category", "/api/eonet?category=wildfires", 1},
		{"eonet by year", "/api/eonet?year=2024", 3},
		{"eonet by other year", "/api/eonet?year=2019", 0},
		{"disease by country", "/api/disease?country=Bangladesh", 1},
		{"gdacs ignores unknown params", "/api/gdacs?foo=bar", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var records []json.RawMessage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
			assert.Len(t, records, tt.want)
		})
	}
}

func TestMockBackend_FailingEndpoint(t *testing.T) {
	srv := startMockBackend(t, "GDACS")

	resp, err := http.Get(srv.URL + "/api/gdacs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "gdacs feed unavailable", body["error"])
}

func TestRunValidation_AllFeedsPass(t *testing.T) {
	srv := startMockBackend(t)

	phases := runValidation(context.Background(), testClient(srv), domain.CoordinatePolicyTruthy, domain.Filters{}, 37.5, 127.0)
	require.Len(t, phases, 5)
	for _, p := range phases {
		assert.True(t, p.passed(), "%s: %v", p.name, p.errors)
	}

	byName := make(map[string]*phase, len(phases))
	for _, p := range phases {
		byName[p.name] = p
	}
	assert.Equal(t, 4, byName["EONET feed"].records)
	assert.Len(t, byName["EONET feed"].warnings, 1, "the iceberg has a null latitude")
	assert.Len(t, byName["Disease feed"].warnings, 1, "zero coordinates are not drawn under the truthy policy")
	assert.Equal(t, 4, byName["Risk analysis feed"].records)
	assert.Equal(t, 1, byName["Weather point query"].records)

	var out bytes.Buffer
	assert.True(t, reportPhases(&out, phases))
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRunValidation_StrictPolicyAcceptsZero(t *testing.T) {
	srv := startMockBackend(t)

	phases := runValidation(context.Background(), testClient(srv), domain.CoordinatePolicyStrict, domain.Filters{}, 37.5, 127.0)
	for _, p := range phases {
		if p.name == "Disease feed" {
			assert.Empty(t, p.warnings)
		}
	}
}

func TestRunValidation_ReportsFailingFeed(t *testing.T) {
	srv := startMockBackend(t, "gdacs", "weather")

	phases := runValidation(context.Background(), testClient(srv), domain.CoordinatePolicyTruthy, domain.Filters{}, 37.5, 127.0)

	var failed []string
	for _, p := range phases {
		if !p.passed() {
			failed = append(failed, p.name)
		}
	}
	assert.Equal(t, []string{"GDACS feed", "Weather point query"}, failed)

	var out bytes.Buffer
	assert.False(t, reportPhases(&out, phases))
	assert.Contains(t, out.String(), "gdacs feed unavailable")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestSnapshotCommand_WritesDrawnLayers(t *testing.T) {
	srv := startMockBackend(t)
	setTestEnv(t, srv)
	path := filepath.Join(t.TempDir(), "map.geojson")

	out, err := runCLI(t, "snapshot", "-o", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "eonet: 3 drawn, 1 skipped")
	assert.Contains(t, out, "disease: 2 drawn, 1 skipped")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 8)

	layers := make(map[string]int)
	for _, f := range fc.Features {
		layers[f.Properties.MustString("layer")]++
	}
	assert.Equal(t, map[string]int{"eonet": 3, "gdacs": 3, "disease": 2}, layers)
}

func TestSnapshotCommand_FailsWhenLayerFails(t *testing.T) {
	srv := startMockBackend(t, "disease")
	setTestEnv(t, srv)
	path := filepath.Join(t.TempDir(), "map.geojson")

	out, err := runCLI(t, "snapshot", "-o", path)
	require.Error(t, err)
	assert.Contains(t, out, "disease feed unavailable")

	// The layers that loaded are still written.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 6)
}

func TestWeatherCommand_PrintsPopup(t *testing.T) {
	srv := startMockBackend(t)
	setTestEnv(t, srv)

	out, err := runCLI(t, "weather", "--lat", "37.5665", "--lon", "126.978")
	require.NoError(t, err)
	assert.Contains(t, out, "Seoul")
	assert.Contains(t, out, `"error": false`)
}

func TestWeatherCommand_BackendError(t *testing.T) {
	srv := startMockBackend(t, "weather")
	setTestEnv(t, srv)

	out, err := runCLI(t, "weather", "--lat", "37.5665", "--lon", "126.978")
	require.Error(t, err)
	assert.Contains(t, out, `"error": true`)
}

func TestLoadEnvFile_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, loadEnvFile(""))
}

func TestLoadEnvFile_AppliesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HAZARD_MAP_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("HAZARD_MAP_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("HAZARD_MAP_TEST_VALUE"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("HAZARD_MAP_TEST_VALUE"))
}
