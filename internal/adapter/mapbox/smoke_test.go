//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_PlaceName(t *testing.T) {
	c := smokeClient(t)

	name, err := c.PlaceName(context.Background(), 37.5665, 126.978)
	require.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestSmoke_CachedNamer(t *testing.T) {
	cached := NewCachedNamer(smokeClient(t), 10, observability.NewMetricsForTesting())

	n1, err := cached.PlaceName(context.Background(), 35.1796, 129.0756)
	require.NoError(t, err)

	n2, err := cached.PlaceName(context.Background(), 35.1796, 129.0756)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)
}
