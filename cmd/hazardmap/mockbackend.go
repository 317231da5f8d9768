package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

//go:embed mockdata/*.json
var mockData embed.FS

// mockFilters maps a query parameter to the record field it narrows and
// whether a prefix match is enough.
var mockFilters = map[string]struct {
	field  string
	prefix bool
}{
	"year":     {field: "date", prefix: true},
	"category": {field: "category"},
	"country":  {field: "country"},
}

func newMockBackendCmd(opts *rootOptions) *cobra.Command {
	var (
		addr string
		fail []string
	)

	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve fixture hazard feeds for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

			srv := &http.Server{
				Addr:              addr,
				Handler:           newMockBackend(fail),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				logger.Info("mock backend started", "addr", addr, "failing", fail)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("mock backend error", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8081", "listen address")
	cmd.Flags().StringSliceVar(&fail, "fail", nil, "endpoints answering 500, e.g. gdacs,weather")
	return cmd
}

// newMockBackend serves the embedded fixtures under the backend's /api routes.
// Endpoints named in fail answer 500 with a JSON error body.
func newMockBackend(fail []string) http.Handler {
	failing := make(map[string]bool, len(fail))
	for _, name := range fail {
		failing[strings.ToLower(strings.TrimSpace(name))] = true
	}

	mux := http.NewServeMux()
	for _, name := range []string{"eonet", "gdacs", "disease", "risk-analysis", "weather"} {
		mux.HandleFunc("GET /api/"+name, func(w http.ResponseWriter, r *http.Request) {
			if failing[name] {
				writeMockJSON(w, http.StatusInternalServerError, map[string]string{"error": name + " feed unavailable"})
				return
			}
			data, err := mockData.ReadFile("mockdata/" + name + ".json")
			if err != nil {
				writeMockJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			if name == "weather" {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(data)
				return
			}
			writeMockJSON(w, http.StatusOK, filterRecords(data, r))
		})
	}
	return mux
}

// filterRecords applies the query filters the real backend honors.
func filterRecords(data []byte, r *http.Request) []json.RawMessage {
	out := []json.RawMessage{}
	for _, rec := range gjson.ParseBytes(data).Array() {
		if matchesQuery(rec, r) {
			out = append(out, json.RawMessage(rec.Raw))
		}
	}
	return out
}

func matchesQuery(rec gjson.Result, r *http.Request) bool {
	for param, f := range mockFilters {
		want := strings.TrimSpace(r.URL.Query().Get(param))
		if want == "" {
			continue
		}
		got := rec.Get(f.field).String()
		if f.prefix && !strings.HasPrefix(got, want) {
			return false
		}
		if !f.prefix && !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

func writeMockJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
