// Package http serves the trigger API and operational endpoints of the
// overlay service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/layer"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Triggers are the callbacks the map controls invoke.
type Triggers interface {
	sharedobs.ReadinessChecker
	Toggle(ctx context.Context, source domain.Source, on bool) (layer.Report, error)
	SetFilters(ctx context.Context, f domain.Filters) []layer.Report
	Click(ctx context.Context, lat, lon float64) (domain.Popup, bool)
	Layers() []layer.Status
	Filters() domain.Filters
}

// MapView exposes what is currently on the map.
type MapView interface {
	FeatureCollection(bound *orb.Bound) *geojson.FeatureCollection
	Popup() (domain.Popup, bool)
	ClosePopup()
	Notifications(drain bool) []domain.Notification
}

// Server exposes the trigger API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	triggers   Triggers
	view       MapView
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the operational and /api routes.
func NewServer(addr string, triggers Triggers, view MapView, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Toggles wait for the backend fetch to finish.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		triggers: triggers,
		view:     view,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(triggers))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/layers", s.handleLayers)
	mux.HandleFunc("PUT /api/layers/{source}", s.handleToggle)
	mux.HandleFunc("PUT /api/filters", s.handleFilters)
	mux.HandleFunc("POST /api/click", s.handleClick)
	mux.HandleFunc("GET /api/popup", s.handlePopup)
	mux.HandleFunc("DELETE /api/popup", s.handleClosePopup)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type reportResponse struct {
	layer.Report
	Error string `json:"error,omitempty"`
}

func toResponse(r layer.Report) reportResponse {
	resp := reportResponse{Report: r}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var bound *orb.Bound
	if raw := r.URL.Query().Get("bbox"); raw != "" {
		b, err := parseBBox(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		bound = &b
	}

	data, err := json.Marshal(s.view.FeatureCollection(bound))
	if err != nil {
		s.logger.Error("encode feature collection", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("map could not be encoded"))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}

func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"layers":  s.triggers.Layers(),
		"filters": s.triggers.Filters(),
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	source, err := layer.ParseSource(r.PathValue("source"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var body struct {
		Visible *bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Visible == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"visible": true|false}`))
		return
	}

	report, err := s.triggers.Toggle(context.WithoutCancel(r.Context()), source, *body.Visible)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, layer.ErrUnknownLayer) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	s.logger.Info("layer toggled", "layer", source, "visible", *body.Visible)
	writeJSON(w, http.StatusOK, toResponse(report))
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	var f domain.Filters
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode filters: %w", err))
		return
	}

	reports := s.triggers.SetFilters(context.WithoutCancel(r.Context()), f)
	out := make([]reportResponse, len(reports))
	for i, rep := range reports {
		out[i] = toResponse(rep)
	}
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": out})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseLatLon(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	popup, ok := s.triggers.Click(context.WithoutCancel(r.Context()), lat, lon)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, errors.New("point query is not configured"))
		return
	}
	writeJSON(w, http.StatusOK, popup)
}

func (s *Server) handlePopup(w http.ResponseWriter, _ *http.Request) {
	popup, ok := s.view.Popup()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, popup)
}

func (s *Server) handleClosePopup(w http.ResponseWriter, _ *http.Request) {
	s.view.ClosePopup()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	drain := r.URL.Query().Get("drain") == "true"
	notifications := s.view.Notifications(drain)
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func parseLatLon(latRaw, lonRaw string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid lat %q", latRaw)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid lon %q", lonRaw)
	}
	return lat, lon, nil
}

// parseBBox reads "minLon,minLat,maxLon,maxLat".
func parseBBox(raw string) (orb.Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q: want minLon,minLat,maxLon,maxLat", raw)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid bbox %q: %w", raw, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q: min exceeds max", raw)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
