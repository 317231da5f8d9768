package layer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/layer"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/couchcryptid/hazard-map-overlay/internal/render"
)

// --- mocks ---

type fakeSurface struct {
	mu     sync.Mutex
	drawn  map[string]domain.Artifact
	draws  int
	popups []domain.Popup
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{drawn: make(map[string]domain.Artifact)}
}

func (s *fakeSurface) Draw(a domain.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn[a.ID] = a
	s.draws++
}

func (s *fakeSurface) Erase(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drawn, id)
}

func (s *fakeSurface) OpenPopup(p domain.Popup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popups = append(s.popups, p)
}

func (s *fakeSurface) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drawn)
}

type fetchCall struct {
	endpoint string
	params   url.Values
	label    string
}

// fakeFetcher serves payloads keyed by "endpoint?query" or by endpoint alone.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    []fetchCall
	payloads map[string]string
	errs     map[string]error
	// gate runs before responding, with the 1-based call number.
	gate func(n int)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{payloads: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) FetchArray(_ context.Context, endpoint string, params url.Values, label string) ([]json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{endpoint: endpoint, params: params, label: label})
	n := len(f.calls)
	gate := f.gate
	body, ok := f.payloads[endpoint+"?"+params.Encode()]
	if !ok {
		body = f.payloads[endpoint]
	}
	err := f.errs[endpoint]
	f.mu.Unlock()

	if gate != nil {
		gate(n)
	}
	if err != nil {
		return nil, err
	}
	if body == "" {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (f *fakeFetcher) callCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.endpoint == endpoint {
			n++
		}
	}
	return n
}

func (f *fakeFetcher) lastCall() fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) all() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

type fixture struct {
	fetcher  *fakeFetcher
	surface  *fakeSurface
	notifier *recordingNotifier
	metrics  *observability.Metrics
	popups   render.Popups
}

func newFixture() *fixture {
	return &fixture{
		fetcher:  newFakeFetcher(),
		surface:  newFakeSurface(),
		notifier: &recordingNotifier{},
		metrics:  observability.NewMetricsForTesting(),
		popups:   render.Popups{Dates: render.NewDateFormatter("en-US", time.UTC)},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fixture) controller(p layer.Profile, policy domain.CoordinatePolicy) *layer.Controller {
	return layer.NewController(p, f.fetcher, f.surface, f.notifier, policy, testLogger(), f.metrics)
}

func (f *fixture) riskLayer() *layer.RiskLayer {
	return layer.NewRiskLayer(f.fetcher, f.surface, f.notifier, domain.CoordinatePolicyTruthy, f.popups, testLogger(), f.metrics)
}

func requireNoLeaks(t *testing.T, s *fakeSurface, tracked int) {
	t.Helper()
	if got := s.count(); got != tracked {
		t.Fatalf("surface has %d artifacts drawn, registries track %d", got, tracked)
	}
}
