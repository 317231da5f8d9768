// Package geojson is an in-memory map surface that exposes drawn artifacts,
// the open popup and pending notifications as GeoJSON and JSON.
package geojson

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// DefaultNotificationLimit bounds the notifications kept for polling.
const DefaultNotificationLimit = 100

// Surface implements layer.Surface, pointquery.PopupOpener and layer.Notifier.
// It is safe for concurrent use.
type Surface struct {
	logger *slog.Logger
	limit  int

	mu            sync.RWMutex
	seq           uint64
	order         []slot // draw order; erased slots are skipped and compacted
	artifacts     map[string]drawn
	popup         *domain.Popup
	notifications []domain.Notification
}

type slot struct {
	id  string
	seq uint64
}

type drawn struct {
	artifact domain.Artifact
	seq      uint64
}

// NewSurface creates an empty surface keeping up to limit notifications.
func NewSurface(limit int, logger *slog.Logger) *Surface {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &Surface{
		logger:    logger,
		limit:     limit,
		artifacts: make(map[string]drawn),
	}
}

// Draw adds or replaces an artifact. A replaced artifact keeps its place in
// draw order.
func (s *Surface) Draw(a domain.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.artifacts[a.ID]; ok {
		s.artifacts[a.ID] = drawn{artifact: a, seq: cur.seq}
		return
	}
	s.seq++
	s.order = append(s.order, slot{id: a.ID, seq: s.seq})
	s.artifacts[a.ID] = drawn{artifact: a, seq: s.seq}
}

// Erase removes an artifact. Unknown ids are ignored.
func (s *Surface) Erase(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[id]; !ok {
		return
	}
	delete(s.artifacts, id)
	if len(s.order) > 2*len(s.artifacts) {
		s.compact()
	}
}

// compact drops erased slots from the draw order.
func (s *Surface) compact() {
	live := make([]slot, 0, len(s.artifacts))
	for _, sl := range s.order {
		if s.live(sl) {
			live = append(live, sl)
		}
	}
	s.order = live
}

func (s *Surface) live(sl slot) bool {
	d, ok := s.artifacts[sl.id]
	return ok && d.seq == sl.seq
}

// Len returns the number of artifacts drawn.
func (s *Surface) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}

// CountByLayer returns the number of artifacts drawn per layer.
func (s *Surface) CountByLayer() map[domain.Source]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Source]int)
	for _, d := range s.artifacts {
		out[d.artifact.Layer]++
	}
	return out
}

// OpenPopup replaces the open popup.
func (s *Surface) OpenPopup(p domain.Popup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popup = &p
}

// ClosePopup closes the open popup, if any.
func (s *Surface) ClosePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popup = nil
}

// Popup returns the open popup.
func (s *Surface) Popup() (domain.Popup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.popup == nil {
		return domain.Popup{}, false
	}
	return *s.popup, true
}

// Notify queues a notification, dropping the oldest past the limit.
func (s *Surface) Notify(_ context.Context, n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	if over := len(s.notifications) - s.limit; over > 0 {
		s.notifications = append([]domain.Notification(nil), s.notifications[over:]...)
	}
}

// Notifications returns the queued notifications, oldest first. When drain is
// set the queue is emptied.
func (s *Surface) Notifications(drain bool) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Notification(nil), s.notifications...)
	if drain {
		s.notifications = nil
	}
	return out
}

// FeatureCollection renders the drawn artifacts in draw order. A non-nil
// bound keeps only artifacts whose anchor lies within it.
func (s *Surface) FeatureCollection(bound *orb.Bound) *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	for _, sl := range s.order {
		if !s.live(sl) {
			continue
		}
		a := s.artifacts[sl.id].artifact
		point := orb.Point{a.Lon, a.Lat}
		if bound != nil && !bound.Contains(point) {
			continue
		}
		fc.Append(Feature(a))
	}
	return fc
}

// Feature converts one artifact to a GeoJSON point feature. Circles carry the
// bounding box of their metre radius.
func Feature(a domain.Artifact) *geojson.Feature {
	point := orb.Point{a.Lon, a.Lat}
	f := geojson.NewFeature(point)
	f.ID = a.ID

	unit := "px"
	if a.Kind == domain.KindCircle {
		unit = "m"
		f.BBox = geojson.NewBBox(geo.NewBoundAroundPoint(point, a.Radius))
	}

	f.Properties["layer"] = string(a.Layer)
	f.Properties["kind"] = string(a.Kind)
	f.Properties["radius"] = a.Radius
	f.Properties["radius_unit"] = unit
	f.Properties["color"] = a.Style.Color
	f.Properties["fill_color"] = a.Style.FillColor
	f.Properties["weight"] = a.Style.Weight
	f.Properties["fill_opacity"] = a.Style.FillOpacity
	f.Properties["icon"] = a.Icon
	f.Properties["popup"] = a.Popup
	return f
}
