package layer

import (
	"sync"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/google/uuid"
)

// Surface is the map the overlay draws on.
type Surface interface {
	Draw(a domain.Artifact)
	Erase(id string)
	OpenPopup(p domain.Popup)
}

// Registry tracks the artifacts one layer has drawn. Add and Clear are its
// only mutators, and every tracked artifact is drawn on the surface.
type Registry struct {
	surface Surface

	mu        sync.Mutex
	artifacts []domain.Artifact
}

// NewRegistry creates an empty registry drawing on s.
func NewRegistry(s Surface) *Registry {
	return &Registry{surface: s}
}

// Add draws a and tracks it. An artifact without an ID is assigned one.
func (r *Registry) Add(a domain.Artifact) domain.Artifact {
	if a.ID == "" {
		a.ID = string(a.Layer) + "-" + uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.surface.Draw(a)
	r.artifacts = append(r.artifacts, a)
	return a
}

// Clear erases every tracked artifact and returns how many were removed.
// Clearing an empty registry is a no-op.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.artifacts)
	for _, a := range r.artifacts {
		r.surface.Erase(a.ID)
	}
	r.artifacts = nil
	return n
}

// Len returns the number of tracked artifacts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.artifacts)
}

// Artifacts returns a copy of the tracked artifacts in draw order.
func (r *Registry) Artifacts() []domain.Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Artifact, len(r.artifacts))
	copy(out, r.artifacts)
	return out
}
