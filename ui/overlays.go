package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Debug overlays.
const (
	OverlayHUD    OverlayID = "hud"
	OverlayPoints OverlayID = "points"
	OverlayTouch  OverlayID = "touch"
	OverlayPerf   OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID
	Name     string
	Key      int32  // 0 = no key
	KeyLabel string // e.g. "P"
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the default overlays. Only the
// HUD starts enabled.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{enabled: make(map[OverlayID]bool)}
	r.Register(OverlayDescriptor{ID: OverlayHUD, Name: "HUD", Key: rl.KeyH, KeyLabel: "H"})
	r.Register(OverlayDescriptor{ID: OverlayPoints, Name: "Interactive points", Key: rl.KeyP, KeyLabel: "P"})
	r.Register(OverlayDescriptor{ID: OverlayTouch, Name: "Touch texture", Key: rl.KeyT, KeyLabel: "T"})
	r.Register(OverlayDescriptor{ID: OverlayPerf, Name: "Frame timing", Key: rl.KeyF, KeyLabel: "F"})
	r.enabled[OverlayHUD] = true
	return r
}

// Register adds an overlay to the registry, disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.enabled[desc.ID] = false
}

// Toggle flips an overlay and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.enabled[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
