package scene

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/pointfield/instances"
	"github.com/pthm-cable/pointfield/pixels"
)

// Handle identifies a device resource. Zero is never a valid handle.
type Handle uint32

// ErrUnknownHandle is returned when a handle was never created or was released.
var ErrUnknownHandle = errors.New("unknown device handle")

// Device creates and releases the GPU resources of the particle field.
type Device interface {
	// CreateImageTexture uploads the source image.
	CreateImageTexture(f *pixels.Field) (Handle, error)
	// CreateInstances uploads the per-instance attributes of set.
	CreateInstances(set *instances.Set) (Handle, error)
	// CreateTouchTexture allocates a size×size single-channel texture.
	CreateTouchTexture(size int) (Handle, error)
	// UpdateTouchTexture replaces the contents of a touch texture.
	UpdateTouchTexture(h Handle, data []float32) error
	// Release frees a resource. Releasing an unknown handle is a no-op.
	Release(h Handle)
}

// ResourceKind classifies HeadlessDevice resources.
type ResourceKind uint8

const (
	ResourceImage ResourceKind = iota
	ResourceInstances
	ResourceTouch
)

// HeadlessDevice is a Device without a GPU. It records every live handle so
// callers can verify ownership, and is used for headless runs and tests.
type HeadlessDevice struct {
	next    Handle
	live    map[Handle]ResourceKind
	uploads int

	// FailAfter makes the n-th create call (1-based) fail. Zero disables.
	FailAfter int
	creates   int
}

// NewHeadlessDevice creates an empty headless device.
func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{live: make(map[Handle]ResourceKind)}
}

func (d *HeadlessDevice) create(kind ResourceKind) (Handle, error) {
	d.creates++
	if d.FailAfter > 0 && d.creates >= d.FailAfter {
		return 0, fmt.Errorf("headless device: create %d refused", d.creates)
	}
	d.next++
	d.live[d.next] = kind
	return d.next, nil
}

func (d *HeadlessDevice) CreateImageTexture(f *pixels.Field) (Handle, error) {
	if f == nil || f.Len() == 0 {
		return 0, pixels.ErrEmptyImage
	}
	return d.create(ResourceImage)
}

func (d *HeadlessDevice) CreateInstances(set *instances.Set) (Handle, error) {
	return d.create(ResourceInstances)
}

func (d *HeadlessDevice) CreateTouchTexture(size int) (Handle, error) {
	if size <= 0 {
		return 0, fmt.Errorf("touch texture size must be positive, got %d", size)
	}
	return d.create(ResourceTouch)
}

func (d *HeadlessDevice) UpdateTouchTexture(h Handle, data []float32) error {
	if kind, ok := d.live[h]; !ok || kind != ResourceTouch {
		return fmt.Errorf("update touch texture %d: %w", h, ErrUnknownHandle)
	}
	d.uploads++
	return nil
}

func (d *HeadlessDevice) Release(h Handle) {
	delete(d.live, h)
}

// Live returns the number of live resources of kind.
func (d *HeadlessDevice) Live(kind ResourceKind) int {
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// LiveTotal returns the number of live resources.
func (d *HeadlessDevice) LiveTotal() int {
	return len(d.live)
}

// Uploads returns the number of touch texture uploads.
func (d *HeadlessDevice) Uploads() int {
	return d.uploads
}
