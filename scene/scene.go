// Package scene holds the drawable objects of the particle field in an ECS
// world, along with the device abstraction that owns their GPU resources.
package scene

import (
	"github.com/mlange-42/ark/ecs"
)

// Kind identifies what an object draws.
type Kind uint8

const (
	KindPrimary   Kind = iota // dense instance set, one particle per visible pixel
	KindSecondary             // sparse interactive set
)

func (k Kind) String() string {
	if k == KindSecondary {
		return "secondary"
	}
	return "primary"
}

// Uniforms are the per-set shader parameters animated by the field controller.
type Uniforms struct {
	Time     float32
	Random   float32
	Depth    float32
	Size     float32
	TextureW float32
	TextureH float32
}

// Object references the device resources of one instance set.
type Object struct {
	Kind      Kind
	Instances Handle // per-instance offsets, indices and angles
	Texture   Handle // source image
	Touch     Handle // shared displacement texture (not owned by the object)
	Count     int
}

// Transform scales the field plane in world units.
type Transform struct {
	ScaleX, ScaleY float32
}

// Material binds uniforms and visibility.
type Material struct {
	Uniforms *Uniforms
	Visible  bool
}

// Scene is the container the field controller attaches objects to.
// All methods must be called from the frame loop goroutine.
type Scene struct {
	world  *ecs.World
	mapper *ecs.Map3[Object, Transform, Material]
	filter *ecs.Filter3[Object, Transform, Material]
	count  int
}

// New creates an empty scene.
func New() *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world:  world,
		mapper: ecs.NewMap3[Object, Transform, Material](world),
		filter: ecs.NewFilter3[Object, Transform, Material](world),
	}
}

// Add attaches an object at unit scale and returns its entity.
func (s *Scene) Add(obj Object, mat Material) ecs.Entity {
	tr := Transform{ScaleX: 1, ScaleY: 1}
	e := s.mapper.NewEntity(&obj, &tr, &mat)
	s.count++
	return e
}

// Remove detaches an entity. Removing a dead entity is a no-op.
func (s *Scene) Remove(e ecs.Entity) {
	if !s.Contains(e) {
		return
	}
	s.mapper.Remove(e)
	s.count--
}

// Contains reports whether e is attached.
func (s *Scene) Contains(e ecs.Entity) bool {
	return !e.IsZero() && s.world.Alive(e)
}

// Get returns the components of an attached entity.
func (s *Scene) Get(e ecs.Entity) (*Object, *Transform, *Material) {
	return s.mapper.Get(e)
}

// SetScale sets the plane scale of an attached entity.
func (s *Scene) SetScale(e ecs.Entity, sx, sy float32) {
	if !s.Contains(e) {
		return
	}
	_, tr, _ := s.mapper.Get(e)
	tr.ScaleX, tr.ScaleY = sx, sy
}

// Each calls fn for every attached object. fn must not add or remove entities.
func (s *Scene) Each(fn func(e ecs.Entity, obj *Object, tr *Transform, mat *Material)) {
	query := s.filter.Query()
	for query.Next() {
		obj, tr, mat := query.Get()
		fn(query.Entity(), obj, tr, mat)
	}
}

// Len returns the number of attached objects.
func (s *Scene) Len() int {
	return s.count
}
