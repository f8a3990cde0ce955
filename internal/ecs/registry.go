package ecs

import (
	"fmt"
	"reflect"
)

// ErrEntityDoesNotExist is returned when an operation targets an
// entity that was never created or has already been destroyed.
var ErrEntityDoesNotExist = fmt.Errorf("ecs: entity does not exist")

// ErrComponentAlreadyPresent is returned by Add when the entity
// already carries a component of the requested type.
var ErrComponentAlreadyPresent = fmt.Errorf("ecs: component already present")

// ErrComponentNotPresent is returned by Get when the entity has no
// component of the requested type.
var ErrComponentNotPresent = fmt.Errorf("ecs: component not present")

// Registry owns every component pool and tracks, per entity, the set
// of component types it carries (so Destroy can unwind it).
type Registry struct {
	nextEntity  Entity
	freeList    []Entity
	alive       map[Entity]struct{}
	entityTypes map[Entity]map[reflect.Type]struct{}
	pools       map[reflect.Type]pool
}

// NewRegistry returns an empty registry. Entity 1 is the first id
// handed out; 0 is reserved as NullEntity.
func NewRegistry() *Registry {
	return &Registry{
		nextEntity:  1,
		alive:       make(map[Entity]struct{}),
		entityTypes: make(map[Entity]map[reflect.Type]struct{}),
		pools:       make(map[reflect.Type]pool),
	}
}

// Create returns a recycled entity id if one is free, otherwise a
// fresh monotonic id. The new entity starts with no components.
func (r *Registry) Create() Entity {
	var e Entity
	if n := len(r.freeList); n > 0 {
		e = r.freeList[n-1]
		r.freeList = r.freeList[:n-1]
	} else {
		e = r.nextEntity
		r.nextEntity++
	}
	r.alive[e] = struct{}{}
	r.entityTypes[e] = make(map[reflect.Type]struct{})
	return e
}

// CreateWithHandle creates an entity and wraps it in an owning handle
// whose Release destroys it.
func (r *Registry) CreateWithHandle() *EntityHandle {
	return &EntityHandle{registry: r, entity: r.Create()}
}

// Exists reports whether e refers to a live entity.
func (r *Registry) Exists(e Entity) bool {
	_, ok := r.alive[e]
	return ok
}

// Count returns the number of live entities.
func (r *Registry) Count() int {
	return len(r.alive)
}

// Destroy removes e from every pool that references it and recycles
// its id. Idempotent: destroying an already-dead or never-created
// entity is a no-op.
func (r *Registry) Destroy(e Entity) {
	if !r.Exists(e) {
		return
	}
	for key := range r.entityTypes[e] {
		p := r.pools[key]
		p.remove(e)
		if p.len() == 0 {
			delete(r.pools, key)
		}
	}
	delete(r.entityTypes, e)
	delete(r.alive, e)
	r.freeList = append(r.freeList, e)
}

func typeKeyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypeOf exposes a component type's stable key, for callers composing
// ad-hoc type sets (e.g. HasAll) outside the fixed-arity View helpers.
func TypeOf[T any]() reflect.Type {
	return typeKeyOf[T]()
}

func getOrCreatePool[T any](r *Registry) *Pool[T] {
	key := typeKeyOf[T]()
	if p, ok := r.pools[key]; ok {
		return p.(*Pool[T])
	}
	np := newPool[T]()
	r.pools[key] = np
	return np
}

func getPool[T any](r *Registry) (*Pool[T], bool) {
	p, ok := r.pools[typeKeyOf[T]()]
	if !ok {
		return nil, false
	}
	return p.(*Pool[T]), true
}

// Add attaches a component of type T to e. Fails if e does not exist
// or already carries a T.
func Add[T any](r *Registry, e Entity, value T) error {
	if !r.Exists(e) {
		return fmt.Errorf("add %T to %d: %w", value, e, ErrEntityDoesNotExist)
	}
	key := typeKeyOf[T]()
	if p, ok := getPool[T](r); ok && p.has(e) {
		return fmt.Errorf("add %T to %d: %w", value, e, ErrComponentAlreadyPresent)
	}
	getOrCreatePool[T](r).add(e, value)
	r.entityTypes[e][key] = struct{}{}
	return nil
}

// Remove detaches e's T component, if any. No-op if absent.
func Remove[T any](r *Registry, e Entity) {
	p, ok := getPool[T](r)
	if !ok {
		return
	}
	if p.remove(e) {
		delete(r.entityTypes[e], typeKeyOf[T]())
		if p.len() == 0 {
			delete(r.pools, typeKeyOf[T]())
		}
	}
}

// Get returns a pointer to e's T component, or an error if missing.
func Get[T any](r *Registry, e Entity) (*T, error) {
	v, ok := TryGet[T](r, e)
	if !ok {
		var zero T
		return nil, fmt.Errorf("get %T from %d: %w", zero, e, ErrComponentNotPresent)
	}
	return v, nil
}

// TryGet returns a pointer to e's T component and true, or (nil, false).
func TryGet[T any](r *Registry, e Entity) (*T, bool) {
	p, ok := getPool[T](r)
	if !ok {
		return nil, false
	}
	return p.get(e)
}

// Has reports whether e carries a component of type T.
func Has[T any](r *Registry, e Entity) bool {
	p, ok := getPool[T](r)
	return ok && p.has(e)
}

// HasAll reports whether e carries every component type named in keys,
// e.g. ecs.HasAll(r, e, ecs.TypeOf[CTransform](), ecs.TypeOf[CVelocity]()).
func HasAll(r *Registry, e Entity, keys ...reflect.Type) bool {
	types, ok := r.entityTypes[e]
	if !ok {
		return false
	}
	for _, k := range keys {
		if _, present := types[k]; !present {
			return false
		}
	}
	return true
}
