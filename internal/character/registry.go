// Package character maps speaker identifiers to their animated rigs and
// forwards per-frame updates.
package character

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-novel/internal/rig"
)

// ErrDuplicate is wrapped by RegistrationError when an id is reused.
var ErrDuplicate = errors.New("character: already registered")

// RegistrationError reports a resource that could not be attached.
type RegistrationError struct {
	ID   string
	Path string
	Err  error
}

func (e *RegistrationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("character %q: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("character %q (%s): %v", e.ID, e.Path, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// LookupError reports an operation on an id that was never registered.
type LookupError struct {
	ID string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("character %q is not registered", e.ID)
}

// Animator is an animated resource.
// *rig.Skeleton satisfies it.
type Animator interface {
	Update(dt float64)
	Meshes() []rig.Mesh
	SetAnimation(track int, name string, loop bool) error
}

// Descriptor names the resources of a character.
type Descriptor struct {
	Rig       string // Path to the rig file
	Animation string // Clip played on the main track at registration
	Idle      string // Looping overlay clip, optional
}

// Loader turns a descriptor into an animator.
type Loader interface {
	Load(d Descriptor) (Animator, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(d Descriptor) (Animator, error)

func (f LoaderFunc) Load(d Descriptor) (Animator, error) { return f(d) }

type entry struct {
	animator Animator
	geometry []rig.Mesh
}

// Registry owns the characters of a story. It is not safe for concurrent
// use; the frame loop owns it.
type Registry struct {
	loader  Loader
	entries map[string]*entry
}

// NewRegistry creates an empty registry. A nil loader uses a RigLoader.
func NewRegistry(loader Loader) *Registry {
	if loader == nil {
		loader = NewRigLoader()
	}
	return &Registry{loader: loader, entries: make(map[string]*entry)}
}

// Register loads the resources for id.
func (r *Registry) Register(id string, d Descriptor) error {
	if id == "" {
		return &RegistrationError{ID: id, Path: d.Rig, Err: errors.New("empty id")}
	}
	if _, exists := r.entries[id]; exists {
		return &RegistrationError{ID: id, Path: d.Rig, Err: ErrDuplicate}
	}

	a, err := r.loader.Load(d)
	if err != nil {
		return &RegistrationError{ID: id, Path: d.Rig, Err: err}
	}
	r.entries[id] = &entry{animator: a}
	return nil
}

// Update advances the animation of id by dt seconds and recomputes its
// geometry.
func (r *Registry) Update(id string, dt float64) error {
	e, ok := r.entries[id]
	if !ok {
		return &LookupError{ID: id}
	}
	e.animator.Update(dt)
	e.geometry = e.animator.Meshes()
	return nil
}

// SetAnimation switches the main clip of id. The clip loops.
func (r *Registry) SetAnimation(id, name string) error {
	e, ok := r.entries[id]
	if !ok {
		return &LookupError{ID: id}
	}
	if err := e.animator.SetAnimation(rig.TrackMain, name, true); err != nil {
		return fmt.Errorf("character %q: %w", id, err)
	}
	return nil
}

// Drawable returns the geometry computed by the last Update of id. It is
// empty if id was never updated or is unknown.
func (r *Registry) Drawable(id string) []rig.Mesh {
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	return append([]rig.Mesh(nil), e.geometry...)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered characters.
func (r *Registry) Len() int { return len(r.entries) }
