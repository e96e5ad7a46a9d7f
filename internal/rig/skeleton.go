package rig

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-novel/internal/core"
)

// Tracks available on a skeleton. The overlay track is applied on top of
// the main clip.
const (
	TrackMain    = 0
	TrackOverlay = 1
	trackCount   = 2
)

// Mesh is the world-space quad of one slot: four corners in
// counter-clockwise order and two triangles.
type Mesh struct {
	Slot     string
	Glyph    rune
	Color    core.Color
	Vertices []core.Vec2
	Indices  []int
}

var quadIndices = []int{0, 1, 2, 2, 3, 0}

type track struct {
	anim *Animation
	time float64
	loop bool
}

// affine is a 2x3 transform: [a b tx; c d ty].
type affine struct{ a, b, c, d, tx, ty float64 }

func (m affine) mul(n affine) affine {
	return affine{
		a:  m.a*n.a + m.b*n.c,
		b:  m.a*n.b + m.b*n.d,
		c:  m.c*n.a + m.d*n.c,
		d:  m.c*n.b + m.d*n.d,
		tx: m.a*n.tx + m.b*n.ty + m.tx,
		ty: m.c*n.tx + m.d*n.ty + m.ty,
	}
}

func (m affine) apply(p core.Vec2) core.Vec2 {
	return core.Vec2{X: m.a*p.X + m.b*p.Y + m.tx, Y: m.c*p.X + m.d*p.Y + m.ty}
}

func local(x, y, rotation, scale float64) affine {
	sin, cos := math.Sincos(rotation * math.Pi / 180)
	return affine{a: cos * scale, b: -sin * scale, c: sin * scale, d: cos * scale, tx: x, ty: y}
}

// Skeleton is a posed instance of a rig.
type Skeleton struct {
	data   *Data
	tracks [trackCount]track
	world  []affine
	meshes []Mesh
}

// NewSkeleton creates a skeleton in its setup pose.
func NewSkeleton(d *Data) *Skeleton {
	s := &Skeleton{data: d, world: make([]affine, len(d.Bones))}
	s.pose()
	return s
}

// Data returns the rig the skeleton was built from.
func (s *Skeleton) Data() *Data { return s.data }

// SetAnimation plays a clip on a track. Setting the clip already playing
// on that track keeps its time.
func (s *Skeleton) SetAnimation(trackIndex int, name string, loop bool) error {
	if trackIndex < 0 || trackIndex >= trackCount {
		return fmt.Errorf("rig: invalid track %d", trackIndex)
	}
	anim, ok := s.data.Animations[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAnimation, name)
	}

	t := &s.tracks[trackIndex]
	if t.anim == anim {
		t.loop = loop
		return nil
	}
	*t = track{anim: anim, loop: loop}
	return nil
}

// ClearTrack stops the clip on a track.
func (s *Skeleton) ClearTrack(trackIndex int) {
	if trackIndex >= 0 && trackIndex < trackCount {
		s.tracks[trackIndex] = track{}
	}
}

// Current returns the clip playing on a track, or "".
func (s *Skeleton) Current(trackIndex int) string {
	if trackIndex < 0 || trackIndex >= trackCount || s.tracks[trackIndex].anim == nil {
		return ""
	}
	return s.tracks[trackIndex].anim.Name
}

// Update advances every track by dt seconds and recomputes the meshes.
func (s *Skeleton) Update(dt float64) {
	for i := range s.tracks {
		t := &s.tracks[i]
		if t.anim == nil {
			continue
		}
		t.time += dt
		switch {
		case t.anim.Duration <= 0:
			t.time = 0
		case t.loop:
			t.time = math.Mod(t.time, t.anim.Duration)
		default:
			t.time = math.Min(t.time, t.anim.Duration)
		}
	}
	s.pose()
}

// Meshes returns the geometry computed by the last Update.
func (s *Skeleton) Meshes() []Mesh {
	return append([]Mesh(nil), s.meshes...)
}

func (s *Skeleton) pose() {
	for i, b := range s.data.Bones {
		x, y, rot, scale := b.X, b.Y, b.Rotation, b.Scale
		for _, t := range s.tracks {
			if t.anim == nil {
				continue
			}
			keys, ok := t.anim.Timelines[i]
			if !ok {
				continue
			}
			k := sample(keys, t.time)
			x += k.X
			y += k.Y
			rot += k.Rotation
			scale *= k.Scale
		}

		m := local(x, y, rot, scale)
		if b.Parent >= 0 {
			m = s.world[b.Parent].mul(m)
		}
		s.world[i] = m
	}

	s.meshes = s.meshes[:0]
	for _, slot := range s.data.Slots {
		m := s.world[slot.Bone]
		hw, hh := slot.W/2, slot.H/2
		s.meshes = append(s.meshes, Mesh{
			Slot:  slot.Name,
			Glyph: slot.Glyph,
			Color: slot.Color,
			Vertices: []core.Vec2{
				m.apply(core.V(slot.X-hw, slot.Y-hh)),
				m.apply(core.V(slot.X+hw, slot.Y-hh)),
				m.apply(core.V(slot.X+hw, slot.Y+hh)),
				m.apply(core.V(slot.X-hw, slot.Y+hh)),
			},
			Indices: quadIndices,
		})
	}
}

// sample interpolates a timeline linearly at time t.
func sample(keys []Key, t float64) Key {
	if t <= keys[0].T {
		return keys[0]
	}
	last := keys[len(keys)-1]
	if t >= last.T {
		return last
	}
	for i := 1; i < len(keys); i++ {
		a, b := keys[i-1], keys[i]
		if t > b.T {
			continue
		}
		f := (t - a.T) / (b.T - a.T)
		return Key{
			T:        t,
			X:        core.Lerp(a.X, b.X, f),
			Y:        core.Lerp(a.Y, b.Y, f),
			Rotation: core.Lerp(a.Rotation, b.Rotation, f),
			Scale:    core.Lerp(a.Scale, b.Scale, f),
		}
	}
	return last
}

// Bounds returns the smallest rectangle containing every vertex.
func Bounds(meshes []Mesh) (lo, hi core.Vec2, ok bool) {
	for _, m := range meshes {
		for _, v := range m.Vertices {
			if !ok {
				lo, hi, ok = v, v, true
				continue
			}
			lo.X, lo.Y = math.Min(lo.X, v.X), math.Min(lo.Y, v.Y)
			hi.X, hi.Y = math.Max(hi.X, v.X), math.Max(hi.Y, v.Y)
		}
	}
	return lo, hi, ok
}
