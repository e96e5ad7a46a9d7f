// Package rig is a small skeletal animation runtime for terminal
// characters. A rig is a bone hierarchy with rectangular attachments
// posed by keyframed animations. Geometry is produced in model space,
// y-up, in terminal cell units.
package rig

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/schema"
)

//go:embed rig.schema.json
var schemaJSON []byte

var rigSchema = schema.MustCompile("rig", schemaJSON)

// ErrUnknownAnimation is returned when a clip name is not part of the rig.
var ErrUnknownAnimation = errors.New("rig: unknown animation")

// DefaultGlyph fills attachments that do not name one.
const DefaultGlyph = '█'

// Bone is a node of the hierarchy with its setup pose.
type Bone struct {
	Name     string
	Parent   int // index into Data.Bones, -1 for a root
	X, Y     float64
	Rotation float64 // degrees, counter-clockwise
	Scale    float64
}

// Slot binds a rectangular attachment to a bone.
type Slot struct {
	Name  string
	Bone  int
	W, H  float64
	X, Y  float64 // attachment center in bone space
	Glyph rune
	Color core.Color
}

// Key is one keyframe of a bone timeline. Values are offsets from the
// setup pose; Scale multiplies it.
type Key struct {
	T        float64
	X, Y     float64
	Rotation float64
	Scale    float64
}

// Animation is a named clip.
type Animation struct {
	Name      string
	Duration  float64
	Timelines map[int][]Key // bone index -> keys sorted by T
}

// Data is a parsed, immutable rig shared by every skeleton built from it.
type Data struct {
	Name       string
	Bones      []Bone
	Slots      []Slot
	Animations map[string]*Animation
}

type rigDoc struct {
	Name  string `yaml:"name"`
	Bones []struct {
		Name     string   `yaml:"name"`
		Parent   string   `yaml:"parent"`
		X        float64  `yaml:"x"`
		Y        float64  `yaml:"y"`
		Rotation float64  `yaml:"rotation"`
		Scale    *float64 `yaml:"scale"`
	} `yaml:"bones"`
	Slots []struct {
		Name       string `yaml:"name"`
		Bone       string `yaml:"bone"`
		Attachment struct {
			W     float64 `yaml:"w"`
			H     float64 `yaml:"h"`
			X     float64 `yaml:"x"`
			Y     float64 `yaml:"y"`
			Glyph string  `yaml:"glyph"`
			Color string  `yaml:"color"`
		} `yaml:"attachment"`
	} `yaml:"slots"`
	Animations map[string]struct {
		Duration float64             `yaml:"duration"`
		Bones    map[string][]keyDoc `yaml:"bones"`
	} `yaml:"animations"`
}

type keyDoc struct {
	T        float64  `yaml:"t"`
	X        float64  `yaml:"x"`
	Y        float64  `yaml:"y"`
	Rotation float64  `yaml:"rotation"`
	Scale    *float64 `yaml:"scale"`
}

// Load reads and parses a rig file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rig: cannot read %s: %w", path, err)
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse validates and compiles rig YAML.
func Parse(raw []byte) (*Data, error) {
	if err := rigSchema.ValidateYAML(raw); err != nil {
		return nil, err
	}

	var doc rigDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}

	d := &Data{Name: doc.Name, Animations: make(map[string]*Animation)}
	index := make(map[string]int, len(doc.Bones))

	for i, b := range doc.Bones {
		if _, dup := index[b.Name]; dup {
			return nil, fmt.Errorf("rig: duplicate bone %q", b.Name)
		}
		parent := -1
		if b.Parent != "" {
			p, ok := index[b.Parent]
			if !ok {
				return nil, fmt.Errorf("rig: bone %q: parent %q must be declared before it", b.Name, b.Parent)
			}
			parent = p
		}
		d.Bones = append(d.Bones, Bone{
			Name:     b.Name,
			Parent:   parent,
			X:        b.X,
			Y:        b.Y,
			Rotation: b.Rotation,
			Scale:    scaleOr1(b.Scale),
		})
		index[b.Name] = i
	}

	for _, s := range doc.Slots {
		bone, ok := index[s.Bone]
		if !ok {
			return nil, fmt.Errorf("rig: slot %q: unknown bone %q", s.Name, s.Bone)
		}
		color, err := core.ParseColor(s.Attachment.Color)
		if err != nil {
			return nil, fmt.Errorf("rig: slot %q: %w", s.Name, err)
		}
		glyph := DefaultGlyph
		if s.Attachment.Glyph != "" {
			glyph, _ = utf8.DecodeRuneInString(s.Attachment.Glyph)
		}
		d.Slots = append(d.Slots, Slot{
			Name:  s.Name,
			Bone:  bone,
			W:     s.Attachment.W,
			H:     s.Attachment.H,
			X:     s.Attachment.X,
			Y:     s.Attachment.Y,
			Glyph: glyph,
			Color: color,
		})
	}

	for name, a := range doc.Animations {
		anim := &Animation{Name: name, Duration: a.Duration, Timelines: make(map[int][]Key)}
		for boneName, keys := range a.Bones {
			bone, ok := index[boneName]
			if !ok {
				return nil, fmt.Errorf("rig: animation %q: unknown bone %q", name, boneName)
			}
			timeline := make([]Key, len(keys))
			for i, k := range keys {
				timeline[i] = Key{T: k.T, X: k.X, Y: k.Y, Rotation: k.Rotation, Scale: scaleOr1(k.Scale)}
			}
			sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].T < timeline[j].T })
			if last := timeline[len(timeline)-1].T; last > anim.Duration {
				anim.Duration = last
			}
			anim.Timelines[bone] = timeline
		}
		d.Animations[name] = anim
	}

	return d, nil
}

// AnimationNames returns the clip names, sorted.
func (d *Data) AnimationNames() []string {
	names := make([]string, 0, len(d.Animations))
	for name := range d.Animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func scaleOr1(s *float64) float64 {
	if s == nil {
		return 1
	}
	return *s
}
