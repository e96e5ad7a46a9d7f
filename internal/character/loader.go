package character

import (
	"path/filepath"

	"github.com/vovakirdan/tui-novel/internal/rig"
)

// RigLoader builds skeletons from rig files. Parsed rigs are shared between
// characters that use the same file.
type RigLoader struct {
	cache map[string]*rig.Data
}

// NewRigLoader creates a loader with an empty cache.
func NewRigLoader() *RigLoader {
	return &RigLoader{cache: make(map[string]*rig.Data)}
}

// Load parses the rig (once per path) and starts its clips.
func (l *RigLoader) Load(d Descriptor) (Animator, error) {
	path := filepath.Clean(d.Rig)
	data, ok := l.cache[path]
	if !ok {
		var err error
		data, err = rig.Load(path)
		if err != nil {
			return nil, err
		}
		l.cache[path] = data
	}

	sk := rig.NewSkeleton(data)
	if d.Animation != "" {
		if err := sk.SetAnimation(rig.TrackMain, d.Animation, true); err != nil {
			return nil, err
		}
	}
	if d.Idle != "" {
		if err := sk.SetAnimation(rig.TrackOverlay, d.Idle, true); err != nil {
			return nil, err
		}
	}
	return sk, nil
}
