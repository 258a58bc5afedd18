// Package anm reads ANM animation files across the five historical
// wire formats (compressed r3d2canm, uncompressed r3d2anmd v5/v4, and
// the legacy v1-v3 layout) into one canonical model, and writes the
// uncompressed v4 layout back.
package anm

import "github.com/go-gl/mathgl/mgl32"

// Pose is one joint's transform sample at a frame. Components are
// optional: the compressed format delivers them in separate entries
// that accumulate into one pose, so a nil field means "not sampled".
type Pose struct {
	Translation *mgl32.Vec3
	Rotation    *mgl32.Quat
	Scale       *mgl32.Vec3
}

// Track holds the pose samples of one joint, keyed by frame index.
// The joint is identified by its ELF name hash so animations pair with
// skeletons without sharing a string table.
type Track struct {
	JointHash uint32
	Poses     map[int]*Pose
}

func newTrack(hash uint32) *Track {
	return &Track{JointHash: hash, Poses: make(map[int]*Pose)}
}

// pose returns the track's pose at frame, creating it if needed.
// Compressed entries for the same (joint, frame) merge here instead of
// overwriting each other.
func (t *Track) pose(frame int) *Pose {
	if p, ok := t.Poses[frame]; ok {
		return p
	}
	p := &Pose{}
	t.Poses[frame] = p
	return p
}

// Animation is the canonical in-memory model, independent of which
// wire format it was decoded from.
type Animation struct {
	FPS        float32
	Duration   float32
	FrameCount int
	Tracks     []*Track
}

// TrackByHash returns the track animating the joint with the given
// name hash, or nil.
func (a *Animation) TrackByHash(hash uint32) *Track {
	for _, t := range a.Tracks {
		if t.JointHash == hash {
			return t
		}
	}
	return nil
}
