package anm

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
	"lol-asset-tools/internal/stream"
)

// v4 header field positions used for backpatching.
const (
	v4FormatToken = 0xBE0794D3

	v4SizePos      = 12
	v4QuatsOffPos  = 56
	v4FramesOffPos = 60
	v4DataStart    = 76
)

// vecKey and quatKey bucket palette values by rounding to 6 decimal
// digits. Distinct values that round together collapse to one entry;
// this lossy bucketing is part of the on-disk compatibility contract,
// not an approximation to tighten.
type vecKey [3]int64

type quatKey [4]int64

func roundKey(v float32) int64 {
	return int64(math.Round(float64(v) * 1e6))
}

// palette deduplicates vectors and quaternions in insertion order.
type palette struct {
	vecs    []mgl32.Vec3
	vecIdx  map[vecKey]int
	quats   []mgl32.Quat
	quatIdx map[quatKey]int
}

func newPalette() *palette {
	return &palette{
		vecIdx:  make(map[vecKey]int),
		quatIdx: make(map[quatKey]int),
	}
}

func (p *palette) vec(v mgl32.Vec3) int {
	k := vecKey{roundKey(v[0]), roundKey(v[1]), roundKey(v[2])}
	if i, ok := p.vecIdx[k]; ok {
		return i
	}
	i := len(p.vecs)
	p.vecIdx[k] = i
	p.vecs = append(p.vecs, v)
	return i
}

func (p *palette) quat(q mgl32.Quat) int {
	q = q.Normalize()
	k := quatKey{roundKey(q.V[0]), roundKey(q.V[1]), roundKey(q.V[2]), roundKey(q.W)}
	if i, ok := p.quatIdx[k]; ok {
		return i
	}
	i := len(p.quats)
	p.quatIdx[k] = i
	p.quats = append(p.quats, q)
	return i
}

// Bytes serializes the animation in the uncompressed v4 layout: the
// richest precision and simplest indexing of the five wire formats.
// Tracks are emitted in ascending joint-hash order; missing pose
// components fall back to identity so every (frame, track) cell is
// dense as the format requires.
func (a *Animation) Bytes() ([]byte, error) {
	if a.FrameCount < 1 {
		return nil, fmt.Errorf("anm: frame count %d: %w", a.FrameCount, format.ErrInvalidFieldValue)
	}
	if len(a.Tracks) == 0 {
		return nil, fmt.Errorf("anm: no tracks: %w", format.ErrInvalidFieldValue)
	}
	fps := a.FPS
	if fps <= 0 {
		fps = defaultFPS
	}

	tracks := make([]*Track, len(a.Tracks))
	copy(tracks, a.Tracks)
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].JointHash < tracks[j].JointHash
	})

	pal := newPalette()
	identityT := mgl32.Vec3{0, 0, 0}
	identityS := mgl32.Vec3{1, 1, 1}

	// cells[f][t] = palette index triple.
	type cell struct{ t, s, r int }
	cells := make([][]cell, a.FrameCount)
	for f := range cells {
		cells[f] = make([]cell, len(tracks))
		for ti, track := range tracks {
			c := cell{
				t: pal.vec(identityT),
				s: pal.vec(identityS),
				r: pal.quat(mgl32.QuatIdent()),
			}
			if pose, ok := track.Poses[f]; ok {
				if pose.Translation != nil {
					c.t = pal.vec(*pose.Translation)
				}
				if pose.Scale != nil {
					c.s = pal.vec(*pose.Scale)
				}
				if pose.Rotation != nil {
					c.r = pal.quat(*pose.Rotation)
				}
			}
			cells[f][ti] = c
		}
	}
	if len(pal.vecs) > 0xFFFF || len(pal.quats) > 0xFFFF {
		return nil, fmt.Errorf("anm: palette overflows 16-bit indices: %w", format.ErrInvalidFieldValue)
	}

	w := stream.NewWriter()
	w.PaddedString(MagicUncompressed, 8)
	w.U32(4)                      // version
	w.U32(0)                      // resource size, patched below
	w.U32(v4FormatToken)
	w.U32(0)                      // unknown
	w.U32(0)                      // flags
	w.U32(uint32(len(tracks)))
	w.U32(uint32(a.FrameCount))
	w.F32(1 / fps)                // frame duration
	w.I32(0)                      // tracks offset, unused in v4
	w.I32(0)                      // asset name offset
	w.I32(0)                      // time offset
	w.I32(int32(v4DataStart - offsetBase)) // vector palette offset
	w.I32(0)                      // quat palette offset, patched below
	w.I32(0)                      // frames offset, patched below
	w.Zero(v4DataStart - w.Pos())

	for _, v := range pal.vecs {
		w.Vec3(v)
	}
	quatsOffset := w.Pos() - offsetBase

	for _, q := range pal.quats {
		w.Quat(q)
	}
	framesOffset := w.Pos() - offsetBase

	for f := 0; f < a.FrameCount; f++ {
		for ti, track := range tracks {
			c := cells[f][ti]
			w.U32(track.JointHash)
			w.U16(uint16(c.t))
			w.U16(uint16(c.s))
			w.U16(uint16(c.r))
			w.U16(0) // padding
		}
	}

	w.PatchU32(v4SizePos, uint32(w.Len()))
	w.PatchI32(v4QuatsOffPos, int32(quatsOffset))
	w.PatchI32(v4FramesOffPos, int32(framesOffset))
	return w.Bytes(), nil
}
