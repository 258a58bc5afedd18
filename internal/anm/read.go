package anm

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
	"lol-asset-tools/internal/hashutil"
	"lol-asset-tools/internal/quat"
	"lol-asset-tools/internal/stream"
)

// Magic strings, 8 ASCII bytes at the start of every ANM file.
const (
	MagicCompressed   = "r3d2canm"
	MagicUncompressed = "r3d2anmd"
)

const (
	// Offsets stored in ANM headers are relative to the end of the
	// 12-byte magic+version prefix.
	offsetBase = 12

	compressedEntrySize = 10
	legacyTrackNameSize = 32

	defaultFPS = 30.0
)

// Read parses an ANM file of any supported wire format into the
// canonical model.
func Read(data []byte) (*Animation, error) {
	r := stream.NewReader(data)
	magic := r.PaddedString(8)
	version := r.U32()
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: header: %w", r.Err())
	}

	switch magic {
	case MagicCompressed:
		return readCompressed(r)
	case MagicUncompressed:
		switch {
		case version == 5:
			return readV5(r)
		case version == 4:
			return readV4(r)
		case version <= 3:
			return readLegacy(r)
		}
		return nil, fmt.Errorf("anm: r3d2anmd version %d: %w", version, format.ErrUnsupportedVersion)
	}
	return nil, fmt.Errorf("anm: signature %q: %w", magic, format.ErrMalformedHeader)
}

// readCompressed decodes the r3d2canm layout: quantization bounds in
// the header, then a flat stream of 10-byte entries each carrying one
// transform component for one joint at one compressed time.
func readCompressed(r *stream.Reader) (*Animation, error) {
	r.Skip(12) // resource size, format token, flags
	jointCount := int(r.U32())
	entryCount := int(r.U32())
	r.Skip(4) // jump cache count
	maxTime := r.F32()
	fps := r.F32()
	r.Skip(24) // rotation/translation/scale error metrics
	translationMin := r.Vec3()
	translationMax := r.Vec3()
	scaleMin := r.Vec3()
	scaleMax := r.Vec3()
	framesOffset := int(r.I32())
	r.Skip(4) // jump caches offset
	jointHashesOffset := int(r.I32())
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: compressed header: %w", r.Err())
	}
	if fps <= 0 {
		fps = defaultFPS
	}
	if jointCount < 0 || jointCount > r.Len()/4 ||
		entryCount < 0 || entryCount > r.Len()/compressedEntrySize {
		return nil, fmt.Errorf("anm: joint count %d, entry count %d: %w",
			jointCount, entryCount, format.ErrInvalidFieldValue)
	}

	a := &Animation{FPS: fps}
	a.Duration = maxTime + 1/fps
	a.FrameCount = int(math.Round(float64(a.Duration * fps)))

	r.Seek(jointHashesOffset + offsetBase)
	a.Tracks = make([]*Track, jointCount)
	for i := range a.Tracks {
		a.Tracks[i] = newTrack(r.U32())
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: joint hashes: %w", r.Err())
	}

	r.Seek(framesOffset + offsetBase)
	for i := 0; i < entryCount; i++ {
		compressedTime := r.U16()
		bits := r.U16()
		payload := r.Bytes(6)
		if r.Err() != nil {
			return nil, fmt.Errorf("anm: compressed entry %d: %w", i, r.Err())
		}

		jointIdx := int(bits & 0x3FFF)
		if jointIdx >= jointCount {
			continue
		}
		track := a.Tracks[jointIdx]

		time := float32(compressedTime) / 65535 * maxTime
		frame := int(math.Round(float64(time * fps)))
		pose := track.pose(frame)

		switch bits >> 14 {
		case 0:
			q := quat.Unpack(payload)
			pose.Rotation = &q
		case 1:
			v := dequantizeVec3(payload, translationMin, translationMax)
			pose.Translation = &v
		case 2:
			v := dequantizeVec3(payload, scaleMin, scaleMax)
			pose.Scale = &v
		}
	}

	return a, nil
}

// dequantizeVec3 expands three u16 axis values linearly over the stored
// per-axis bounds.
func dequantizeVec3(b []byte, min, max mgl32.Vec3) mgl32.Vec3 {
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		q := float32(uint16(b[i*2]) | uint16(b[i*2+1])<<8)
		v[i] = (max[i]-min[i])/65535*q + min[i]
	}
	return v
}

// readV5 decodes the dense v5 layout: a joint-hash table, a vector
// palette, a quantized-quaternion palette, then index triples for every
// (frame, track) cell.
func readV5(r *stream.Reader) (*Animation, error) {
	r.Skip(16) // resource size, format token, version, flags
	trackCount := int(r.U32())
	frameCount := int(r.U32())
	frameDuration := r.F32()
	jointHashesOffset := int(r.I32())
	r.Skip(8) // asset name offset, time offset
	vecsOffset := int(r.I32())
	quatsOffset := int(r.I32())
	framesOffset := int(r.I32())
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: v5 header: %w", r.Err())
	}
	if err := checkCounts(r, trackCount, frameCount); err != nil {
		return nil, err
	}

	a := newUncompressed(frameDuration, frameCount)

	vecCount := (quatsOffset - vecsOffset) / 12
	quatCount := (jointHashesOffset - quatsOffset) / quat.PackedSize
	if vecCount < 0 || quatCount < 0 {
		return nil, fmt.Errorf("anm: v5 palette offsets out of order: %w", format.ErrInvalidFieldValue)
	}

	r.Seek(vecsOffset + offsetBase)
	vecPalette := make([]mgl32.Vec3, vecCount)
	for i := range vecPalette {
		vecPalette[i] = r.Vec3()
	}

	r.Seek(quatsOffset + offsetBase)
	quatPalette := make([]mgl32.Quat, quatCount)
	for i := range quatPalette {
		quatPalette[i] = quat.Unpack(r.Bytes(quat.PackedSize))
	}

	r.Seek(jointHashesOffset + offsetBase)
	a.Tracks = make([]*Track, trackCount)
	for i := range a.Tracks {
		a.Tracks[i] = newTrack(r.U32())
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: v5 palettes: %w", r.Err())
	}

	r.Seek(framesOffset + offsetBase)
	for f := 0; f < frameCount; f++ {
		for t := 0; t < trackCount; t++ {
			ti, si, ri := int(r.U16()), int(r.U16()), int(r.U16())
			if r.Err() != nil {
				return nil, fmt.Errorf("anm: v5 frame %d: %w", f, r.Err())
			}
			if ti >= vecCount || si >= vecCount || ri >= quatCount {
				return nil, fmt.Errorf("anm: v5 frame %d palette index out of range: %w",
					f, format.ErrInvalidFieldValue)
			}
			pose := a.Tracks[t].pose(f)
			pose.Translation = &vecPalette[ti]
			pose.Scale = &vecPalette[si]
			pose.Rotation = &quatPalette[ri]
		}
	}

	return a, nil
}

// readV4 decodes the v4 layout: like v5 but with a full-precision
// quaternion palette and the joint hash embedded in every frame record,
// so tracks are discovered lazily while scanning.
func readV4(r *stream.Reader) (*Animation, error) {
	r.Skip(16) // resource size, format token, version, flags
	trackCount := int(r.U32())
	frameCount := int(r.U32())
	frameDuration := r.F32()
	r.Skip(12) // tracks offset, asset name offset, time offset
	vecsOffset := int(r.I32())
	quatsOffset := int(r.I32())
	framesOffset := int(r.I32())
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: v4 header: %w", r.Err())
	}
	if err := checkCounts(r, trackCount, frameCount); err != nil {
		return nil, err
	}

	a := newUncompressed(frameDuration, frameCount)

	vecCount := (quatsOffset - vecsOffset) / 12
	quatCount := (framesOffset - quatsOffset) / 16
	if vecCount < 0 || quatCount < 0 {
		return nil, fmt.Errorf("anm: v4 palette offsets out of order: %w", format.ErrInvalidFieldValue)
	}

	r.Seek(vecsOffset + offsetBase)
	vecPalette := make([]mgl32.Vec3, vecCount)
	for i := range vecPalette {
		vecPalette[i] = r.Vec3()
	}

	r.Seek(quatsOffset + offsetBase)
	quatPalette := make([]mgl32.Quat, quatCount)
	for i := range quatPalette {
		quatPalette[i] = r.Quat()
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: v4 palettes: %w", r.Err())
	}

	r.Seek(framesOffset + offsetBase)
	byHash := make(map[uint32]*Track, trackCount)
	for f := 0; f < frameCount; f++ {
		for t := 0; t < trackCount; t++ {
			hash := r.U32()
			ti, si, ri := int(r.U16()), int(r.U16()), int(r.U16())
			r.Skip(2) // padding
			if r.Err() != nil {
				return nil, fmt.Errorf("anm: v4 frame %d: %w", f, r.Err())
			}
			if ti >= vecCount || si >= vecCount || ri >= quatCount {
				return nil, fmt.Errorf("anm: v4 frame %d palette index out of range: %w",
					f, format.ErrInvalidFieldValue)
			}

			track, ok := byHash[hash]
			if !ok {
				track = newTrack(hash)
				byHash[hash] = track
				a.Tracks = append(a.Tracks, track)
			}
			pose := track.pose(f)
			pose.Translation = &vecPalette[ti]
			pose.Scale = &vecPalette[si]
			pose.Rotation = &quatPalette[ri]
		}
	}

	return a, nil
}

// readLegacy decodes versions 1 through 3: per-track fixed-width names
// (hashed here to the identity used everywhere else) followed by a full
// quaternion and translation per frame. The format predates scale
// animation, so every pose scales to one.
func readLegacy(r *stream.Reader) (*Animation, error) {
	r.Skip(4) // skeleton id
	trackCount := int(r.U32())
	frameCount := int(r.U32())
	fps := float32(r.U32())
	if r.Err() != nil {
		return nil, fmt.Errorf("anm: legacy header: %w", r.Err())
	}
	if fps <= 0 {
		fps = defaultFPS
	}
	if err := checkCounts(r, trackCount, frameCount); err != nil {
		return nil, err
	}

	a := &Animation{
		FPS:        fps,
		Duration:   float32(frameCount) / fps,
		FrameCount: frameCount,
	}

	one := mgl32.Vec3{1, 1, 1}
	for i := 0; i < trackCount; i++ {
		name := r.PaddedString(legacyTrackNameSize)
		r.Skip(4) // flags
		track := newTrack(hashutil.Elf(name))
		a.Tracks = append(a.Tracks, track)

		for f := 0; f < frameCount; f++ {
			rot := r.Quat()
			trans := r.Vec3()
			if r.Err() != nil {
				return nil, fmt.Errorf("anm: legacy track %d frame %d: %w", i, f, r.Err())
			}
			scale := one
			track.Poses[f] = &Pose{Translation: &trans, Rotation: &rot, Scale: &scale}
		}
	}

	return a, nil
}

func newUncompressed(frameDuration float32, frameCount int) *Animation {
	fps := float32(defaultFPS)
	if frameDuration > 0 {
		fps = 1 / frameDuration
	}
	return &Animation{
		FPS:        fps,
		Duration:   float32(frameCount) * frameDuration,
		FrameCount: frameCount,
	}
}

func checkCounts(r *stream.Reader, trackCount, frameCount int) error {
	if trackCount < 0 || trackCount > r.Len()/4 ||
		frameCount < 0 || frameCount > r.Len() {
		return fmt.Errorf("anm: track count %d, frame count %d: %w",
			trackCount, frameCount, format.ErrInvalidFieldValue)
	}
	return nil
}
