// Package skl reads and writes SKL skeleton files: a joint hierarchy
// with local and inverse-bind transforms, an offset table, and a
// null-terminated name table addressed by field-relative offsets.
package skl

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
	"lol-asset-tools/internal/hashutil"
	"lol-asset-tools/internal/stream"
)

// Magic identifies a modern (version 0) SKL file.
const Magic = 0x22FD4FC3

const (
	headerSize      = 64
	jointRecordSize = 100
	jointIndexSize  = 8

	// defaultRadius matches what the game's exporters emit for joints
	// without an authored radius.
	defaultRadius = 2.1

	maxJoints = 0x7FFF
)

// Joint is one bone of the hierarchy. Hash is derived from Name on
// write; Parent is -1 for roots.
type Joint struct {
	Flags  uint16
	ID     uint16
	Parent int16
	Hash   uint32
	Radius float32
	Name   string

	LocalTranslation mgl32.Vec3
	LocalScale       mgl32.Vec3
	LocalRotation    mgl32.Quat

	InverseGlobalTranslation mgl32.Vec3
	InverseGlobalScale       mgl32.Vec3
	InverseGlobalRotation    mgl32.Quat
}

// Skeleton is the canonical in-memory model. Influences remaps a
// vertex's stored bone index to a joint index; an empty slice means the
// identity mapping.
type Skeleton struct {
	Joints     []Joint
	Influences []uint16
}

// Read parses an SKL file.
func Read(data []byte) (*Skeleton, error) {
	r := stream.NewReader(data)

	r.Skip(4) // resource size
	magic := r.U32()
	if r.Err() != nil {
		return nil, fmt.Errorf("skl: header: %w", r.Err())
	}
	if magic != Magic {
		return nil, fmt.Errorf("skl: signature %#08x: %w", magic, format.ErrMalformedHeader)
	}
	if version := r.U32(); version != 0 {
		return nil, fmt.Errorf("skl: version %d: %w", version, format.ErrUnsupportedVersion)
	}

	r.Skip(2) // flags
	jointCount := int(r.U16())
	influenceCount := int(r.U32())
	jointsOffset := int(r.I32())
	r.Skip(4) // joint indices offset
	influencesOffset := int(r.I32())
	if r.Err() != nil {
		return nil, fmt.Errorf("skl: header: %w", r.Err())
	}
	if jointCount > maxJoints || influenceCount > len(data)/2 {
		return nil, fmt.Errorf("skl: joint count %d, influence count %d: %w",
			jointCount, influenceCount, format.ErrInvalidFieldValue)
	}

	s := &Skeleton{}

	if jointsOffset > 0 && jointCount > 0 {
		r.Seek(jointsOffset)
		s.Joints = make([]Joint, jointCount)
		for i := range s.Joints {
			j := &s.Joints[i]
			j.Flags = r.U16()
			j.ID = r.U16()
			j.Parent = r.I16()
			r.Skip(2) // secondary flags
			j.Hash = r.U32()
			j.Radius = r.F32()
			j.LocalTranslation = r.Vec3()
			j.LocalScale = r.Vec3()
			j.LocalRotation = r.Quat()
			j.InverseGlobalTranslation = r.Vec3()
			j.InverseGlobalScale = r.Vec3()
			j.InverseGlobalRotation = r.Quat()

			// Name offset is relative to its own field position.
			fieldPos := r.Pos()
			nameOffset := int(r.I32())
			if r.Err() != nil {
				return nil, fmt.Errorf("skl: joint %d: %w", i, r.Err())
			}
			r.Seek(fieldPos + nameOffset)
			j.Name = r.CString()
			if i == 0 && j.Name == "" {
				// Some exporters leave stray nulls before the first name.
				r.Skip(1)
				j.Name = r.CString()
			}
			r.Seek(fieldPos + 4)
			if r.Err() != nil {
				return nil, fmt.Errorf("skl: joint %d name: %w", i, r.Err())
			}
		}
	}

	if influencesOffset > 0 && influenceCount > 0 {
		r.Seek(influencesOffset)
		s.Influences = make([]uint16, influenceCount)
		for i := range s.Influences {
			s.Influences[i] = r.U16()
		}
		if r.Err() != nil {
			return nil, fmt.Errorf("skl: influences: %w", r.Err())
		}
	}

	return s, nil
}

// Bytes serializes the skeleton as a version 0 SKL file. Joint hashes
// are recomputed from names and the resource size is backpatched after
// the body is written.
func (s *Skeleton) Bytes() ([]byte, error) {
	jointCount := len(s.Joints)
	if jointCount == 0 || jointCount > maxJoints {
		return nil, fmt.Errorf("skl: joint count %d: %w", jointCount, format.ErrInvalidFieldValue)
	}
	for i, j := range s.Joints {
		if int(j.Parent) >= jointCount {
			return nil, fmt.Errorf("skl: joint %d parent %d out of range: %w",
				i, j.Parent, format.ErrInvalidFieldValue)
		}
	}

	influences := s.Influences
	if len(influences) == 0 {
		influences = make([]uint16, jointCount)
		for i := range influences {
			influences[i] = uint16(i)
		}
	}

	jointsOffset := headerSize
	jointIndicesOffset := jointsOffset + jointCount*jointRecordSize
	influencesOffset := jointIndicesOffset + jointCount*jointIndexSize
	namesOffset := influencesOffset + len(influences)*2

	w := stream.NewWriter()
	w.U32(0) // resource size, patched below
	w.U32(Magic)
	w.U32(0) // version
	w.U16(0) // flags
	w.U16(uint16(jointCount))
	w.U32(uint32(len(influences)))
	w.I32(int32(jointsOffset))
	w.I32(int32(jointIndicesOffset))
	w.I32(int32(influencesOffset))
	w.I32(0)
	w.I32(0)
	w.I32(int32(namesOffset))
	for i := 0; i < 5; i++ {
		w.U32(0xFFFFFFFF)
	}

	// Name table first so joint records can point at it.
	nameOffsets := make([]int, jointCount)
	w.Seek(namesOffset)
	for i, j := range s.Joints {
		nameOffsets[i] = w.Pos()
		w.CString(j.Name)
	}
	totalSize := w.Pos()

	w.Seek(jointsOffset)
	for i, j := range s.Joints {
		radius := j.Radius
		if radius == 0 {
			radius = defaultRadius
		}
		w.U16(j.Flags)
		w.U16(uint16(i))
		w.I16(j.Parent)
		w.U16(0)
		w.U32(hashutil.Elf(j.Name))
		w.F32(radius)
		w.Vec3(j.LocalTranslation)
		w.Vec3(j.LocalScale)
		w.Quat(j.LocalRotation)
		w.Vec3(j.InverseGlobalTranslation)
		w.Vec3(j.InverseGlobalScale)
		w.Quat(j.InverseGlobalRotation)
		w.I32(int32(nameOffsets[i] - w.Pos()))
	}

	w.Seek(jointIndicesOffset)
	for i, j := range s.Joints {
		w.U16(uint16(i))
		w.U16(0)
		w.U32(hashutil.Elf(j.Name))
	}

	w.Seek(influencesOffset)
	for _, idx := range influences {
		w.U16(idx)
	}

	w.PatchU32(0, uint32(totalSize))
	return w.Bytes(), nil
}
