package staticmesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
	"lol-asset-tools/internal/stream"
)

// MagicSCB is the 8-byte signature of binary static meshes.
const MagicSCB = "r3d2Mesh"

const (
	scbNameSize     = 128
	scbMaterialSize = 64
)

// ReadSCB parses a binary static mesh. Versions 2.1, 2.2, and 3.2 are
// supported; 3.2 adds a vertex-type field and optional vertex colors
// (skipped). Degenerate faces are dropped.
func ReadSCB(data []byte) (*Mesh, error) {
	r := stream.NewReader(data)

	magic := r.PaddedString(8)
	if r.Err() != nil {
		return nil, fmt.Errorf("scb: header: %w", r.Err())
	}
	if magic != MagicSCB {
		return nil, fmt.Errorf("scb: signature %q: %w", magic, format.ErrMalformedHeader)
	}

	major, minor := r.U16(), r.U16()
	if major != 2 && major != 3 {
		return nil, fmt.Errorf("scb: version %d.%d: %w", major, minor, format.ErrUnsupportedVersion)
	}

	m := &Mesh{Name: r.PaddedString(scbNameSize)}

	vertexCount := int(r.U32())
	faceCount := int(r.U32())
	m.Flags = r.U32()
	r.Skip(24) // bounding box
	if r.Err() != nil {
		return nil, fmt.Errorf("scb: header: %w", r.Err())
	}
	if vertexCount < 0 || vertexCount > r.Len()/12 || faceCount < 0 || faceCount > r.Len()/36 {
		return nil, fmt.Errorf("scb: vertex count %d, face count %d: %w",
			vertexCount, faceCount, format.ErrInvalidFieldValue)
	}

	vertexType := uint32(0)
	if major == 3 && minor == 2 {
		vertexType = r.U32()
	}

	m.Vertices = make([]mgl32.Vec3, vertexCount)
	for i := range m.Vertices {
		m.Vertices[i] = r.Vec3()
	}
	if vertexType == 1 {
		r.Skip(4 * vertexCount) // vertex colors
	}
	m.Central = r.Vec3()
	if r.Err() != nil {
		return nil, fmt.Errorf("scb: vertices: %w", r.Err())
	}

	for i := 0; i < faceCount; i++ {
		i0, i1, i2 := r.U32(), r.U32(), r.U32()
		material := r.PaddedString(scbMaterialSize)
		var uv [6]float32
		for k := range uv {
			uv[k] = r.F32()
		}
		if r.Err() != nil {
			return nil, fmt.Errorf("scb: face %d: %w", i, r.Err())
		}
		if i0 == i1 || i1 == i2 || i2 == i0 {
			continue
		}
		m.Faces = append(m.Faces, Face{
			Indices:  [3]uint32{i0, i1, i2},
			Material: material,
			UVs: [3]mgl32.Vec2{
				{uv[0], uv[3]},
				{uv[1], uv[4]},
				{uv[2], uv[5]},
			},
		})
	}

	return m, nil
}
