// Package skn reads and writes SKN skinned mesh files: a submesh
// table, a shared 16-bit index buffer, and 52-byte vertices carrying up
// to four bone influences.
package skn

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
	"lol-asset-tools/internal/stream"
)

// Magic identifies an SKN file.
const Magic = 0x00112233

const (
	submeshNameSize = 64

	// Hard limits of the on-disk design: 16-bit indices and a fixed
	// submesh table, not soft warnings.
	MaxVertices  = 65535
	MaxSubmeshes = 32
)

// Vertex is one skinned vertex. Weights are normalized by the writer;
// the reader tolerates non-normalized weights from legacy files.
type Vertex struct {
	Position    mgl32.Vec3
	BoneIndices [4]uint8
	Weights     [4]float32
	Normal      mgl32.Vec3
	UV          mgl32.Vec2
}

// Submesh is a named contiguous vertex/index range, roughly one
// material.
type Submesh struct {
	Name        string
	VertexStart uint32
	VertexCount uint32
	IndexStart  uint32
	IndexCount  uint32
}

// Mesh is the canonical in-memory model across all SKN versions.
type Mesh struct {
	Major     uint16
	Minor     uint16
	Submeshes []Submesh
	Indices   []uint16
	Vertices  []Vertex
}

// Read parses an SKN file of any supported major version (0 through 4).
// Degenerate triangles (two equal indices) are dropped.
func Read(data []byte) (*Mesh, error) {
	r := stream.NewReader(data)

	magic := r.U32()
	if r.Err() != nil {
		return nil, fmt.Errorf("skn: header: %w", r.Err())
	}
	if magic != Magic {
		return nil, fmt.Errorf("skn: signature %#08x: %w", magic, format.ErrMalformedHeader)
	}

	m := &Mesh{Major: r.U16(), Minor: r.U16()}
	if m.Major > 4 {
		return nil, fmt.Errorf("skn: version %d.%d: %w", m.Major, m.Minor, format.ErrUnsupportedVersion)
	}

	var indexCount, vertexCount int
	vertexType := uint32(0)

	if m.Major == 0 {
		// Legacy layout: totals only, one implicit submesh.
		indexCount = int(r.U32())
		vertexCount = int(r.U32())
		m.Submeshes = []Submesh{{
			Name:        "Base",
			VertexCount: uint32(vertexCount),
			IndexCount:  uint32(indexCount),
		}}
	} else {
		submeshCount := int(r.U32())
		if r.Err() != nil {
			return nil, fmt.Errorf("skn: header: %w", r.Err())
		}
		if submeshCount < 0 || submeshCount > len(data)/4 {
			return nil, fmt.Errorf("skn: submesh count %d: %w", submeshCount, format.ErrInvalidFieldValue)
		}
		m.Submeshes = make([]Submesh, submeshCount)
		for i := range m.Submeshes {
			sm := &m.Submeshes[i]
			sm.Name = r.PaddedString(submeshNameSize)
			sm.VertexStart = r.U32()
			sm.VertexCount = r.U32()
			sm.IndexStart = r.U32()
			sm.IndexCount = r.U32()
		}
		if m.Major >= 4 {
			r.Skip(4) // flags
		}
		indexCount = int(r.U32())
		vertexCount = int(r.U32())
		if m.Major >= 4 {
			r.Skip(4) // vertex size
			vertexType = r.U32()
			r.Skip(40) // AABB + bounding sphere
		}
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("skn: header: %w", r.Err())
	}
	if indexCount < 0 || indexCount > len(data)/2 || vertexCount < 0 || vertexCount > len(data)/4 {
		return nil, fmt.Errorf("skn: index count %d, vertex count %d: %w",
			indexCount, vertexCount, format.ErrInvalidFieldValue)
	}

	m.Indices = make([]uint16, 0, indexCount)
	for i := 0; i < indexCount/3; i++ {
		a, b, c := r.U16(), r.U16(), r.U16()
		if a == b || b == c || c == a {
			continue
		}
		m.Indices = append(m.Indices, a, b, c)
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("skn: indices: %w", r.Err())
	}

	m.Vertices = make([]Vertex, vertexCount)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = r.Vec3()
		for k := 0; k < 4; k++ {
			v.BoneIndices[k] = r.U8()
		}
		for k := 0; k < 4; k++ {
			v.Weights[k] = r.F32()
		}
		v.Normal = r.Vec3()
		v.UV = r.Vec2()
		if vertexType >= 1 {
			r.Skip(4)
			if vertexType == 2 {
				r.Skip(16) // tangent or color, format-reserved
			}
		}
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("skn: vertices: %w", r.Err())
	}

	return m, nil
}

// Bytes serializes the mesh as SKN version 1.1: submesh table, totals,
// indices, then 52-byte vertices. Submesh ranges are validated against
// the totals and degenerate triangles are not re-emitted.
func (m *Mesh) Bytes() ([]byte, error) {
	if len(m.Vertices) > MaxVertices {
		return nil, fmt.Errorf("skn: %d vertices, max %d: %w",
			len(m.Vertices), MaxVertices, format.ErrInvalidFieldValue)
	}
	if len(m.Submeshes) == 0 || len(m.Submeshes) > MaxSubmeshes {
		return nil, fmt.Errorf("skn: %d submeshes, max %d: %w",
			len(m.Submeshes), MaxSubmeshes, format.ErrInvalidFieldValue)
	}

	indices := make([]uint16, 0, len(m.Indices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a == b || b == c || c == a {
			continue
		}
		indices = append(indices, a, b, c)
	}

	for i, sm := range m.Submeshes {
		if int(sm.VertexStart)+int(sm.VertexCount) > len(m.Vertices) ||
			int(sm.IndexStart)+int(sm.IndexCount) > len(indices) {
			return nil, fmt.Errorf("skn: submesh %d range exceeds mesh totals: %w",
				i, format.ErrInvalidFieldValue)
		}
	}

	w := stream.NewWriter()
	w.U32(Magic)
	w.U16(1)
	w.U16(1)
	w.U32(uint32(len(m.Submeshes)))
	for _, sm := range m.Submeshes {
		w.PaddedString(sm.Name, submeshNameSize)
		w.U32(sm.VertexStart)
		w.U32(sm.VertexCount)
		w.U32(sm.IndexStart)
		w.U32(sm.IndexCount)
	}
	w.U32(uint32(len(indices)))
	w.U32(uint32(len(m.Vertices)))

	for _, idx := range indices {
		w.U16(idx)
	}
	for _, v := range m.Vertices {
		w.Vec3(v.Position)
		for k := 0; k < 4; k++ {
			w.U8(v.BoneIndices[k])
		}
		weights := normalizeWeights(v.Weights)
		for k := 0; k < 4; k++ {
			w.F32(weights[k])
		}
		w.Vec3(v.Normal)
		w.Vec2(v.UV)
	}

	return w.Bytes(), nil
}

// normalizeWeights rescales influence weights to sum to 1.0. A
// near-zero sum falls back to full weight on the first bone, the same
// deterministic repair applied by the game's authoring exporters.
func normalizeWeights(weights [4]float32) [4]float32 {
	var sum float32
	for _, v := range weights {
		sum += v
	}
	if sum <= 1e-6 {
		return [4]float32{1, 0, 0, 0}
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
