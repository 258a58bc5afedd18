package skn

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
	"lol-asset-tools/internal/stream"
)

func quadMesh() *Mesh {
	return &Mesh{
		Submeshes: []Submesh{{
			Name:        "Body",
			VertexStart: 0,
			VertexCount: 4,
			IndexStart:  0,
			IndexCount:  6,
		}},
		Indices: []uint16{0, 1, 2, 2, 1, 3},
		Vertices: []Vertex{
			{Position: mgl32.Vec3{0, 0, 0}, BoneIndices: [4]uint8{0}, Weights: [4]float32{1}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}, BoneIndices: [4]uint8{0}, Weights: [4]float32{1}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{0, 1, 0}, BoneIndices: [4]uint8{1}, Weights: [4]float32{1}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{1, 1, 0}, BoneIndices: [4]uint8{1, 2}, Weights: [4]float32{0.5, 0.5}, Normal: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{1, 1}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	src := quadMesh()
	data, err := src.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Major != 1 || got.Minor != 1 {
		t.Errorf("version = %d.%d, want 1.1", got.Major, got.Minor)
	}
	if len(got.Submeshes) != 1 || got.Submeshes[0].Name != "Body" {
		t.Fatalf("submeshes = %+v", got.Submeshes)
	}
	if len(got.Indices) != 6 {
		t.Fatalf("index count = %d, want 6", len(got.Indices))
	}
	for i, idx := range got.Indices {
		if idx != src.Indices[i] {
			t.Errorf("index %d = %d, want %d", i, idx, src.Indices[i])
		}
	}
	if len(got.Vertices) != 4 {
		t.Fatalf("vertex count = %d, want 4", len(got.Vertices))
	}
	for i, v := range got.Vertices {
		want := src.Vertices[i]
		if v.Position != want.Position || v.Normal != want.Normal || v.UV != want.UV {
			t.Errorf("vertex %d geometry mismatch: %+v", i, v)
		}
		if v.BoneIndices != want.BoneIndices || v.Weights != want.Weights {
			t.Errorf("vertex %d skinning mismatch: %+v", i, v)
		}
	}
}

func TestDegenerateTrianglesDropped(t *testing.T) {
	src := quadMesh()
	src.Indices = append(src.Indices, 0, 0, 1) // two equal corners
	src.Submeshes[0].IndexCount = 6            // range over surviving indices only

	data, err := src.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Indices) != 6 {
		t.Errorf("index count = %d, want degenerate triangle dropped", len(got.Indices))
	}
}

func TestReadDropsDegenerates(t *testing.T) {
	// Hand-built v0 file: totals only, no submesh table.
	w := stream.NewWriter()
	w.U32(Magic)
	w.U16(0)
	w.U16(0)
	w.U32(3) // indices
	w.U32(1) // vertices
	w.U16(0)
	w.U16(0)
	w.U16(1)
	// one 52-byte vertex
	w.Zero(52)

	got, err := Read(w.Bytes())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Indices) != 0 {
		t.Errorf("index count = %d, want 0 after dropping (0,0,1)", len(got.Indices))
	}
	if len(got.Submeshes) != 1 || got.Submeshes[0].Name != "Base" {
		t.Errorf("legacy submesh = %+v, want implicit Base", got.Submeshes)
	}
}

func TestWeightNormalization(t *testing.T) {
	src := quadMesh()
	src.Vertices[0].Weights = [4]float32{2, 2, 0, 0}
	src.Vertices[1].Weights = [4]float32{0, 0, 0, 0}

	data, err := src.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Vertices[0].Weights != [4]float32{0.5, 0.5, 0, 0} {
		t.Errorf("weights = %v, want rescaled to (0.5,0.5,0,0)", got.Vertices[0].Weights)
	}
	if got.Vertices[1].Weights != [4]float32{1, 0, 0, 0} {
		t.Errorf("zero-sum weights = %v, want fallback (1,0,0,0)", got.Vertices[1].Weights)
	}
}

func TestLimits(t *testing.T) {
	t.Run("too_many_vertices", func(t *testing.T) {
		m := quadMesh()
		m.Vertices = make([]Vertex, MaxVertices+1)
		if _, err := m.Bytes(); !errors.Is(err, format.ErrInvalidFieldValue) {
			t.Errorf("err = %v, want ErrInvalidFieldValue", err)
		}
	})
	t.Run("too_many_submeshes", func(t *testing.T) {
		m := quadMesh()
		m.Submeshes = make([]Submesh, MaxSubmeshes+1)
		if _, err := m.Bytes(); !errors.Is(err, format.ErrInvalidFieldValue) {
			t.Errorf("err = %v, want ErrInvalidFieldValue", err)
		}
	})
	t.Run("submesh_range", func(t *testing.T) {
		m := quadMesh()
		m.Submeshes[0].VertexCount = 100
		if _, err := m.Bytes(); !errors.Is(err, format.ErrInvalidFieldValue) {
			t.Errorf("err = %v, want ErrInvalidFieldValue", err)
		}
	})
}

func TestReadErrors(t *testing.T) {
	data, err := quadMesh().Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	t.Run("bad_magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xFF
		if _, err := Read(bad); !errors.Is(err, format.ErrMalformedHeader) {
			t.Errorf("err = %v, want ErrMalformedHeader", err)
		}
	})
	t.Run("bad_version", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] = 9
		if _, err := Read(bad); !errors.Is(err, format.ErrUnsupportedVersion) {
			t.Errorf("err = %v, want ErrUnsupportedVersion", err)
		}
	})
	t.Run("truncated_vertices", func(t *testing.T) {
		if _, err := Read(data[:len(data)-10]); !errors.Is(err, format.ErrUnexpectedEOF) {
			t.Errorf("err = %v, want ErrUnexpectedEOF", err)
		}
	})
}
