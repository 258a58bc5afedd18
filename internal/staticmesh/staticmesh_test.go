package staticmesh

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
	"lol-asset-tools/internal/stream"
)

// buildSCB assembles a version 3.2 binary mesh: a unit triangle plus
// one degenerate face that the parser must drop.
func buildSCB(vertexType uint32) []byte {
	w := stream.NewWriter()
	w.PaddedString(MagicSCB, 8)
	w.U16(3)
	w.U16(2)
	w.PaddedString("props_rock", 128)
	w.U32(3) // vertices
	w.U32(2) // faces
	w.U32(0) // flags
	w.Zero(24)
	w.U32(vertexType)
	w.Vec3(mgl32.Vec3{0, 0, 0})
	w.Vec3(mgl32.Vec3{1, 0, 0})
	w.Vec3(mgl32.Vec3{0, 1, 0})
	if vertexType == 1 {
		w.Zero(4 * 3) // vertex colors
	}
	w.Vec3(mgl32.Vec3{0.5, 0.5, 0}) // central point

	// Face 0: valid. UVs stored as u1,u2,u3 then v1,v2,v3.
	w.U32(0)
	w.U32(1)
	w.U32(2)
	w.PaddedString("lambert1", 64)
	for _, f := range []float32{0, 1, 0, 0, 0, 1} {
		w.F32(f)
	}
	// Face 1: degenerate.
	w.U32(2)
	w.U32(2)
	w.U32(0)
	w.PaddedString("lambert1", 64)
	for i := 0; i < 6; i++ {
		w.F32(0)
	}
	return w.Bytes()
}

func TestReadSCB(t *testing.T) {
	m, err := ReadSCB(buildSCB(0))
	if err != nil {
		t.Fatalf("ReadSCB: %v", err)
	}
	if m.Name != "props_rock" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("vertex count = %d, want 3", len(m.Vertices))
	}
	if m.Central != (mgl32.Vec3{0.5, 0.5, 0}) {
		t.Errorf("central = %v", m.Central)
	}
	if m.Pivot != nil {
		t.Errorf("pivot = %v, want nil for binary meshes", m.Pivot)
	}
	if len(m.Faces) != 1 {
		t.Fatalf("face count = %d, want degenerate face dropped", len(m.Faces))
	}

	f := m.Faces[0]
	if f.Indices != [3]uint32{0, 1, 2} || f.Material != "lambert1" {
		t.Errorf("face = %+v", f)
	}
	// Corner UVs interleave from the u-triple and v-triple.
	wantUVs := [3]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}
	if f.UVs != wantUVs {
		t.Errorf("uvs = %v, want %v", f.UVs, wantUVs)
	}
}

func TestReadSCBVertexColors(t *testing.T) {
	// vertexType 1 inserts a color block between vertices and the
	// central point; geometry must come out identical.
	m, err := ReadSCB(buildSCB(1))
	if err != nil {
		t.Fatalf("ReadSCB: %v", err)
	}
	if m.Central != (mgl32.Vec3{0.5, 0.5, 0}) {
		t.Errorf("central = %v, color block not skipped", m.Central)
	}
	if len(m.Faces) != 1 {
		t.Errorf("face count = %d", len(m.Faces))
	}
}

func TestReadSCBErrors(t *testing.T) {
	t.Run("bad_magic", func(t *testing.T) {
		data := buildSCB(0)
		data[0] = 'X'
		if _, err := ReadSCB(data); !errors.Is(err, format.ErrMalformedHeader) {
			t.Errorf("err = %v, want ErrMalformedHeader", err)
		}
	})
	t.Run("bad_version", func(t *testing.T) {
		data := buildSCB(0)
		data[8] = 7
		if _, err := ReadSCB(data); !errors.Is(err, format.ErrUnsupportedVersion) {
			t.Errorf("err = %v, want ErrUnsupportedVersion", err)
		}
	})
	t.Run("truncated", func(t *testing.T) {
		data := buildSCB(0)
		if _, err := ReadSCB(data[:len(data)-20]); !errors.Is(err, format.ErrUnexpectedEOF) {
			t.Errorf("err = %v, want ErrUnexpectedEOF", err)
		}
	})
}

const scoSample = `[ObjectBegin]
Name= props_banner
CentralPoint= 1.0 2.0 3.0
PivotPoint= 1.0 0.0 3.0
Verts= 3
0.0 0.0 0.0
1.0 0.0 0.0
0.0 1.0 0.0
Faces= 2
3	0 1 2	lambert2	0.0 0.0 1.0 0.0 0.0 1.0
3	1 1 2	lambert2	0.0 0.0 0.0 0.0 0.0 0.0
[ObjectEnd]
`

func TestReadSCO(t *testing.T) {
	m, err := ReadSCO([]byte(scoSample))
	if err != nil {
		t.Fatalf("ReadSCO: %v", err)
	}
	if m.Name != "props_banner" {
		t.Errorf("name = %q", m.Name)
	}
	if m.Central != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("central = %v", m.Central)
	}
	if m.Pivot == nil || *m.Pivot != (mgl32.Vec3{1, 0, 3}) {
		t.Errorf("pivot = %v, want (1,0,3)", m.Pivot)
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("vertex count = %d", len(m.Vertices))
	}
	if len(m.Faces) != 1 {
		t.Fatalf("face count = %d, want degenerate face dropped", len(m.Faces))
	}

	f := m.Faces[0]
	if f.Indices != [3]uint32{0, 1, 2} || f.Material != "lambert2" {
		t.Errorf("face = %+v", f)
	}
	// SCO UV pairs are already interleaved per corner.
	wantUVs := [3]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}
	if f.UVs != wantUVs {
		t.Errorf("uvs = %v, want %v", f.UVs, wantUVs)
	}
}

func TestReadSCODefaults(t *testing.T) {
	m, err := ReadSCO([]byte("[ObjectBegin]\n[ObjectEnd]\n"))
	if err != nil {
		t.Fatalf("ReadSCO: %v", err)
	}
	if m.Name != "sco_mesh" {
		t.Errorf("default name = %q, want sco_mesh", m.Name)
	}
	if m.Pivot != nil {
		t.Errorf("pivot = %v, want nil when absent", m.Pivot)
	}
}

func TestReadSCOErrors(t *testing.T) {
	t.Run("missing_header", func(t *testing.T) {
		if _, err := ReadSCO([]byte("Name= x\n")); !errors.Is(err, format.ErrMalformedHeader) {
			t.Errorf("err = %v, want ErrMalformedHeader", err)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := ReadSCO(nil); !errors.Is(err, format.ErrMalformedHeader) {
			t.Errorf("err = %v, want ErrMalformedHeader", err)
		}
	})
	t.Run("vert_count_past_eof", func(t *testing.T) {
		src := "[ObjectBegin]\nVerts= 10\n0 0 0\n"
		if _, err := ReadSCO([]byte(src)); !errors.Is(err, format.ErrInvalidFieldValue) {
			t.Errorf("err = %v, want ErrInvalidFieldValue", err)
		}
	})
	t.Run("bad_vertex", func(t *testing.T) {
		src := strings.Replace(scoSample, "1.0 0.0 0.0", "x y z", 1)
		if _, err := ReadSCO([]byte(src)); !errors.Is(err, format.ErrInvalidFieldValue) {
			t.Errorf("err = %v, want ErrInvalidFieldValue", err)
		}
	})
}
