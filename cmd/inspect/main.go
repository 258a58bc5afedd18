package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lol-asset-tools/internal/anm"
	"lol-asset-tools/internal/skl"
	"lol-asset-tools/internal/skn"
	"lol-asset-tools/internal/staticmesh"
	"lol-asset-tools/internal/tex"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: inspect <file>...  (.skn .skl .anm .scb .sco .tex .dds)")
		os.Exit(2)
	}

	errors := 0
	for _, arg := range os.Args[1:] {
		if err := inspect(arg); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %s: %v\n", arg, err)
			errors++
		}
	}
	if errors > 0 {
		os.Exit(1)
	}
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s (%d bytes) ===\n", path, len(data))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".skn":
		return inspectSKN(data)
	case ".skl":
		return inspectSKL(data)
	case ".anm":
		return inspectANM(data)
	case ".scb":
		m, err := staticmesh.ReadSCB(data)
		if err != nil {
			return err
		}
		printStatic(m)
	case ".sco":
		m, err := staticmesh.ReadSCO(data)
		if err != nil {
			return err
		}
		printStatic(m)
	case ".tex":
		t, err := tex.Read(data)
		if err != nil {
			return err
		}
		printTexture(t)
	case ".dds":
		t, err := tex.FromDDS(data)
		if err != nil {
			return err
		}
		printTexture(t)
	default:
		return fmt.Errorf("unknown extension")
	}
	return nil
}

func inspectSKN(data []byte) error {
	m, err := skn.Read(data)
	if err != nil {
		return err
	}
	fmt.Printf("SKN v%d.%d: %d vertices, %d indices, %d submesh(es)\n",
		m.Major, m.Minor, len(m.Vertices), len(m.Indices), len(m.Submeshes))
	for i, sm := range m.Submeshes {
		fmt.Printf("  Submesh[%d] %q: verts %d+%d, indices %d+%d\n",
			i, sm.Name, sm.VertexStart, sm.VertexCount, sm.IndexStart, sm.IndexCount)
	}
	return nil
}

func inspectSKL(data []byte) error {
	s, err := skl.Read(data)
	if err != nil {
		return err
	}
	fmt.Printf("SKL: %d joint(s), %d influence(s)\n", len(s.Joints), len(s.Influences))
	for i, j := range s.Joints {
		indent := strings.Repeat("  ", depth(s, i))
		fmt.Printf("  [%3d] %s%s (parent=%d hash=0x%08X)\n", j.ID, indent, j.Name, j.Parent, j.Hash)
	}
	return nil
}

// depth walks the parent chain; malformed hierarchies cap out instead
// of looping forever.
func depth(s *skl.Skeleton, idx int) int {
	d := 0
	for d < len(s.Joints) {
		p := int(s.Joints[idx].Parent)
		if p < 0 || p >= len(s.Joints) {
			break
		}
		idx = p
		d++
	}
	return d
}

func inspectANM(data []byte) error {
	a, err := anm.Read(data)
	if err != nil {
		return err
	}
	fmt.Printf("ANM: %d track(s), %d frame(s), %.2f fps, %.3fs\n",
		len(a.Tracks), a.FrameCount, a.FPS, a.Duration)
	for i, t := range a.Tracks {
		if i >= 10 {
			fmt.Printf("  ... %d more\n", len(a.Tracks)-i)
			break
		}
		fmt.Printf("  Track 0x%08X: %d pose(s)\n", t.JointHash, len(t.Poses))
	}
	return nil
}

func printStatic(m *staticmesh.Mesh) {
	fmt.Printf("Static mesh %q: %d vertices, %d face(s)\n", m.Name, len(m.Vertices), len(m.Faces))
	fmt.Printf("  Central: (%.3f, %.3f, %.3f)\n", m.Central.X(), m.Central.Y(), m.Central.Z())
	if m.Pivot != nil {
		fmt.Printf("  Pivot:   (%.3f, %.3f, %.3f)\n", m.Pivot.X(), m.Pivot.Y(), m.Pivot.Z())
	}
	mats := map[string]int{}
	for _, f := range m.Faces {
		mats[f.Material]++
	}
	for name, n := range mats {
		fmt.Printf("  Material %q: %d face(s)\n", name, n)
	}
}

func printTexture(t *tex.Texture) {
	fmt.Printf("Texture: %dx%d %s, %d mip level(s)\n", t.Width, t.Height, t.Format, len(t.Mips))
	for i, mip := range t.Mips {
		w, h := t.Width>>i, t.Height>>i
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		fmt.Printf("  Mip[%d]: %dx%d, %d bytes\n", i, w, h, len(mip))
	}
}
