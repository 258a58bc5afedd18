// Package staticmesh reads the two static (unskinned) mesh formats:
// SCB, a little-endian binary layout, and SCO, a text key=value layout.
// Both describe per-face indexed geometry with per-corner UVs and a
// single material name per face.
package staticmesh

import "github.com/go-gl/mathgl/mgl32"

// Face is one triangle: three vertex indices, the material it is drawn
// with, and a UV per corner.
type Face struct {
	Indices  [3]uint32
	Material string
	UVs      [3]mgl32.Vec2
}

// Mesh is the shared model for both formats. Pivot is only present in
// SCO files and is nil otherwise.
type Mesh struct {
	Name     string
	Flags    uint32
	Central  mgl32.Vec3
	Pivot    *mgl32.Vec3
	Vertices []mgl32.Vec3
	Faces    []Face
}
