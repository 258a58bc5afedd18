package skl

import "github.com/go-gl/mathgl/mgl32"

// LocalMatrix returns the joint's local transform as T * R * S.
func (j *Joint) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(j.LocalTranslation[0], j.LocalTranslation[1], j.LocalTranslation[2])
	r := j.LocalRotation.Mat4()
	s := mgl32.Scale3D(j.LocalScale[0], j.LocalScale[1], j.LocalScale[2])
	return t.Mul4(r).Mul4(s)
}

// GlobalTransforms computes the rest-pose global matrix of every joint.
// The format does not guarantee parent-before-child ordering, so
// parents are resolved recursively; a malformed parent chain (cycle or
// out-of-range index) degrades that joint to a root rather than
// looping.
func (s *Skeleton) GlobalTransforms() []mgl32.Mat4 {
	const (
		unvisited = iota
		inProgress
		done
	)

	globals := make([]mgl32.Mat4, len(s.Joints))
	state := make([]uint8, len(s.Joints))

	var resolve func(i int) mgl32.Mat4
	resolve = func(i int) mgl32.Mat4 {
		if state[i] == done {
			return globals[i]
		}
		local := s.Joints[i].LocalMatrix()
		parent := int(s.Joints[i].Parent)
		if state[i] == inProgress || parent < 0 || parent >= len(s.Joints) {
			globals[i] = local
		} else {
			state[i] = inProgress
			globals[i] = resolve(parent).Mul4(local)
		}
		state[i] = done
		return globals[i]
	}

	for i := range s.Joints {
		resolve(i)
	}
	return globals
}
