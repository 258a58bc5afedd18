package staticmesh

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"lol-asset-tools/internal/format"
)

// ReadSCO parses a text static mesh. The format is line-oriented:
// an [ObjectBegin] header, key=value lines, then Verts= and Faces=
// blocks with one vertex or face per line.
func ReadSCO(data []byte) (*Mesh, error) {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}

	if len(lines) == 0 || lines[0] != "[ObjectBegin]" {
		return nil, fmt.Errorf("sco: missing [ObjectBegin]: %w", format.ErrMalformedHeader)
	}

	m := &Mesh{Name: "sco_mesh"}

	for i := 1; i < len(lines); i++ {
		line := lines[i]
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Name="):
			m.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name="))

		case strings.HasPrefix(line, "CentralPoint="):
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("sco: line %d: CentralPoint: %w", i+1, err)
			}
			m.Central = v

		case strings.HasPrefix(line, "PivotPoint="):
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("sco: line %d: PivotPoint: %w", i+1, err)
			}
			m.Pivot = &v

		case strings.HasPrefix(line, "Verts="):
			count, err := strconv.Atoi(fields[1])
			if err != nil || count < 0 || i+count >= len(lines) {
				return nil, fmt.Errorf("sco: line %d: vertex count: %w", i+1, format.ErrInvalidFieldValue)
			}
			for n := 0; n < count; n++ {
				i++
				v, err := parseVec3(strings.Fields(lines[i]))
				if err != nil {
					return nil, fmt.Errorf("sco: line %d: vertex: %w", i+1, err)
				}
				m.Vertices = append(m.Vertices, v)
			}

		case strings.HasPrefix(line, "Faces="):
			count, err := strconv.Atoi(fields[1])
			if err != nil || count < 0 || i+count >= len(lines) {
				return nil, fmt.Errorf("sco: line %d: face count: %w", i+1, format.ErrInvalidFieldValue)
			}
			for n := 0; n < count; n++ {
				i++
				face, ok, err := parseFace(lines[i])
				if err != nil {
					return nil, fmt.Errorf("sco: line %d: face: %w", i+1, err)
				}
				if ok {
					m.Faces = append(m.Faces, face)
				}
			}
		}
	}

	return m, nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(fields) < 3 {
		return v, format.ErrInvalidFieldValue
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, fmt.Errorf("%q: %w", fields[i], format.ErrInvalidFieldValue)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseFace parses "3 v1 v2 v3 material u1 v1 u2 v2 u3 v3". Degenerate
// faces return ok=false and are skipped, matching the binary reader.
func parseFace(line string) (Face, bool, error) {
	fields := strings.Fields(strings.ReplaceAll(line, "\t", " "))
	if len(fields) < 11 {
		return Face{}, false, nil
	}

	var idx [3]uint32
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(fields[1+i], 10, 32)
		if err != nil {
			return Face{}, false, fmt.Errorf("index %q: %w", fields[1+i], format.ErrInvalidFieldValue)
		}
		idx[i] = uint32(n)
	}
	if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
		return Face{}, false, nil
	}

	var uv [6]float32
	for i := range uv {
		f, err := strconv.ParseFloat(fields[5+i], 32)
		if err != nil {
			return Face{}, false, fmt.Errorf("uv %q: %w", fields[5+i], format.ErrInvalidFieldValue)
		}
		uv[i] = float32(f)
	}

	return Face{
		Indices:  idx,
		Material: fields[4],
		UVs: [3]mgl32.Vec2{
			{uv[0], uv[1]},
			{uv[2], uv[3]},
			{uv[4], uv[5]},
		},
	}, true, nil
}
