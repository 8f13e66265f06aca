package shader

import (
	"bytes"
	_ "embed"
	"strconv"
	"strings"
	"text/template"

	mgl32 "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

//go:embed sources/triangle.vert.wgsl
var triangleVertexTemplate string

//go:embed sources/triangle.frag.wgsl
var triangleFragmentSource string

var vertexTmpl = template.Must(template.New("triangle.vert").
	Funcs(template.FuncMap{"lit": floatLiteral}).
	Parse(triangleVertexTemplate))

// Triangle is the hard-coded geometry baked into the vertex shader. The
// vertex stage indexes it with the vertex index, so no vertex buffer is
// bound.
type Triangle struct {
	Positions [3]mgl32.Vec2
	Colors    [3]mgl32.Vec3
}

// DefaultTriangle is red at the top, green bottom right, blue bottom left.
var DefaultTriangle = Triangle{
	Positions: [3]mgl32.Vec2{
		{0.0, -0.5},
		{0.5, 0.5},
		{-0.5, 0.5},
	},
	Colors: [3]mgl32.Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	},
}

// TriangleSources returns the vertex and fragment WGSL for tri.
func TriangleSources(tri Triangle) (vertex, fragment string, err error) {
	var buf bytes.Buffer
	if err := vertexTmpl.Execute(&buf, tri); err != nil {
		return "", "", errors.Wrap(err, "render triangle vertex shader")
	}
	return buf.String(), triangleFragmentSource, nil
}

// floatLiteral formats v so WGSL reads it as a float literal.
func floatLiteral(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
