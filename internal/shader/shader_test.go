package shader

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageString(t *testing.T) {
	assert.Equal(t, "vertex", StageVertex.String())
	assert.Equal(t, "tesselation", StageTessellation.String())
	assert.Equal(t, "geometry", StageGeometry.String())
	assert.Equal(t, "fragment", StageFragment.String())
	assert.Equal(t, "compute", StageCompute.String())
	assert.Equal(t, "none", Stage(42).String())
}

func TestCompileTriangle(t *testing.T) {
	c := NewCompiler()
	defer c.Close()

	vert, frag, err := TriangleSources(DefaultTriangle)
	require.NoError(t, err)

	vs, err := c.Compile([]string{vert}, StageVertex)
	require.NoError(t, err)
	require.NotEmpty(t, vs.Code)
	assert.Equal(t, uint32(spirvMagic), vs.Code[0])
	assert.Equal(t, StageVertex, vs.Stage)
	assert.Equal(t, EntryPoint, vs.EntryPoint)
	assert.Equal(t, uint(len(vs.Code)*4), vs.SizeBytes())

	fs, err := c.Compile([]string{frag}, StageFragment)
	require.NoError(t, err)
	assert.Equal(t, uint32(spirvMagic), fs.Code[0])
}

func TestCompileCachesPerStageAndSource(t *testing.T) {
	c := NewCompiler()
	defer c.Close()

	_, frag, err := TriangleSources(DefaultTriangle)
	require.NoError(t, err)

	_, err = c.Compile([]string{frag}, StageFragment)
	require.NoError(t, err)
	before := process.compiles

	_, err = c.Compile([]string{frag}, StageFragment)
	require.NoError(t, err)
	assert.Equal(t, before, process.compiles)
}

func TestCompileRejects(t *testing.T) {
	c := NewCompiler()
	defer c.Close()

	_, frag, err := TriangleSources(DefaultTriangle)
	require.NoError(t, err)

	_, err = c.Compile(nil, StageFragment)
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = c.Compile([]string{frag}, StageGeometry)
	assert.Equal(t, ErrUnsupportedStage, errors.Cause(err))

	_, err = c.Compile([]string{frag}, StageTessellation)
	assert.Equal(t, ErrUnsupportedStage, errors.Cause(err))

	_, err = c.Compile([]string{frag}, StageVertex)
	assert.Equal(t, ErrMissingEntryPoint, errors.Cause(err))

	_, err = c.Compile([]string{"@fragment fn main( {"}, StageFragment)
	assert.Error(t, err)
}

func TestCompilerClosed(t *testing.T) {
	c := NewCompiler()
	c.Close()
	c.Close()

	_, frag, err := TriangleSources(DefaultTriangle)
	require.NoError(t, err)
	_, err = c.Compile([]string{frag}, StageFragment)
	assert.ErrorIs(t, err, ErrCompilerClosed)
}

func TestProcessStateLifetime(t *testing.T) {
	a := NewCompiler()
	b := NewCompiler()
	a.Close()
	assert.NotNil(t, process.cache)
	b.Close()
	assert.Nil(t, process.cache)
	assert.Zero(t, process.refs)
}

func TestTriangleSources(t *testing.T) {
	vert, frag, err := TriangleSources(DefaultTriangle)
	require.NoError(t, err)
	assert.Contains(t, vert, "vec2<f32>(0.0, -0.5)")
	assert.Contains(t, vert, "vec2<f32>(-0.5, 0.5)")
	assert.Contains(t, vert, "vec3<f32>(1.0, 0.0, 0.0)")
	assert.Contains(t, vert, "@vertex")
	assert.Contains(t, frag, "@fragment")
}

func TestToWords(t *testing.T) {
	words, err := toWords([]byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []uint32{spirvMagic, 1}, words)

	_, err = toWords([]byte{0x03, 0x02, 0x23})
	assert.ErrorIs(t, err, ErrInvalidSPIRV)

	_, err = toWords([]byte{0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidSPIRV)
}

func TestHasEntryPoint(t *testing.T) {
	cases := []struct {
		name string
		src  string
		attr string
		want bool
	}{
		{"plain", "@vertex\nfn main() -> @builtin(position) vec4<f32> {}", "@vertex", true},
		{"extra attributes", "@compute @workgroup_size(8, 8)\nfn main() {}", "@compute", true},
		{"wrong name", "@vertex fn vs_main() {}", "@vertex", false},
		{"wrong stage", "@fragment fn main() {}", "@vertex", false},
		{"line comment", "// @vertex fn main()\nfn helper() {}", "@vertex", false},
		{"block comment", "/* @fragment\nfn main() */ fn other() {}", "@fragment", false},
		{"attribute only", "// entry\n@vertex\nconst x = 1;", "@vertex", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hasEntryPoint(tc.src, tc.attr))
		})
	}
}

func TestCompileRejectsCommentedEntryPoint(t *testing.T) {
	c := NewCompiler()
	defer c.Close()

	_, err := c.Compile([]string{"// @vertex fn main()\nfn helper() {}"}, StageVertex)
	assert.Equal(t, ErrMissingEntryPoint, errors.Cause(err))
}
