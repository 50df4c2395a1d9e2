package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
)

type uniforms struct {
	rec  *gpu.Recorder
	prog uint32
}

func (u uniforms) Uniform(name string) int32 { return u.rec.UniformLocation(u.prog, name) }

func TestDefault(t *testing.T) {
	lights := Default()

	want := []mgl32.Vec3{{-5, 5, 5}, {5, 5, 5}, {-5, -5, 5}, {5, -5, 5}}
	for i, l := range lights {
		assert.Equal(t, want[i], l.Position, "light %d", i)
		assert.Equal(t, mgl32.Vec3{300, 300, 300}, l.Color, "light %d", i)
	}
}

func TestUpload(t *testing.T) {
	rec := gpu.NewRecorder()
	u := uniforms{rec: rec, prog: rec.CreateProgram()}
	rec.Reset()

	lights := Default()
	lights[2].Color = mgl32.Vec3{1, 2, 3}
	lights.Upload(rec, u)

	cmds := rec.Filter(gpu.OpUniform3f)
	require.Len(t, cmds, 2*MaxPointLights)
	assert.Equal(t, "lightPositions[0]", cmds[0].Name)
	assert.Equal(t, "lightColors[0]", cmds[1].Name)
	assert.Equal(t, "lightPositions[3]", cmds[6].Name)

	c, ok := rec.LastUniform("lightColors[2]")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, c.Vec)
	p, ok := rec.LastUniform("lightPositions[3]")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{5, -5, 5}, p.Vec)
}
