package gpu

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexTypeFor(t *testing.T) {
	tests := []struct {
		max  uint32
		want IndexType
		size int
	}{
		{0, IndexUint8, 1},
		{255, IndexUint8, 1},
		{256, IndexUint16, 2},
		{65535, IndexUint16, 2},
		{65536, IndexUint32, 4},
		{1 << 31, IndexUint32, 4},
	}
	for _, tt := range tests {
		got := IndexTypeFor(tt.max)
		assert.Equal(t, tt.want, got, "max index %d", tt.max)
		assert.Equal(t, tt.size, got.Size(), "max index %d", tt.max)
	}
}

func TestRecorderHandlesAndLive(t *testing.T) {
	r := NewRecorder()
	vao := r.GenVertexArray()
	buf := r.GenBuffer()
	tex := r.GenTexture()
	assert.NotEqual(t, vao, buf)
	assert.NotEqual(t, buf, tex)
	assert.Equal(t, 3, r.Live())

	r.DeleteBuffer(buf)
	r.DeleteVertexArray(vao)
	r.DeleteTexture(tex)
	assert.Equal(t, 0, r.Live())
}

func TestRecorderUniformNames(t *testing.T) {
	r := NewRecorder()
	prog := r.CreateProgram()
	loc := r.UniformLocation(prog, "cameraPos")
	assert.Equal(t, loc, r.UniformLocation(prog, "cameraPos"))

	r.Uniform1i(r.UniformLocation(prog, "aoTexture"), 4)
	c, ok := r.LastUniform("aoTexture")
	require.True(t, ok)
	assert.Equal(t, int32(4), c.Int)
	assert.Equal(t, "Uniform1i(aoTexture=4)", c.String())

	r.Inactive = map[string]bool{"unused": true}
	assert.Equal(t, int32(-1), r.UniformLocation(prog, "unused"))
}

func TestRecorderCompileAndLinkFailures(t *testing.T) {
	r := NewRecorder()
	r.CompileErrors = map[ShaderStage]string{FragmentStage: "0:1: syntax error"}

	vs := r.CreateShader(VertexStage)
	ok, _ := r.CompileShader(vs, "void main(){}")
	assert.True(t, ok)

	fs := r.CreateShader(FragmentStage)
	ok, log := r.CompileShader(fs, "void main(){")
	assert.False(t, ok)
	assert.Equal(t, "0:1: syntax error", log)

	r.LinkError = "link failed"
	ok, log = r.LinkProgram(r.CreateProgram())
	assert.False(t, ok)
	assert.Equal(t, "link failed", log)
}

func TestRecorderFilterAndReset(t *testing.T) {
	r := NewRecorder()
	r.BufferData(ElementArrayBuffer, make([]byte, 12))
	r.TexImage2D(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	r.DrawElements(6, IndexUint16)

	data := r.Filter(OpBufferData)
	require.Len(t, data, 1)
	assert.Equal(t, 12, data[0].Bytes)
	assert.Equal(t, 16, r.Filter(OpTexImage2D)[0].Bytes)
	assert.Equal(t, 1, r.Count(OpDrawElements))

	r.Reset()
	assert.Empty(t, r.Commands())
}

func TestRecorderReadPixels(t *testing.T) {
	r := NewRecorder()

	assert.Len(t, r.ReadPixels(0, 0, 4, 2), 32)

	r.Pixels = []byte{1, 2, 3, 4}
	got := r.ReadPixels(0, 0, 1, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
	got[0] = 9
	assert.Equal(t, byte(1), r.Pixels[0], "callers get a copy")

	assert.Equal(t, 2, r.Count(OpReadPixels))
}
