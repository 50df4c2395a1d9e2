// Package gpu defines the GPU command surface used by the renderer.
//
// Every state change the renderer makes goes through Device, in call order.
// The binding state it mutates (bound vertex array, bound buffers, active
// texture unit, bound texture, current program) is global and is never
// restored by callers; code that draws must bind what it needs first.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferTarget selects a buffer binding point.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	if t == ElementArrayBuffer {
		return "element-array"
	}
	return "array"
}

// IndexType is the element width of an index buffer.
type IndexType int

const (
	IndexUint8 IndexType = iota
	IndexUint16
	IndexUint32
)

// Size returns the byte width of one index.
func (t IndexType) Size() int {
	switch t {
	case IndexUint8:
		return 1
	case IndexUint16:
		return 2
	default:
		return 4
	}
}

func (t IndexType) String() string {
	switch t {
	case IndexUint8:
		return "uint8"
	case IndexUint16:
		return "uint16"
	default:
		return "uint32"
	}
}

// IndexTypeFor returns the narrowest index type able to hold maxIndex.
func IndexTypeFor(maxIndex uint32) IndexType {
	switch {
	case maxIndex <= 0xFF:
		return IndexUint8
	case maxIndex <= 0xFFFF:
		return IndexUint16
	default:
		return IndexUint32
	}
}

// ShaderStage is a programmable pipeline stage.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	if s == FragmentStage {
		return "fragment"
	}
	return "vertex"
}

// DepthFunc is a depth comparison.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

// Device issues GPU commands. Implementations are not safe for concurrent
// use; the caller owns the context for the duration of every call.
type Device interface {
	// ShadingLanguageVersion returns the runtime's reported GLSL version
	// string, e.g. "4.10 NVIDIA".
	ShadingLanguageVersion() string

	CreateShader(stage ShaderStage) uint32
	// CompileShader compiles source into shader and returns the info log
	// when compilation fails.
	CompileShader(shader uint32, source string) (ok bool, log string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	// LinkProgram links program and returns the info log when linking fails.
	LinkProgram(program uint32) (ok bool, log string)
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	// UniformLocation returns -1 for unknown or inactive uniforms.
	UniformLocation(program uint32, name string) int32

	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform3f(loc int32, v mgl32.Vec3)
	UniformMatrix3(loc int32, m mgl32.Mat3)
	UniformMatrix4(loc int32, m mgl32.Mat4)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	GenBuffer() uint32
	BindBuffer(target BufferTarget, buf uint32)
	// BufferData uploads data as static draw data to the buffer bound at target.
	BufferData(target BufferTarget, data []byte)
	DeleteBuffer(buf uint32)
	// VertexAttribPointer describes a float attribute of the bound array
	// buffer; offset and stride are in bytes.
	VertexAttribPointer(index uint32, components int32, stride int32, offset int)
	EnableVertexAttribArray(index uint32)

	GenTexture() uint32
	// ActiveTexture selects texture unit n (0 based).
	ActiveTexture(unit uint32)
	BindTexture(tex uint32)
	// TexImage2D uploads img to the bound texture and builds mipmaps.
	TexImage2D(img *image.RGBA)
	DeleteTexture(tex uint32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear()
	EnableDepthTest(fn DepthFunc)
	// DrawElements draws count indexed triangles from the bound element
	// array buffer starting at offset 0.
	DrawElements(count int32, typ IndexType)

	// ReadPixels returns the RGBA pixels of a framebuffer region, bottom
	// row first.
	ReadPixels(x, y, width, height int32) []byte
}
