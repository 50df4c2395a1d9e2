// Package glgpu implements gpu.Device on OpenGL 4.1 core.
package glgpu

import (
	"fmt"
	"image"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

// Device executes commands on the current OpenGL context.
type Device struct{}

var _ gpu.Device = (*Device)(nil)

// New initializes the GL function pointers.
// IMPORTANT: Must be called AFTER the OpenGL context is made current!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	return &Device{}, nil
}

func (d *Device) ShadingLanguageVersion() string {
	return gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))
}

func (d *Device) CreateShader(stage gpu.ShaderStage) uint32 {
	if stage == gpu.FragmentStage {
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	}
	return gl.CreateShader(gl.VERTEX_SHADER)
}

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		return false, infoLog(logLen, func(buf *uint8) {
			gl.GetShaderInfoLog(shader, logLen, nil, buf)
		})
	}
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		return false, infoLog(logLen, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLen, nil, buf)
		})
	}
	return true, ""
}

func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	read(&buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(loc int32, v int32) { gl.Uniform1i(loc, v) }

func (d *Device) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }

func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) { gl.Uniform3fv(loc, 1, &v[0]) }

func (d *Device) UniformMatrix3(loc int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(loc, 1, false, &m[0])
}

func (d *Device) UniformMatrix4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *Device) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) BindBuffer(target gpu.BufferTarget, buf uint32) {
	gl.BindBuffer(bufferTarget(target), buf)
}

func (d *Device) BufferData(target gpu.BufferTarget, data []byte) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(bufferTarget(target), len(data), unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
}

func (d *Device) DeleteBuffer(buf uint32) { gl.DeleteBuffers(1, &buf) }

func (d *Device) VertexAttribPointer(index uint32, components int32, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, components, gl.FLOAT, false, stride, uintptr(offset))
}

func (d *Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *Device) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (d *Device) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func (d *Device) BindTexture(tex uint32) { gl.BindTexture(gl.TEXTURE_2D, tex) }

func (d *Device) TexImage2D(img *image.RGBA) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	w, h := int32(img.Rect.Dx()), int32(img.Rect.Dy())
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

func (d *Device) DeleteTexture(tex uint32) { gl.DeleteTextures(1, &tex) }

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear() { gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT) }

func (d *Device) EnableDepthTest(fn gpu.DepthFunc) {
	gl.Enable(gl.DEPTH_TEST)
	switch fn {
	case gpu.DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case gpu.DepthAlways:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (d *Device) DrawElements(count int32, typ gpu.IndexType) {
	var xtype uint32
	switch typ {
	case gpu.IndexUint8:
		xtype = gl.UNSIGNED_BYTE
	case gpu.IndexUint16:
		xtype = gl.UNSIGNED_SHORT
	default:
		xtype = gl.UNSIGNED_INT
	}
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, xtype, 0)
}

func (d *Device) ReadPixels(x, y, width, height int32) []byte {
	pixels := make([]byte, int(width)*int(height)*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}
