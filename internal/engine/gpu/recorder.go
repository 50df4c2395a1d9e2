package gpu

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Op names a recorded command.
type Op int

const (
	OpCreateShader Op = iota
	OpCompileShader
	OpDeleteShader
	OpCreateProgram
	OpAttachShader
	OpBindAttribLocation
	OpLinkProgram
	OpUseProgram
	OpDeleteProgram
	OpUniform1i
	OpUniform1f
	OpUniform3f
	OpUniformMatrix3
	OpUniformMatrix4
	OpGenVertexArray
	OpBindVertexArray
	OpDeleteVertexArray
	OpGenBuffer
	OpBindBuffer
	OpBufferData
	OpDeleteBuffer
	OpVertexAttribPointer
	OpEnableVertexAttribArray
	OpGenTexture
	OpActiveTexture
	OpBindTexture
	OpTexImage2D
	OpDeleteTexture
	OpViewport
	OpClearColor
	OpClear
	OpEnableDepthTest
	OpDrawElements
	OpReadPixels
)

var opNames = [...]string{
	OpCreateShader:            "CreateShader",
	OpCompileShader:           "CompileShader",
	OpDeleteShader:            "DeleteShader",
	OpCreateProgram:           "CreateProgram",
	OpAttachShader:            "AttachShader",
	OpBindAttribLocation:      "BindAttribLocation",
	OpLinkProgram:             "LinkProgram",
	OpUseProgram:              "UseProgram",
	OpDeleteProgram:           "DeleteProgram",
	OpUniform1i:               "Uniform1i",
	OpUniform1f:               "Uniform1f",
	OpUniform3f:               "Uniform3f",
	OpUniformMatrix3:          "UniformMatrix3",
	OpUniformMatrix4:          "UniformMatrix4",
	OpGenVertexArray:          "GenVertexArray",
	OpBindVertexArray:         "BindVertexArray",
	OpDeleteVertexArray:       "DeleteVertexArray",
	OpGenBuffer:               "GenBuffer",
	OpBindBuffer:              "BindBuffer",
	OpBufferData:              "BufferData",
	OpDeleteBuffer:            "DeleteBuffer",
	OpVertexAttribPointer:     "VertexAttribPointer",
	OpEnableVertexAttribArray: "EnableVertexAttribArray",
	OpGenTexture:              "GenTexture",
	OpActiveTexture:           "ActiveTexture",
	OpBindTexture:             "BindTexture",
	OpTexImage2D:              "TexImage2D",
	OpDeleteTexture:           "DeleteTexture",
	OpViewport:                "Viewport",
	OpClearColor:              "ClearColor",
	OpClear:                   "Clear",
	OpEnableDepthTest:         "EnableDepthTest",
	OpDrawElements:            "DrawElements",
	OpReadPixels:              "ReadPixels",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Command is one recorded Device call. Only the fields relevant to Op are set.
type Command struct {
	Op        Op
	ID        uint32 // object handle or unit
	Target    BufferTarget
	Name      string // uniform or attribute name
	Loc       int32
	Int       int32
	Float     float32
	Vec       mgl32.Vec3
	Mat3      mgl32.Mat3
	Mat4      mgl32.Mat4
	Bytes     int
	Count     int32
	IndexType IndexType
	Stride    int32
	Offset    int
	Depth     DepthFunc
	Color     [4]float32
}

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Op.String())
	switch c.Op {
	case OpUniform1i:
		fmt.Fprintf(&b, "(%s=%d)", c.Name, c.Int)
	case OpUniform1f:
		fmt.Fprintf(&b, "(%s=%g)", c.Name, c.Float)
	case OpUniform3f:
		fmt.Fprintf(&b, "(%s=%v)", c.Name, c.Vec)
	case OpUniformMatrix3, OpUniformMatrix4:
		fmt.Fprintf(&b, "(%s)", c.Name)
	case OpBindBuffer:
		fmt.Fprintf(&b, "(%s, %d)", c.Target, c.ID)
	case OpBufferData:
		fmt.Fprintf(&b, "(%s, %d bytes)", c.Target, c.Bytes)
	case OpDrawElements:
		fmt.Fprintf(&b, "(%d, %s)", c.Count, c.IndexType)
	default:
		if c.ID != 0 {
			fmt.Fprintf(&b, "(%d)", c.ID)
		}
	}
	return b.String()
}

// Recorder is a Device that records commands instead of executing them.
// Handles are allocated from a single counter starting at 1; uniform
// locations are assigned per program in first-lookup order.
type Recorder struct {
	// GLSLVersion is returned by ShadingLanguageVersion.
	GLSLVersion string
	// CompileErrors maps a shader stage to an info log; a stage present in
	// the map fails to compile.
	CompileErrors map[ShaderStage]string
	// LinkError makes LinkProgram fail with this log when non-empty.
	LinkError string
	// Inactive lists uniform names reported as not found (-1).
	Inactive map[string]bool
	// Pixels is returned by ReadPixels.
	Pixels []byte

	commands []Command
	next     uint32
	stages   map[uint32]ShaderStage
	locs     map[string]int32
	names    map[int32]string
	live     map[uint32]Op
}

// NewRecorder returns a Recorder reporting GLSL 4.10.
func NewRecorder() *Recorder {
	return &Recorder{
		GLSLVersion: "4.10",
		stages:      make(map[uint32]ShaderStage),
		locs:        make(map[string]int32),
		names:       make(map[int32]string),
		live:        make(map[uint32]Op),
	}
}

var _ Device = (*Recorder)(nil)

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Reset drops recorded commands but keeps allocated handles and locations.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
}

// Count returns how many commands with op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the recorded commands with op, in order.
func (r *Recorder) Filter(op Op) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// LastUniform returns the last uniform command that set name.
func (r *Recorder) LastUniform(name string) (Command, bool) {
	for i := len(r.commands) - 1; i >= 0; i-- {
		c := r.commands[i]
		switch c.Op {
		case OpUniform1i, OpUniform1f, OpUniform3f, OpUniformMatrix3, OpUniformMatrix4:
			if c.Name == name {
				return c, true
			}
		}
	}
	return Command{}, false
}

// Live returns the number of handles created and not yet deleted.
func (r *Recorder) Live() int {
	return len(r.live)
}

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
}

func (r *Recorder) alloc(op Op) uint32 {
	r.next++
	if r.live == nil {
		r.live = make(map[uint32]Op)
	}
	r.live[r.next] = op
	r.record(Command{Op: op, ID: r.next})
	return r.next
}

func (r *Recorder) free(op Op, id uint32) {
	delete(r.live, id)
	r.record(Command{Op: op, ID: id})
}

func (r *Recorder) ShadingLanguageVersion() string {
	return r.GLSLVersion
}

func (r *Recorder) CreateShader(stage ShaderStage) uint32 {
	id := r.alloc(OpCreateShader)
	if r.stages == nil {
		r.stages = make(map[uint32]ShaderStage)
	}
	r.stages[id] = stage
	return id
}

func (r *Recorder) CompileShader(shader uint32, source string) (bool, string) {
	r.record(Command{Op: OpCompileShader, ID: shader, Bytes: len(source)})
	if msg, ok := r.CompileErrors[r.stages[shader]]; ok {
		return false, msg
	}
	return true, ""
}

func (r *Recorder) DeleteShader(shader uint32) { r.free(OpDeleteShader, shader) }

func (r *Recorder) CreateProgram() uint32 { return r.alloc(OpCreateProgram) }

func (r *Recorder) AttachShader(program, shader uint32) {
	r.record(Command{Op: OpAttachShader, ID: program, Int: int32(shader)})
}

func (r *Recorder) BindAttribLocation(program, index uint32, name string) {
	r.record(Command{Op: OpBindAttribLocation, ID: program, Int: int32(index), Name: name})
}

func (r *Recorder) LinkProgram(program uint32) (bool, string) {
	r.record(Command{Op: OpLinkProgram, ID: program})
	if r.LinkError != "" {
		return false, r.LinkError
	}
	return true, ""
}

func (r *Recorder) UseProgram(program uint32) {
	r.record(Command{Op: OpUseProgram, ID: program})
}

func (r *Recorder) DeleteProgram(program uint32) { r.free(OpDeleteProgram, program) }

func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	if r.Inactive[name] {
		return -1
	}
	if r.locs == nil {
		r.locs = make(map[string]int32)
		r.names = make(map[int32]string)
	}
	key := fmt.Sprintf("%d/%s", program, name)
	if loc, ok := r.locs[key]; ok {
		return loc
	}
	loc := int32(len(r.locs))
	r.locs[key] = loc
	r.names[loc] = name
	return loc
}

func (r *Recorder) Uniform1i(loc int32, v int32) {
	r.record(Command{Op: OpUniform1i, Loc: loc, Name: r.names[loc], Int: v})
}

func (r *Recorder) Uniform1f(loc int32, v float32) {
	r.record(Command{Op: OpUniform1f, Loc: loc, Name: r.names[loc], Float: v})
}

func (r *Recorder) Uniform3f(loc int32, v mgl32.Vec3) {
	r.record(Command{Op: OpUniform3f, Loc: loc, Name: r.names[loc], Vec: v})
}

func (r *Recorder) UniformMatrix3(loc int32, m mgl32.Mat3) {
	r.record(Command{Op: OpUniformMatrix3, Loc: loc, Name: r.names[loc], Mat3: m})
}

func (r *Recorder) UniformMatrix4(loc int32, m mgl32.Mat4) {
	r.record(Command{Op: OpUniformMatrix4, Loc: loc, Name: r.names[loc], Mat4: m})
}

func (r *Recorder) GenVertexArray() uint32 { return r.alloc(OpGenVertexArray) }

func (r *Recorder) BindVertexArray(vao uint32) {
	r.record(Command{Op: OpBindVertexArray, ID: vao})
}

func (r *Recorder) DeleteVertexArray(vao uint32) { r.free(OpDeleteVertexArray, vao) }

func (r *Recorder) GenBuffer() uint32 { return r.alloc(OpGenBuffer) }

func (r *Recorder) BindBuffer(target BufferTarget, buf uint32) {
	r.record(Command{Op: OpBindBuffer, Target: target, ID: buf})
}

func (r *Recorder) BufferData(target BufferTarget, data []byte) {
	r.record(Command{Op: OpBufferData, Target: target, Bytes: len(data)})
}

func (r *Recorder) DeleteBuffer(buf uint32) { r.free(OpDeleteBuffer, buf) }

func (r *Recorder) VertexAttribPointer(index uint32, components int32, stride int32, offset int) {
	r.record(Command{Op: OpVertexAttribPointer, ID: index, Count: components, Stride: stride, Offset: offset})
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record(Command{Op: OpEnableVertexAttribArray, ID: index})
}

func (r *Recorder) GenTexture() uint32 { return r.alloc(OpGenTexture) }

func (r *Recorder) ActiveTexture(unit uint32) {
	r.record(Command{Op: OpActiveTexture, ID: unit})
}

func (r *Recorder) BindTexture(tex uint32) {
	r.record(Command{Op: OpBindTexture, ID: tex})
}

func (r *Recorder) TexImage2D(img *image.RGBA) {
	r.record(Command{Op: OpTexImage2D, Bytes: len(img.Pix)})
}

func (r *Recorder) DeleteTexture(tex uint32) { r.free(OpDeleteTexture, tex) }

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record(Command{Op: OpViewport, Int: width, Count: height})
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record(Command{Op: OpClearColor, Color: [4]float32{red, green, blue, alpha}})
}

func (r *Recorder) Clear() { r.record(Command{Op: OpClear}) }

func (r *Recorder) EnableDepthTest(fn DepthFunc) {
	r.record(Command{Op: OpEnableDepthTest, Depth: fn})
}

func (r *Recorder) DrawElements(count int32, typ IndexType) {
	r.record(Command{Op: OpDrawElements, Count: count, IndexType: typ})
}

// ReadPixels returns Pixels when it matches the region size, otherwise
// zeroed pixels.
func (r *Recorder) ReadPixels(x, y, width, height int32) []byte {
	r.record(Command{Op: OpReadPixels, Int: width, Count: height})
	n := int(width) * int(height) * 4
	if n < 0 {
		n = 0
	}
	if len(r.Pixels) == n {
		return append([]byte(nil), r.Pixels...)
	}
	return make([]byte, n)
}
