package graphics

import (
	"fmt"

	"modelbins/internal/graphics/text"
	"modelbins/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const fontVert = `#version 410 core
layout(location = 0) in vec4 vertex; // xy position, zw uv
uniform mat4 projection;
out vec2 uv;
void main() {
	gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
	uv = vertex.zw;
}
`

const fontFrag = `#version 410 core
in vec2 uv;
uniform sampler2D text;
uniform vec3 textColor;
out vec4 color;
void main() {
	color = vec4(textColor, texture(text, uv).r);
}
`

// FontRenderer draws text from a baked atlas in window pixel coordinates.
type FontRenderer struct {
	atlas      *text.Atlas
	texture    uint32
	shader     *Shader
	projection mgl32.Mat4
	vao, vbo   uint32
	verts      []float32
}

// NewFontRenderer uploads atlas and compiles the text program.
func NewFontRenderer(atlas *text.Atlas, width, height int) (*FontRenderer, error) {
	if atlas == nil || len(atlas.Glyphs) == 0 {
		return nil, fmt.Errorf("invalid font atlas")
	}
	shader, err := NewShaderSource(fontVert, fontFrag)
	if err != nil {
		return nil, err
	}
	fr := &FontRenderer{atlas: atlas, shader: shader}
	fr.SetViewport(width, height)

	img := atlas.Image
	gl.GenTextures(1, &fr.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fr.texture)
	// Ensure tight byte alignment for single-channel upload
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenVertexArrays(1, &fr.vao)
	gl.GenBuffers(1, &fr.vbo)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 4, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return fr, nil
}

// SetViewport rebuilds the pixel projection, origin top-left.
func (fr *FontRenderer) SetViewport(width, height int) {
	fr.projection = mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}

// LineHeight is the baseline spacing at scale.
func (fr *FontRenderer) LineHeight(scale float32) float32 { return fr.atlas.Line * scale }

// RenderLines draws lines top to bottom in one draw call, the first baseline at (x, y).
func (fr *FontRenderer) RenderLines(lines []string, x, y, scale float32, color mgl32.Vec3) {
	fr.verts = fr.verts[:0]
	for _, line := range lines {
		fr.verts = fr.atlas.Layout(fr.verts, line, x, y, scale)
		y += fr.LineHeight(scale)
	}
	if len(fr.verts) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	fr.shader.Use()
	fr.shader.SetVector3("textColor", color.X(), color.Y(), color.Z())
	fr.shader.SetMatrix4("projection", fr.projection)
	fr.shader.SetInt("text", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fr.texture)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)

	// orphan the buffer to avoid stalls on dynamic updates
	size := len(fr.verts) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(fr.verts))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(fr.verts)/4))
	profiling.Add("graphics.drawCalls", 1)

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (fr *FontRenderer) Dispose() {
	if fr.texture != 0 {
		gl.DeleteTextures(1, &fr.texture)
		fr.texture = 0
	}
	if fr.vbo != 0 {
		gl.DeleteBuffers(1, &fr.vbo)
		fr.vbo = 0
	}
	if fr.vao != 0 {
		gl.DeleteVertexArrays(1, &fr.vao)
		fr.vao = 0
	}
	fr.shader.Delete()
}
