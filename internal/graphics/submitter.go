package graphics

import (
	"modelbins/internal/profiling"
	"modelbins/internal/sim"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const cubeVert = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aUV;
uniform mat4 model;
uniform mat4 view;
uniform mat4 proj;
out vec3 vNormal;
out vec2 vUV;
void main() {
	vNormal = mat3(model) * aNormal;
	vUV = aUV;
	gl_Position = proj * view * model * vec4(aPos, 1.0);
}
`

const cubeForwardFrag = `#version 410 core
in vec3 vNormal;
in vec2 vUV;
uniform sampler2D atlas;
uniform vec3 tint;
uniform float alpha;
out vec4 fragColor;
void main() {
	float light = 0.35 + 0.65 * max(dot(normalize(vNormal), normalize(vec3(0.4, 1.0, 0.3))), 0.0);
	fragColor = vec4(texture(atlas, vUV).rgb * tint * light, alpha);
}
`

const cubeDeferredFrag = `#version 410 core
in vec3 vNormal;
in vec2 vUV;
uniform sampler2D atlas;
uniform vec3 tint;
uniform float alpha;
layout(location = 0) out vec4 outNormal;
layout(location = 1) out vec4 outDiffuse;
layout(location = 2) out vec4 outSpecular;
layout(location = 3) out vec4 outEmissive;
layout(location = 4) out vec4 outMisc;
void main() {
	outNormal = vec4(normalize(vNormal) * 0.5 + 0.5, 1.0);
	outDiffuse = vec4(texture(atlas, vUV).rgb * tint, alpha);
	outSpecular = vec4(0.1, 0.1, 0.1, 1.0);
	outEmissive = vec4(0.0);
	outMisc = vec4(0.0);
}
`

// CubeSubmitter stands in for mesh submission: every object is drawn as a
// unit cube tinted by its model's texture type.
type CubeSubmitter struct {
	forward  *Shader
	deferred *Shader
	active   *Shader
	vao, vbo uint32

	view, proj mgl32.Mat4
}

func NewCubeSubmitter() *CubeSubmitter {
	return &CubeSubmitter{view: mgl32.Ident4(), proj: mgl32.Ident4()}
}

func (c *CubeSubmitter) Init() error {
	var err error
	if c.forward, err = NewShaderSource(cubeVert, cubeForwardFrag); err != nil {
		return err
	}
	if c.deferred, err = NewShaderSource(cubeVert, cubeDeferredFrag); err != nil {
		return err
	}
	c.active = c.forward

	verts := cubeVertices()
	gl.GenVertexArrays(1, &c.vao)
	gl.GenBuffers(1, &c.vbo)
	gl.BindVertexArray(c.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 8*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 8*4, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, 8*4, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)
	return nil
}

// Begin selects the program for this frame and uploads the camera.
func (c *CubeSubmitter) Begin(view, proj mgl32.Mat4, deferred bool) {
	c.view, c.proj = view, proj
	c.active = c.forward
	if deferred {
		c.active = c.deferred
	}
	c.active.Use()
	c.active.SetMatrix4("view", view)
	c.active.SetMatrix4("proj", proj)
	c.active.SetInt("atlas", 0)
	gl.BindVertexArray(c.vao)
}

// End unbinds the cube geometry.
func (c *CubeSubmitter) End() {
	gl.BindVertexArray(0)
}

func (c *CubeSubmitter) Submit(model *sim.Model, transform mgl32.Mat4, alpha float32) {
	tint := tintFor(model.TextureType)
	c.active.SetMatrix4("model", transform)
	c.active.SetVector3("tint", tint.X(), tint.Y(), tint.Z())
	c.active.SetFloat("alpha", alpha)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	profiling.Add("graphics.drawCalls", 1)
}

func (c *CubeSubmitter) Dispose() {
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
		c.vbo = 0
	}
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
	if c.forward != nil {
		c.forward.Delete()
	}
	if c.deferred != nil {
		c.deferred.Delete()
	}
}

// tintFor spreads texture types around the hue circle.
func tintFor(textureType int) mgl32.Vec3 {
	h := float32((textureType*47)%360) / 60
	x := 1 - mgl32.Abs(float32(int(h)%2)+(h-float32(int(h)))-1)
	switch int(h) {
	case 0:
		return mgl32.Vec3{1, x, 0.3}
	case 1:
		return mgl32.Vec3{x, 1, 0.3}
	case 2:
		return mgl32.Vec3{0.3, 1, x}
	case 3:
		return mgl32.Vec3{0.3, x, 1}
	case 4:
		return mgl32.Vec3{x, 0.3, 1}
	default:
		return mgl32.Vec3{1, 0.3, x}
	}
}

// cubeVertices returns a unit cube centred on the origin as 36 vertices of
// position, normal and uv.
func cubeVertices() []float32 {
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	corners := [6][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}}

	out := make([]float32, 0, 36*8)
	for _, f := range faces {
		for _, c := range corners {
			p := f.normal.Mul(0.5).
				Add(f.u.Mul(c[0] - 0.5)).
				Add(f.v.Mul(c[1] - 0.5))
			out = append(out, p.X(), p.Y(), p.Z(), f.normal.X(), f.normal.Y(), f.normal.Z(), c[0], c[1])
		}
	}
	return out
}
