package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	View  mgl32.Mat4
	Proj  mgl32.Mat4
	DT    float64
	Frame uint64
}

// Renderable interface defines the lifecycle for render passes
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}

// Camera supplies the view and projection for a frame
type Camera interface {
	GetViewMatrix() mgl32.Mat4
	GetProjectionMatrix() mgl32.Mat4
	SetViewport(width, height int)
}
