package renderer

import (
	"modelbins/internal/profiling"
)

// Renderer orchestrates rendering via render passes
type Renderer struct {
	renderables []Renderable
	camera      Camera
	endFrame    []func()
	frame       uint64
}

// NewRenderer creates a new renderer with the given passes and initializes them in order
func NewRenderer(cam Camera, rs ...Renderable) (*Renderer, error) {
	renderer := &Renderer{
		renderables: rs,
		camera:      cam,
	}

	for i, r := range rs {
		if err := r.Init(); err != nil {
			// Dispose what was already initialized
			for j := i - 1; j >= 0; j-- {
				rs[j].Dispose()
			}
			return nil, err
		}
	}

	return renderer, nil
}

// OnEndFrame registers fn to run after every frame, in registration order
func (r *Renderer) OnEndFrame(fn func()) {
	r.endFrame = append(r.endFrame, fn)
}

// Render executes one frame
func (r *Renderer) Render(dt float64) {
	defer profiling.Track("renderer.Render")()

	ctx := RenderContext{
		View:  r.camera.GetViewMatrix(),
		Proj:  r.camera.GetProjectionMatrix(),
		DT:    dt,
		Frame: r.frame,
	}

	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}

	for _, fn := range r.endFrame {
		fn()
	}
	r.frame++
}

// Frame returns the number of frames rendered so far
func (r *Renderer) Frame() uint64 { return r.frame }

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// GetCamera returns the camera instance
func (r *Renderer) GetCamera() Camera {
	return r.camera
}

// UpdateViewport updates the camera and every pass with new viewport dimensions
func (r *Renderer) UpdateViewport(width, height int) {
	r.camera.SetViewport(width, height)
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}
