package renderer

import (
	"modelbins/internal/config"
	"modelbins/internal/graphics/gbuffer"
	"modelbins/internal/graphics/modelrender"
	"modelbins/internal/logx"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameSubmitter brackets the per-object submissions of one pass.
type FrameSubmitter interface {
	Begin(view, proj mgl32.Mat4, deferred bool)
	End()
}

// ModelPass draws every model family. With deferred shading on it draws
// into the G-buffer and hands the result to Present.
type ModelPass struct {
	Registry *modelrender.Registry
	Frame    FrameSubmitter
	// GBuffer may be nil, which forces forward drawing.
	GBuffer *gbuffer.Buffer
	Present func(b *gbuffer.Buffer)

	deferred bool
}

func (p *ModelPass) Init() error {
	p.deferred = false
	if p.GBuffer == nil || !config.DeferredShading() {
		return nil
	}
	if !p.GBuffer.Update(true) {
		logx.Logger().Warn("G-buffer unavailable, drawing models forward", "name", p.GBuffer.Name())
		return nil
	}
	p.deferred = true
	return nil
}

// Deferred reports whether models currently go through the G-buffer.
func (p *ModelPass) Deferred() bool { return p.deferred }

func (p *ModelPass) Render(ctx RenderContext) {
	if !p.deferred {
		p.Frame.Begin(ctx.View, ctx.Proj, false)
		p.Registry.Draw()
		p.Frame.End()
		return
	}

	p.GBuffer.MustBind()
	p.GBuffer.Clear()
	p.Frame.Begin(ctx.View, ctx.Proj, true)
	p.Registry.Draw()
	p.Frame.End()
	p.GBuffer.MustUnbind()

	if p.Present != nil {
		p.Present(p.GBuffer)
	}
}

func (p *ModelPass) SetViewport(width, height int) {
	if !p.deferred {
		return
	}
	if p.GBuffer.Update(false) {
		logx.Logger().Info("G-buffer resized", "size", p.GBuffer.CurrSize())
	}
	if !p.GBuffer.HasAttachments() {
		logx.Logger().Warn("G-buffer resize failed, drawing models forward")
		p.deferred = false
	}
}

func (p *ModelPass) Dispose() {
	p.Registry.Dispose()
	if p.GBuffer != nil {
		p.GBuffer.Kill()
	}
}

// SnapshotPass draws a frozen copy of the feature set, kept in the saved
// feature generation. Capture takes effect at the end of the frame.
type SnapshotPass struct {
	Registry *modelrender.Registry
	Frame    FrameSubmitter
	// Resync re-reports every live feature to the registry after the
	// live generation was swapped out.
	Resync func()

	pending bool
	active  bool
}

func (s *SnapshotPass) Init() error           { return nil }
func (s *SnapshotPass) Dispose()              {}
func (s *SnapshotPass) SetViewport(_, _ int)  {}
func (s *SnapshotPass) Active() bool          { return s.active }
func (s *SnapshotPass) SetActive(active bool) { s.active = active }

// Capture schedules a snapshot of the current features.
func (s *SnapshotPass) Capture() { s.pending = true }

func (s *SnapshotPass) Render(ctx RenderContext) {
	if !s.active {
		return
	}
	s.Frame.Begin(ctx.View, ctx.Proj, false)
	s.Registry.DrawSavedFeatures()
	s.Frame.End()
}

// EndFrame performs a pending capture. Register it with Renderer.OnEndFrame.
func (s *SnapshotPass) EndFrame() {
	if !s.pending {
		return
	}
	s.pending = false
	s.Registry.SwapFeatures()
	if s.Resync != nil {
		s.Resync()
	}
	s.active = true
	logx.Logger().Info("feature snapshot captured", "saved", s.Registry.Totals().FeaturesSaved)
}
