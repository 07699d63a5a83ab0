package graphics

import (
	"fmt"
	"image"

	"modelbins/internal/config"
	"modelbins/internal/graphics/gbuffer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLGBufferDriver implements gbuffer.Driver on OpenGL 4.1 core.
type GLGBufferDriver struct{}

func (GLGBufferDriver) GenFramebuffer() uint32 {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	return fbo
}

func (GLGBufferDriver) DeleteFramebuffer(fbo uint32) {
	gl.DeleteFramebuffers(1, &fbo)
}

func (GLGBufferDriver) BindFramebuffer(fbo uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
}

func (GLGBufferDriver) CreateTexture(slot gbuffer.Slot, size image.Point) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	w, h := int32(size.X), int32(size.Y)
	switch slot {
	case gbuffer.SlotDepth:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, w, h, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	case gbuffer.SlotNormal:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, w, h, 0, gl.RGBA, gl.FLOAT, nil)
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (GLGBufferDriver) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func (GLGBufferDriver) AttachTexture(at gbuffer.Attachment, tex uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, uint32(at), gl.TEXTURE_2D, tex, 0)
}

func (GLGBufferDriver) DrawBuffers(ats []gbuffer.Attachment) {
	bufs := make([]uint32, len(ats))
	for i, at := range ats {
		bufs[i] = uint32(at)
	}
	gl.DrawBuffers(int32(len(bufs)), &bufs[0])
}

func (GLGBufferDriver) CheckStatus() error {
	switch status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status {
	case gl.FRAMEBUFFER_COMPLETE:
		return nil
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return fmt.Errorf("incomplete attachment")
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return fmt.Errorf("missing attachment")
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return fmt.Errorf("unsupported attachment formats")
	default:
		return fmt.Errorf("framebuffer status 0x%x", status)
	}
}

func (GLGBufferDriver) Clear() {
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (GLGBufferDriver) ViewportSize() image.Point {
	w, h := config.GetViewport()
	return image.Pt(w, h)
}

func (GLGBufferDriver) ReadPixels(at gbuffer.Attachment, size image.Point) []byte {
	pix := make([]byte, size.X*size.Y*4)
	gl.ReadBuffer(uint32(at))
	gl.ReadPixels(0, 0, int32(size.X), int32(size.Y), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}

// BlitToScreen copies one colour attachment of b to the default framebuffer.
func BlitToScreen(b *gbuffer.Buffer, slot gbuffer.Slot, viewport image.Point) {
	size := b.CurrSize()
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, b.FramebufferName())
	gl.ReadBuffer(uint32(b.Attachment(slot)))
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(
		0, 0, int32(size.X), int32(size.Y),
		0, 0, int32(viewport.X), int32(viewport.Y),
		gl.COLOR_BUFFER_BIT, gl.LINEAR,
	)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

var _ gbuffer.Driver = GLGBufferDriver{}
