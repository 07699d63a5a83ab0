// Package gbuffer manages the multi-attachment render target models are
// drawn into on the deferred shading path.
package gbuffer

import (
	"errors"
	"fmt"
	"image"
	"io"

	"modelbins/internal/logx"

	"golang.org/x/image/tiff"
)

// Slot names one attachment of the buffer.
type Slot int

const (
	SlotNormal   Slot = iota // shading (not geometric) normals
	SlotDiffuse              // diffuse texture fragments
	SlotSpecular             // specular texture fragments
	SlotEmissive             // emissive texture fragments
	SlotMisc                 // custom per-material data
	SlotDepth                // fragment depth; must stay last
	SlotCount
)

func (s Slot) String() string {
	switch s {
	case SlotNormal:
		return "normal"
	case SlotDiffuse:
		return "diffuse"
	case SlotSpecular:
		return "specular"
	case SlotEmissive:
		return "emissive"
	case SlotMisc:
		return "misc"
	case SlotDepth:
		return "depth"
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// Attachment is a framebuffer attachment point. Values match OpenGL.
type Attachment uint32

const (
	ColorAttachment0 Attachment = 0x8CE0
	DepthAttachment  Attachment = 0x8D00
)

var (
	ErrAlreadyBound  = errors.New("gbuffer: already bound")
	ErrNotBound      = errors.New("gbuffer: not bound")
	ErrDead          = errors.New("gbuffer: buffer was killed")
	ErrNoAttachments = errors.New("gbuffer: no attachments")
)

// Driver performs the graphics API calls for a Buffer.
type Driver interface {
	GenFramebuffer() uint32
	DeleteFramebuffer(fbo uint32)
	// BindFramebuffer binds fbo for drawing; 0 restores the default framebuffer.
	BindFramebuffer(fbo uint32)
	// CreateTexture allocates storage for slot at size, in the format the slot needs.
	CreateTexture(slot Slot, size image.Point) uint32
	DeleteTexture(tex uint32)
	// AttachTexture attaches tex to the bound framebuffer; tex 0 detaches.
	AttachTexture(at Attachment, tex uint32)
	DrawBuffers(ats []Attachment)
	// CheckStatus reports why the bound framebuffer is incomplete, or nil.
	CheckStatus() error
	Clear()
	ViewportSize() image.Point
	// ReadPixels reads an RGBA8 colour attachment of the bound framebuffer,
	// bottom row first.
	ReadPixels(at Attachment, size image.Point) []byte
}

// Buffer is an offscreen render target with SlotCount attachments.
// At most one Bind may be active at a time.
type Buffer struct {
	name string
	drv  Driver

	fbo         uint32
	textures    [SlotCount]uint32
	attachments [SlotCount]Attachment

	prevSize image.Point
	currSize image.Point

	dead  bool
	bound bool
}

// New creates a buffer without attachments. Call Create or Update to
// allocate them.
func New(name string, drv Driver) *Buffer {
	b := &Buffer{name: name, drv: drv}
	for i := range b.attachments {
		b.attachments[i] = ColorAttachment0 + Attachment(i)
	}
	b.attachments[SlotDepth] = DepthAttachment
	b.fbo = drv.GenFramebuffer()
	return b
}

func (b *Buffer) Name() string { return b.name }

// Valid reports whether the framebuffer object exists.
func (b *Buffer) Valid() bool { return b.fbo != 0 && !b.dead }

// HasAttachments reports whether textures are currently allocated.
func (b *Buffer) HasAttachments() bool { return b.textures[0] != 0 }

func (b *Buffer) Bound() bool { return b.bound }

// FramebufferName returns the driver's framebuffer object name.
func (b *Buffer) FramebufferName() uint32 { return b.fbo }

// Texture returns the texture name backing slot, 0 when detached.
func (b *Buffer) Texture(s Slot) uint32 { return b.textures[s] }

// Attachment returns the attachment point slot is bound to.
func (b *Buffer) Attachment(s Slot) Attachment { return b.attachments[s] }

func (b *Buffer) CurrSize() image.Point { return b.currSize }
func (b *Buffer) PrevSize() image.Point { return b.prevSize }

// WantedSize is the viewport size when allowed, zero otherwise.
func (b *Buffer) WantedSize(allowed bool) image.Point {
	if !allowed {
		return image.Point{}
	}
	return b.drv.ViewportSize()
}

// Create allocates attachments of the given size. It returns false when the
// driver rejects the configuration; the buffer is then left without
// attachments.
func (b *Buffer) Create(size image.Point) bool {
	if !b.Valid() || b.bound {
		return false
	}
	if size.X <= 0 || size.Y <= 0 {
		logx.Logger().Warn("gbuffer size rejected", "name", b.name, "size", size)
		return false
	}
	if b.HasAttachments() {
		b.DetachTextures(true)
	}

	b.drv.BindFramebuffer(b.fbo)
	for s := Slot(0); s < SlotCount; s++ {
		b.textures[s] = b.drv.CreateTexture(s, size)
		b.drv.AttachTexture(b.attachments[s], b.textures[s])
	}
	b.drv.DrawBuffers(b.attachments[:SlotDepth])
	err := b.drv.CheckStatus()
	b.drv.BindFramebuffer(0)

	if err != nil {
		logx.Logger().Warn("gbuffer incomplete", "name", b.name, "size", size, "err", err)
		b.DetachTextures(true)
		return false
	}

	b.prevSize, b.currSize = b.currSize, size
	logx.Logger().Info("gbuffer created", "name", b.name, "size", size)
	return true
}

// Update reallocates the attachments when init is set, when there are none,
// or when the wanted size differs from the current one. It returns whether a
// reallocation happened; a failed reallocation leaves HasAttachments false.
func (b *Buffer) Update(init bool) bool {
	if !b.Valid() {
		return false
	}
	wanted := b.WantedSize(true)
	if !init && b.HasAttachments() && wanted == b.currSize {
		return false
	}
	return b.Create(wanted)
}

// DetachTextures releases the attachments but keeps the framebuffer. With
// init set the current size is kept so the next Create records it as the
// previous size.
func (b *Buffer) DetachTextures(init bool) {
	if !b.HasAttachments() {
		return
	}
	if !b.bound {
		b.drv.BindFramebuffer(b.fbo)
	}
	for s := Slot(0); s < SlotCount; s++ {
		b.drv.AttachTexture(b.attachments[s], 0)
		b.drv.DeleteTexture(b.textures[s])
		b.textures[s] = 0
	}
	if !b.bound {
		b.drv.BindFramebuffer(0)
	}
	if !init {
		b.prevSize, b.currSize = b.currSize, image.Point{}
	}
}

// Bind makes the buffer the draw target.
func (b *Buffer) Bind() error {
	if b.dead {
		return ErrDead
	}
	if b.bound {
		return ErrAlreadyBound
	}
	b.drv.BindFramebuffer(b.fbo)
	b.bound = true
	return nil
}

// Unbind restores the default framebuffer.
func (b *Buffer) Unbind() error {
	if b.dead {
		return ErrDead
	}
	if !b.bound {
		return ErrNotBound
	}
	b.drv.BindFramebuffer(0)
	b.bound = false
	return nil
}

// MustBind is Bind that panics on misuse.
func (b *Buffer) MustBind() {
	if err := b.Bind(); err != nil {
		panic(fmt.Errorf("%s: %w", b.name, err))
	}
}

// MustUnbind is Unbind that panics on misuse.
func (b *Buffer) MustUnbind() {
	if err := b.Unbind(); err != nil {
		panic(fmt.Errorf("%s: %w", b.name, err))
	}
}

// Clear clears every attachment.
func (b *Buffer) Clear() {
	if !b.Valid() || !b.HasAttachments() {
		return
	}
	if b.bound {
		b.drv.Clear()
		return
	}
	b.MustBind()
	b.drv.Clear()
	b.MustUnbind()
}

// Kill releases all resources. The buffer cannot be used afterwards.
func (b *Buffer) Kill() {
	if b.dead {
		return
	}
	if b.bound {
		b.drv.BindFramebuffer(0)
		b.bound = false
	}
	b.DetachTextures(false)
	if b.fbo != 0 {
		b.drv.DeleteFramebuffer(b.fbo)
		b.fbo = 0
	}
	b.dead = true
}

// DumpAttachment writes a colour attachment to w as TIFF.
func (b *Buffer) DumpAttachment(s Slot, w io.Writer) error {
	if b.dead {
		return ErrDead
	}
	if !b.HasAttachments() {
		return ErrNoAttachments
	}
	if s < 0 || s >= SlotDepth {
		return fmt.Errorf("gbuffer: cannot dump %s attachment", s)
	}

	size := b.currSize
	wasBound := b.bound
	if !wasBound {
		b.drv.BindFramebuffer(b.fbo)
	}
	pix := b.drv.ReadPixels(b.attachments[s], size)
	if !wasBound {
		b.drv.BindFramebuffer(0)
	}
	stride := size.X * 4
	if len(pix) < stride*size.Y {
		return fmt.Errorf("gbuffer: short read of %s: %d bytes", s, len(pix))
	}

	img := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		src := pix[(size.Y-1-y)*stride : (size.Y-y)*stride]
		copy(img.Pix[y*img.Stride:], src)
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("gbuffer: encode %s: %w", s, err)
	}
	return nil
}
