package modelrender

import (
	"modelbins/internal/logx"
	"modelbins/internal/sim"

	"github.com/go-gl/mathgl/mgl32"
)

// RestartIndex is the primitive-restart index S3O meshes are built with.
const RestartIndex = 0xFFFFFFFF

// Family supplies the family-specific half of a Renderer: render state set
// up around a batch and the draw call for one object.
type Family interface {
	PushRenderState()
	PopRenderState()
	DrawUnit(u *sim.Unit)
	DrawFeature(f *sim.Feature, alpha float32)
	DrawProjectile(p *sim.Projectile)
}

// StateDevice is the GPU state a family may touch while drawing.
type StateDevice interface {
	// BindModelAtlases binds the shared texture atlases of a family.
	BindModelAtlases(t sim.ModelType)
	// PushPolygonState saves face-culling state; PopPolygonState restores it.
	PushPolygonState()
	PopPolygonState()
	SetCullFace(enabled bool)
	SupportsPrimitiveRestart() bool
	EnablePrimitiveRestart(index uint32)
}

// Submitter issues the mesh draw for one object.
type Submitter interface {
	Submit(model *sim.Model, transform mgl32.Mat4, alpha float32)
}

// NewFamily returns the variant for t. Unknown families get a variant that
// draws nothing.
func NewFamily(t sim.ModelType, dev StateDevice, sub Submitter) Family {
	switch t {
	case sim.ModelType3DO:
		return &family3DO{dev: dev, submitDrawer: submitDrawer{sub: sub}}
	case sim.ModelTypeS3O:
		return &familyS3O{dev: dev, submitDrawer: submitDrawer{sub: sub}}
	case sim.ModelTypeOBJ, sim.ModelTypeASS:
		return &familyPlain{submitDrawer: submitDrawer{sub: sub}}
	default:
		return familyNone{}
	}
}

// submitDrawer draws objects by handing their transforms to a Submitter.
type submitDrawer struct {
	sub Submitter
}

func (d submitDrawer) DrawUnit(u *sim.Unit) {
	d.sub.Submit(u.Model, sim.Transform(u.Pos, u.Heading), 1)
}

func (d submitDrawer) DrawFeature(f *sim.Feature, alpha float32) {
	d.sub.Submit(f.Model, sim.Transform(f.Pos, f.Heading), alpha)
}

func (d submitDrawer) DrawProjectile(p *sim.Projectile) {
	d.sub.Submit(p.Model, sim.Transform(p.Pos, p.Heading), 1)
}

// 3DO models are two-sided and textured from shared atlases.
type family3DO struct {
	dev StateDevice
	submitDrawer
}

func (f *family3DO) PushRenderState() {
	f.dev.BindModelAtlases(sim.ModelType3DO)
	f.dev.PushPolygonState()
	f.dev.SetCullFace(false)
}

func (f *family3DO) PopRenderState() {
	f.dev.PopPolygonState()
}

type familyS3O struct {
	dev StateDevice
	submitDrawer
}

func (f *familyS3O) PushRenderState() {
	if f.dev.SupportsPrimitiveRestart() {
		f.dev.EnablePrimitiveRestart(RestartIndex)
	}
}

func (f *familyS3O) PopRenderState() {}

func (f *familyS3O) DrawUnit(u *sim.Unit) {
	logx.Logger().Debug("draw model", "family", "s3o", "kind", "unit", "id", u.ID)
	f.submitDrawer.DrawUnit(u)
}

func (f *familyS3O) DrawFeature(ft *sim.Feature, alpha float32) {
	logx.Logger().Debug("draw model", "family", "s3o", "kind", "feature", "id", ft.ID)
	f.submitDrawer.DrawFeature(ft, alpha)
}

func (f *familyS3O) DrawProjectile(p *sim.Projectile) {
	logx.Logger().Debug("draw model", "family", "s3o", "kind", "projectile", "id", p.ID)
	f.submitDrawer.DrawProjectile(p)
}

// familyPlain draws without any family state (OBJ, ASS).
type familyPlain struct {
	submitDrawer
}

func (familyPlain) PushRenderState() {}
func (familyPlain) PopRenderState()  {}

// familyNone is the placeholder for unsupported formats: objects stay
// invisible instead of breaking the frame.
type familyNone struct{}

func (familyNone) PushRenderState()                  {}
func (familyNone) PopRenderState()                   {}
func (familyNone) DrawUnit(*sim.Unit)                {}
func (familyNone) DrawFeature(*sim.Feature, float32) {}
func (familyNone) DrawProjectile(*sim.Projectile)    {}
