package modelrender

import (
	"fmt"

	"modelbins/internal/sim"

	"github.com/go-gl/mathgl/mgl32"
)

// recorder is a StateDevice and Submitter that logs every call.
type recorder struct {
	calls          []string
	submits        []submission
	restartSupport bool
}

type submission struct {
	model     *sim.Model
	transform mgl32.Mat4
	alpha     float32
}

func (r *recorder) BindModelAtlases(t sim.ModelType) {
	r.calls = append(r.calls, "atlas:"+t.String())
}
func (r *recorder) PushPolygonState() { r.calls = append(r.calls, "push-polygon") }
func (r *recorder) PopPolygonState()  { r.calls = append(r.calls, "pop-polygon") }
func (r *recorder) SetCullFace(enabled bool) {
	r.calls = append(r.calls, fmt.Sprintf("cull:%v", enabled))
}
func (r *recorder) SupportsPrimitiveRestart() bool { return r.restartSupport }
func (r *recorder) EnablePrimitiveRestart(index uint32) {
	r.calls = append(r.calls, fmt.Sprintf("restart:%#x", index))
}

func (r *recorder) Submit(model *sim.Model, transform mgl32.Mat4, alpha float32) {
	r.submits = append(r.submits, submission{model: model, transform: transform, alpha: alpha})
}

// countingFamily counts hook invocations and records the ids it drew.
type countingFamily struct {
	pushes, pops int
	order        []sim.Kind
	drawn        map[sim.ObjectID]int
	alphas       map[sim.ObjectID]float32
}

func newCountingFamily() *countingFamily {
	return &countingFamily{
		drawn:  make(map[sim.ObjectID]int),
		alphas: make(map[sim.ObjectID]float32),
	}
}

func (c *countingFamily) PushRenderState() { c.pushes++ }
func (c *countingFamily) PopRenderState()  { c.pops++ }
func (c *countingFamily) DrawUnit(u *sim.Unit) {
	c.order = append(c.order, sim.KindUnit)
	c.drawn[u.ID]++
}
func (c *countingFamily) DrawFeature(f *sim.Feature, alpha float32) {
	c.order = append(c.order, sim.KindFeature)
	c.drawn[f.ID]++
	c.alphas[f.ID] = alpha
}
func (c *countingFamily) DrawProjectile(p *sim.Projectile) {
	c.order = append(c.order, sim.KindProjectile)
	c.drawn[p.ID]++
}

var (
	modelA = &sim.Model{Name: "armcom", Type: sim.ModelTypeS3O, TextureType: 1}
	modelB = &sim.Model{Name: "corcom", Type: sim.ModelTypeS3O, TextureType: 2}
	model3 = &sim.Model{Name: "tree", Type: sim.ModelType3DO, TextureType: 7}
)
