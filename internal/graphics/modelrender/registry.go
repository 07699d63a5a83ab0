package modelrender

import (
	"modelbins/internal/logx"
	"modelbins/internal/sim"
)

// Totals are object counts summed over every family.
type Totals struct {
	Units         int
	Features      int
	FeaturesSaved int
	Projectiles   int
}

// Registry owns one Renderer per supported model family plus a fallback
// for everything else. It routes simulation notifications to the renderer
// of the object's family and implements sim.Listener.
type Registry struct {
	renderers []*Renderer
	byType    map[sim.ModelType]*Renderer
	fallback  *Renderer
}

// NewRegistry builds renderers for every family in sim.ModelTypes.
func NewRegistry(dev StateDevice, sub Submitter) *Registry {
	reg := &Registry{
		renderers: make([]*Renderer, 0, len(sim.ModelTypes)+1),
		byType:    make(map[sim.ModelType]*Renderer, len(sim.ModelTypes)),
	}
	for _, t := range sim.ModelTypes {
		r := NewRenderer(t, NewFamily(t, dev, sub))
		reg.renderers = append(reg.renderers, r)
		reg.byType[t] = r
	}
	reg.fallback = NewRenderer(sim.ModelTypeOther, NewFamily(sim.ModelTypeOther, dev, sub))
	reg.renderers = append(reg.renderers, reg.fallback)

	logx.Logger().Info("model renderers ready", "families", len(reg.byType))
	return reg
}

// GetRenderer returns the renderer for t. Unknown families share a renderer
// that draws nothing; the result is never nil.
func (reg *Registry) GetRenderer(t sim.ModelType) *Renderer {
	if r, ok := reg.byType[t]; ok {
		return r
	}
	return reg.fallback
}

// Renderers returns every renderer in draw order, fallback last.
func (reg *Registry) Renderers() []*Renderer {
	return reg.renderers
}

func (reg *Registry) rendererFor(m *sim.Model) *Renderer {
	if m == nil {
		return nil
	}
	r := reg.GetRenderer(m.Type)
	if r == reg.fallback {
		logx.Logger().Debug("model family has no renderer", "model", m.Name, "type", int(m.Type))
	}
	return r
}

func (reg *Registry) AddUnit(u *sim.Unit) {
	if u == nil {
		return
	}
	if r := reg.rendererFor(u.Model); r != nil {
		r.AddUnit(u)
	}
}

func (reg *Registry) DelUnit(u *sim.Unit) {
	if u == nil {
		return
	}
	if r := reg.rendererFor(u.Model); r != nil {
		r.DelUnit(u)
	}
}

func (reg *Registry) AddFeature(f *sim.Feature, alpha float32) {
	if f == nil {
		return
	}
	if r := reg.rendererFor(f.Model); r != nil {
		r.AddFeature(f, alpha)
	}
}

func (reg *Registry) DelFeature(f *sim.Feature) {
	if f == nil {
		return
	}
	if r := reg.rendererFor(f.Model); r != nil {
		r.DelFeature(f)
	}
}

func (reg *Registry) AddProjectile(p *sim.Projectile) {
	if p == nil {
		return
	}
	if r := reg.rendererFor(p.Model); r != nil {
		r.AddProjectile(p)
	}
}

func (reg *Registry) DelProjectile(p *sim.Projectile) {
	if p == nil {
		return
	}
	if r := reg.rendererFor(p.Model); r != nil {
		r.DelProjectile(p)
	}
}

// Draw draws every family in order.
func (reg *Registry) Draw() {
	for _, r := range reg.renderers {
		r.Draw()
	}
}

// DrawSavedFeatures draws the saved feature generation of every family by
// swapping it in, drawing, and swapping back.
func (reg *Registry) DrawSavedFeatures() {
	for _, r := range reg.renderers {
		if r.NumFeaturesSaved() == 0 {
			continue
		}
		r.SwapFeatures()
		r.DrawFeatures()
		r.SwapFeatures()
	}
}

// SwapFeatures swaps the live and saved feature generations of every family.
func (reg *Registry) SwapFeatures() {
	for _, r := range reg.renderers {
		r.SwapFeatures()
	}
}

// Totals sums the counters of every renderer.
func (reg *Registry) Totals() Totals {
	var t Totals
	for _, r := range reg.renderers {
		t.Units += r.NumUnits()
		t.Features += r.NumFeatures()
		t.FeaturesSaved += r.NumFeaturesSaved()
		t.Projectiles += r.NumProjectiles()
	}
	return t
}

// Dispose clears every renderer. The registry stays usable.
func (reg *Registry) Dispose() {
	for _, r := range reg.renderers {
		r.Clear()
	}
}

var _ sim.Listener = (*Registry)(nil)
