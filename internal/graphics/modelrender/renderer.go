// Package modelrender sorts drawable world objects into per-family render
// bins so each model family sets up its GPU state once per frame.
package modelrender

import (
	"modelbins/internal/profiling"
	"modelbins/internal/sim"
)

// Renderer holds the render bins of one model family. Units, features and
// projectiles are binned by their model's texture type.
//
// Features are double-buffered: SwapFeatures exchanges the live bins with a
// saved generation so a later pass can draw the previous frame's set.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	modelType sim.ModelType
	family    Family

	units         binMap[*sim.Unit]
	features      binMap[featureEntry]
	featuresSaved binMap[featureEntry]
	projectiles   binMap[*sim.Projectile]

	numUnits         int
	numFeatures      int
	numFeaturesSaved int
	numProjectiles   int

	drawTrack string
}

// NewRenderer creates an empty renderer drawing through family.
func NewRenderer(t sim.ModelType, family Family) *Renderer {
	return &Renderer{
		modelType:     t,
		family:        family,
		units:         make(binMap[*sim.Unit]),
		features:      make(binMap[featureEntry]),
		featuresSaved: make(binMap[featureEntry]),
		projectiles:   make(binMap[*sim.Projectile]),
		drawTrack:     "modelrender.Draw." + t.String(),
	}
}

// ModelType returns the family this renderer draws.
func (r *Renderer) ModelType() sim.ModelType { return r.modelType }

// Family returns the variant supplying render state and draw calls.
func (r *Renderer) Family() Family { return r.family }

// Draw draws every live object of the family between one push and one pop
// of the family's render state. Kinds are drawn units first, then features,
// then projectiles; order within a kind is unspecified.
func (r *Renderer) Draw() {
	defer profiling.Track(r.drawTrack)()

	r.family.PushRenderState()

	for _, bin := range r.units {
		for _, u := range bin.items {
			r.family.DrawUnit(u)
		}
	}
	for _, bin := range r.features {
		for _, e := range bin.items {
			r.family.DrawFeature(e.feature, e.alpha)
		}
	}
	for _, bin := range r.projectiles {
		for _, p := range bin.items {
			r.family.DrawProjectile(p)
		}
	}

	r.family.PopRenderState()

	profiling.Add("modelrender.objects", r.numUnits+r.numFeatures+r.numProjectiles)
}

// DrawFeatures draws only the live features, inside the family's render state.
func (r *Renderer) DrawFeatures() {
	if r.numFeatures == 0 {
		return
	}
	r.family.PushRenderState()
	for _, bin := range r.features {
		for _, e := range bin.items {
			r.family.DrawFeature(e.feature, e.alpha)
		}
	}
	r.family.PopRenderState()
}

// AddUnit registers u in the bin of its texture type. Adding twice is a no-op.
func (r *Renderer) AddUnit(u *sim.Unit) {
	if u == nil || u.Model == nil {
		return
	}
	if r.units.add(u.Model.TextureType, u.ID, u) {
		r.numUnits++
	}
}

// DelUnit unregisters u. Deleting an absent unit is a no-op.
func (r *Renderer) DelUnit(u *sim.Unit) {
	if u == nil || u.Model == nil {
		return
	}
	if r.units.del(u.Model.TextureType, u.ID) {
		r.numUnits--
	}
}

// AddFeature registers f at opacity alpha, or updates the stored opacity if
// f is already in the live bins.
func (r *Renderer) AddFeature(f *sim.Feature, alpha float32) {
	if f == nil || f.Model == nil {
		return
	}
	tex := f.Model.TextureType
	if e, ok := r.features.get(tex, f.ID); ok {
		e.alpha = alpha
		return
	}
	r.features.add(tex, f.ID, featureEntry{feature: f, alpha: alpha})
	r.numFeatures++
}

// DelFeature removes f from both the live and the saved bins, so a dead
// feature cannot linger in the snapshot.
func (r *Renderer) DelFeature(f *sim.Feature) {
	if f == nil || f.Model == nil {
		return
	}
	tex := f.Model.TextureType
	if r.features.del(tex, f.ID) {
		r.numFeatures--
	}
	if r.featuresSaved.del(tex, f.ID) {
		r.numFeaturesSaved--
	}
}

// SwapFeatures exchanges the live and saved feature generations.
func (r *Renderer) SwapFeatures() {
	r.features, r.featuresSaved = r.featuresSaved, r.features
	r.numFeatures, r.numFeaturesSaved = r.numFeaturesSaved, r.numFeatures
}

// AddProjectile registers p in the bin of its texture type. Adding twice is a no-op.
func (r *Renderer) AddProjectile(p *sim.Projectile) {
	if p == nil || p.Model == nil {
		return
	}
	if r.projectiles.add(p.Model.TextureType, p.ID, p) {
		r.numProjectiles++
	}
}

// DelProjectile unregisters p. Deleting an absent projectile is a no-op.
func (r *Renderer) DelProjectile(p *sim.Projectile) {
	if p == nil || p.Model == nil {
		return
	}
	if r.projectiles.del(p.Model.TextureType, p.ID) {
		r.numProjectiles--
	}
}

// Clear drops every registration, live and saved.
func (r *Renderer) Clear() {
	clear(r.units)
	clear(r.features)
	clear(r.featuresSaved)
	clear(r.projectiles)
	r.numUnits, r.numFeatures, r.numFeaturesSaved, r.numProjectiles = 0, 0, 0, 0
}

func (r *Renderer) NumUnits() int         { return r.numUnits }
func (r *Renderer) NumFeatures() int      { return r.numFeatures }
func (r *Renderer) NumFeaturesSaved() int { return r.numFeaturesSaved }
func (r *Renderer) NumProjectiles() int   { return r.numProjectiles }

// NumBins returns how many texture-type bins exist for a kind. Saved
// features are not included.
func (r *Renderer) NumBins(k sim.Kind) int {
	switch k {
	case sim.KindUnit:
		return len(r.units)
	case sim.KindFeature:
		return len(r.features)
	case sim.KindProjectile:
		return len(r.projectiles)
	}
	return 0
}

// HasBin reports whether a live bin exists for kind k and texture type tex.
func (r *Renderer) HasBin(k sim.Kind, tex int) bool {
	switch k {
	case sim.KindUnit:
		_, ok := r.units[tex]
		return ok
	case sim.KindFeature:
		_, ok := r.features[tex]
		return ok
	case sim.KindProjectile:
		_, ok := r.projectiles[tex]
		return ok
	}
	return false
}

// Units returns the units binned under texture type tex, or nil when that
// bin does not exist. The slice is owned by the renderer and is only valid
// until the next Add or Del.
func (r *Renderer) Units(tex int) []*sim.Unit {
	if s, ok := r.units[tex]; ok {
		return s.items
	}
	return nil
}

// HasUnit reports whether u is registered.
func (r *Renderer) HasUnit(u *sim.Unit) bool {
	if u == nil || u.Model == nil {
		return false
	}
	_, ok := r.units.get(u.Model.TextureType, u.ID)
	return ok
}

// HasProjectile reports whether p is registered.
func (r *Renderer) HasProjectile(p *sim.Projectile) bool {
	if p == nil || p.Model == nil {
		return false
	}
	_, ok := r.projectiles.get(p.Model.TextureType, p.ID)
	return ok
}

// FeatureAlpha returns the opacity f is registered at in the live bins.
func (r *Renderer) FeatureAlpha(f *sim.Feature) (float32, bool) {
	return lookupAlpha(r.features, f)
}

// SavedFeatureAlpha returns the opacity f is registered at in the saved bins.
func (r *Renderer) SavedFeatureAlpha(f *sim.Feature) (float32, bool) {
	return lookupAlpha(r.featuresSaved, f)
}

func lookupAlpha(b binMap[featureEntry], f *sim.Feature) (float32, bool) {
	if f == nil || f.Model == nil {
		return 0, false
	}
	e, ok := b.get(f.Model.TextureType, f.ID)
	if !ok {
		return 0, false
	}
	return e.alpha, true
}
