package modelrender

import (
	"testing"

	"modelbins/internal/sim"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRendererKnownFamilies(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(rec, rec)

	for _, mt := range sim.ModelTypes {
		r := reg.GetRenderer(mt)
		require.NotNil(t, r)
		assert.Equal(t, mt, r.ModelType())
	}
	assert.Len(t, reg.Renderers(), len(sim.ModelTypes)+1)
}

func TestGetRendererUnknownFallsBack(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(rec, rec)

	r := reg.GetRenderer(sim.ModelType(99))
	require.NotNil(t, r)
	assert.Same(t, r, reg.GetRenderer(sim.ModelTypeOther))
	assert.Equal(t, sim.ModelTypeOther, r.ModelType())

	// objects of unknown families are tracked but never drawn
	odd := &sim.Model{Name: "blob", Type: sim.ModelType(99)}
	reg.AddUnit(&sim.Unit{ID: 1, Model: odd})
	assert.Equal(t, 1, r.NumUnits())
	r.Draw()
	assert.Empty(t, rec.submits)
	assert.Empty(t, rec.calls, "fallback sets no render state")
}

func TestRegistryRoutesByModelType(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(rec, rec)
	s3o := &sim.Model{Type: sim.ModelTypeS3O, TextureType: 1}
	tdo := &sim.Model{Type: sim.ModelType3DO, TextureType: 1}

	u := &sim.Unit{ID: 1, Model: s3o}
	f := &sim.Feature{ID: 2, Model: tdo}
	p := &sim.Projectile{ID: 3, Model: s3o}
	reg.AddUnit(u)
	reg.AddFeature(f, 0.5)
	reg.AddProjectile(p)

	assert.Equal(t, 1, reg.GetRenderer(sim.ModelTypeS3O).NumUnits())
	assert.Equal(t, 1, reg.GetRenderer(sim.ModelTypeS3O).NumProjectiles())
	assert.Equal(t, 1, reg.GetRenderer(sim.ModelType3DO).NumFeatures())
	assert.Zero(t, reg.GetRenderer(sim.ModelType3DO).NumUnits())
	assert.Equal(t, Totals{Units: 1, Features: 1, Projectiles: 1}, reg.Totals())

	reg.SwapFeatures()
	assert.Equal(t, Totals{Units: 1, FeaturesSaved: 1, Projectiles: 1}, reg.Totals())

	reg.DelFeature(f)
	reg.DelUnit(u)
	reg.DelProjectile(p)
	assert.Equal(t, Totals{}, reg.Totals())

	reg.AddUnit(nil)
	reg.AddUnit(&sim.Unit{ID: 4})
	assert.Equal(t, Totals{}, reg.Totals())
}

func TestModelSwapMovesUnitBetweenFamilies(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(rec, rec)
	u := &sim.Unit{ID: 1, Model: &sim.Model{Type: sim.ModelTypeS3O}}

	reg.AddUnit(u)
	reg.DelUnit(u)
	u.Model = &sim.Model{Type: sim.ModelTypeOBJ}
	reg.AddUnit(u)

	assert.Zero(t, reg.GetRenderer(sim.ModelTypeS3O).NumUnits())
	assert.True(t, reg.GetRenderer(sim.ModelTypeOBJ).HasUnit(u))
}

func TestRegistryDispose(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(rec, rec)
	m := &sim.Model{Type: sim.ModelTypeASS}
	reg.AddUnit(&sim.Unit{ID: 1, Model: m})
	reg.AddFeature(&sim.Feature{ID: 2, Model: m}, 1)
	reg.SwapFeatures()

	reg.Dispose()
	assert.Equal(t, Totals{}, reg.Totals())
}

func Test3DORenderState(t *testing.T) {
	rec := &recorder{}
	r := NewRenderer(sim.ModelType3DO, NewFamily(sim.ModelType3DO, rec, rec))
	r.AddUnit(&sim.Unit{ID: 1, Model: model3, Pos: mgl32.Vec3{1, 2, 3}})

	r.Draw()

	assert.Equal(t, []string{"atlas:3do", "push-polygon", "cull:false", "pop-polygon"}, rec.calls)
	require.Len(t, rec.submits, 1)
	assert.Same(t, model3, rec.submits[0].model)
	assert.Equal(t, float32(1), rec.submits[0].alpha)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, rec.submits[0].transform.Col(3).Vec3())
}

func TestS3ORenderStateRespectsSupport(t *testing.T) {
	rec := &recorder{restartSupport: true}
	NewRenderer(sim.ModelTypeS3O, NewFamily(sim.ModelTypeS3O, rec, rec)).Draw()
	assert.Equal(t, []string{"restart:0xffffffff"}, rec.calls)

	rec = &recorder{}
	NewRenderer(sim.ModelTypeS3O, NewFamily(sim.ModelTypeS3O, rec, rec)).Draw()
	assert.Empty(t, rec.calls)
}

func TestPlainFamiliesSetNoState(t *testing.T) {
	for _, mt := range []sim.ModelType{sim.ModelTypeOBJ, sim.ModelTypeASS} {
		t.Run(mt.String(), func(t *testing.T) {
			rec := &recorder{restartSupport: true}
			r := NewRenderer(mt, NewFamily(mt, rec, rec))
			m := &sim.Model{Type: mt}
			r.AddFeature(&sim.Feature{ID: 1, Model: m}, 0.25)
			r.AddProjectile(&sim.Projectile{ID: 2, Model: m})

			r.Draw()

			assert.Empty(t, rec.calls)
			require.Len(t, rec.submits, 2)
			assert.Equal(t, float32(0.25), rec.submits[0].alpha)
		})
	}
}

func TestRegistryAsSimListener(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(rec, rec)
	mgr := sim.NewManager(reg)

	tree := &sim.Model{Name: "tree", Type: sim.ModelType3DO, TextureType: 1}
	tank := &sim.Model{Name: "tank", Type: sim.ModelTypeS3O, TextureType: 2}
	shell := &sim.Model{Name: "shell", Type: sim.ModelTypeS3O, TextureType: 3}

	u := mgr.SpawnUnit(tank, mgl32.Vec3{}, 0)
	f := mgr.SpawnFeature(tree, mgl32.Vec3{}, 0.5)
	mgr.SpawnProjectile(shell, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0.5)
	assert.Equal(t, Totals{Units: 1, Features: 1, Projectiles: 1}, reg.Totals())

	mgr.Tick(1)
	alpha, ok := reg.GetRenderer(sim.ModelType3DO).FeatureAlpha(f)
	require.True(t, ok)
	assert.InDelta(t, 0.5, alpha, 1e-6)
	assert.Equal(t, Totals{Units: 1, Features: 1}, reg.Totals())

	mgr.Kill(u.ID)
	mgr.Tick(1)
	assert.Equal(t, Totals{}, reg.Totals())
}
