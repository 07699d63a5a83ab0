package modelrender

import (
	"math/rand"
	"testing"

	"modelbins/internal/sim"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUnitIsIdempotent(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	u := &sim.Unit{ID: 1, Model: modelA}

	r.AddUnit(u)
	r.AddUnit(u)
	assert.Equal(t, 1, r.NumUnits())
	assert.True(t, r.HasUnit(u))

	r.DelUnit(u)
	r.DelUnit(u)
	assert.Equal(t, 0, r.NumUnits())
	assert.False(t, r.HasUnit(u))
	assert.Equal(t, 0, r.NumBins(sim.KindUnit))
}

func TestDelAbsentLeavesStateUnchanged(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	u1 := &sim.Unit{ID: 1, Model: modelA}
	r.AddUnit(u1)

	r.DelUnit(&sim.Unit{ID: 2, Model: modelA})
	r.DelUnit(&sim.Unit{ID: 3, Model: modelB})
	r.DelProjectile(&sim.Projectile{ID: 4, Model: modelA})
	r.DelFeature(&sim.Feature{ID: 5, Model: modelA})

	assert.Equal(t, 1, r.NumUnits())
	assert.True(t, r.HasUnit(u1))
	assert.Equal(t, 1, r.NumBins(sim.KindUnit))
	assert.False(t, r.HasBin(sim.KindUnit, modelB.TextureType), "del must not create bins")
	assert.Equal(t, 0, r.NumBins(sim.KindProjectile))
	assert.Equal(t, 0, r.NumBins(sim.KindFeature))
}

func TestNilObjectsAreIgnored(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	r.AddUnit(nil)
	r.AddUnit(&sim.Unit{ID: 1})
	r.AddFeature(nil, 1)
	r.AddProjectile(&sim.Projectile{ID: 2})
	r.DelUnit(nil)
	r.DelFeature(&sim.Feature{ID: 3})

	assert.Zero(t, r.NumUnits())
	assert.Zero(t, r.NumFeatures())
	assert.Zero(t, r.NumProjectiles())
}

func TestRandomReplayMatchesNetMembership(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())

	models := []*sim.Model{modelA, modelB, {Name: "x", Type: sim.ModelTypeS3O, TextureType: 3}}
	var units []*sim.Unit
	var projs []*sim.Projectile
	for i := 0; i < 30; i++ {
		m := models[i%len(models)]
		units = append(units, &sim.Unit{ID: sim.ObjectID(i + 1), Model: m})
		projs = append(projs, &sim.Projectile{ID: sim.ObjectID(i + 100), Model: m})
	}
	wantUnits := make(map[sim.ObjectID]bool)
	wantProjs := make(map[sim.ObjectID]bool)

	for step := 0; step < 2000; step++ {
		i := rng.Intn(len(units))
		switch rng.Intn(4) {
		case 0:
			r.AddUnit(units[i])
			wantUnits[units[i].ID] = true
		case 1:
			r.DelUnit(units[i])
			delete(wantUnits, units[i].ID)
		case 2:
			r.AddProjectile(projs[i])
			wantProjs[projs[i].ID] = true
		case 3:
			r.DelProjectile(projs[i])
			delete(wantProjs, projs[i].ID)
		}

		require.Equal(t, len(wantUnits), r.NumUnits(), "step %d", step)
		require.Equal(t, len(wantProjs), r.NumProjectiles(), "step %d", step)
		requireDenseBins(t, r.units, r.NumUnits(), step)
		requireDenseBins(t, r.projectiles, r.NumProjectiles(), step)
	}

	for _, u := range units {
		assert.Equal(t, wantUnits[u.ID], r.HasUnit(u), "unit %d", u.ID)
	}
	for _, p := range projs {
		assert.Equal(t, wantProjs[p.ID], r.HasProjectile(p), "projectile %d", p.ID)
	}

	// every bin that exists has members
	for tex := 1; tex <= 3; tex++ {
		if r.HasBin(sim.KindUnit, tex) {
			assert.NotZero(t, r.units[tex].len())
		}
		if r.HasBin(sim.KindProjectile, tex) {
			assert.NotZero(t, r.projectiles[tex].len())
		}
	}
}

// requireDenseBins checks that count matches the summed bin sizes and that
// no empty bin is left behind.
func requireDenseBins[T any](t *testing.T, b binMap[T], count, step int) {
	t.Helper()
	sum := 0
	for tex, bin := range b {
		require.NotZero(t, bin.len(), "step %d: empty bin %d", step, tex)
		sum += bin.len()
	}
	require.Equal(t, count, sum, "step %d", step)
}

func TestRandomFeatureReplayTracksBothGenerations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())

	models := []*sim.Model{modelA, modelB, {Name: "x", Type: sim.ModelTypeS3O, TextureType: 3}}
	feats := make([]*sim.Feature, 24)
	for i := range feats {
		feats[i] = &sim.Feature{ID: sim.ObjectID(i + 1), Model: models[i%len(models)]}
	}
	live := make(map[sim.ObjectID]float32)
	saved := make(map[sim.ObjectID]float32)

	for step := 0; step < 3000; step++ {
		f := feats[rng.Intn(len(feats))]
		switch n := rng.Intn(10); {
		case n < 5:
			alpha := rng.Float32()
			r.AddFeature(f, alpha)
			live[f.ID] = alpha
		case n < 9:
			r.DelFeature(f)
			delete(live, f.ID)
			delete(saved, f.ID)
		default:
			r.SwapFeatures()
			live, saved = saved, live
		}

		require.Equal(t, len(live), r.NumFeatures(), "step %d", step)
		require.Equal(t, len(saved), r.NumFeaturesSaved(), "step %d", step)
		requireDenseBins(t, r.features, r.NumFeatures(), step)
		requireDenseBins(t, r.featuresSaved, r.NumFeaturesSaved(), step)
	}

	for _, f := range feats {
		want, ok := live[f.ID]
		got, found := r.FeatureAlpha(f)
		assert.Equal(t, ok, found, "feature %d live", f.ID)
		assert.Equal(t, want, got, "feature %d live alpha", f.ID)

		want, ok = saved[f.ID]
		got, found = r.SavedFeatureAlpha(f)
		assert.Equal(t, ok, found, "feature %d saved", f.ID)
		assert.Equal(t, want, got, "feature %d saved alpha", f.ID)
	}
}

func TestUnitsListsBinMembers(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	u1 := &sim.Unit{ID: 1, Model: modelA}
	u2 := &sim.Unit{ID: 2, Model: modelA}
	u3 := &sim.Unit{ID: 3, Model: modelB}
	r.AddUnit(u1)
	r.AddUnit(u2)
	r.AddUnit(u3)

	assert.ElementsMatch(t, []*sim.Unit{u1, u2}, r.Units(modelA.TextureType))
	assert.Equal(t, []*sim.Unit{u3}, r.Units(modelB.TextureType))

	r.DelUnit(u1)
	assert.Equal(t, []*sim.Unit{u2}, r.Units(modelA.TextureType))

	r.DelUnit(u3)
	assert.Nil(t, r.Units(modelB.TextureType), "pruned bin")
	assert.Nil(t, r.Units(99))
}

func TestAddFeatureUpdatesAlphaInPlace(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	f := &sim.Feature{ID: 9, Model: modelA}

	r.AddFeature(f, 0.5)
	r.AddFeature(f, 0.5)
	assert.Equal(t, 1, r.NumFeatures())
	alpha, ok := r.FeatureAlpha(f)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), alpha)

	r.AddFeature(f, 0.7)
	assert.Equal(t, 1, r.NumFeatures())
	alpha, _ = r.FeatureAlpha(f)
	assert.Equal(t, float32(0.7), alpha)
}

func TestSwapFeaturesTwiceRestores(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	f1 := &sim.Feature{ID: 1, Model: modelA}
	f2 := &sim.Feature{ID: 2, Model: modelB}
	f3 := &sim.Feature{ID: 3, Model: modelA}

	r.AddFeature(f1, 0.2)
	r.AddFeature(f2, 0.4)
	r.SwapFeatures()
	r.AddFeature(f3, 0.9)

	live, saved := r.NumFeatures(), r.NumFeaturesSaved()
	require.Equal(t, 1, live)
	require.Equal(t, 2, saved)

	r.SwapFeatures()
	assert.Equal(t, saved, r.NumFeatures())
	assert.Equal(t, live, r.NumFeaturesSaved())
	r.SwapFeatures()
	assert.Equal(t, live, r.NumFeatures())
	assert.Equal(t, saved, r.NumFeaturesSaved())

	a, ok := r.FeatureAlpha(f3)
	assert.True(t, ok)
	assert.Equal(t, float32(0.9), a)
	a, ok = r.SavedFeatureAlpha(f2)
	assert.True(t, ok)
	assert.Equal(t, float32(0.4), a)
	_, ok = r.FeatureAlpha(f1)
	assert.False(t, ok)
}

func TestDelFeatureReachesSavedGeneration(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	x := &sim.Feature{ID: 1, Model: modelA}
	y := &sim.Feature{ID: 2, Model: modelB}

	r.AddFeature(x, 1)
	r.SwapFeatures()
	r.AddFeature(y, 1)
	require.Equal(t, 1, r.NumFeatures())
	require.Equal(t, 1, r.NumFeaturesSaved())

	r.DelFeature(x)
	assert.Equal(t, 1, r.NumFeatures(), "live counter untouched")
	assert.Equal(t, 0, r.NumFeaturesSaved())
	_, ok := r.SavedFeatureAlpha(x)
	assert.False(t, ok)
	assert.Empty(t, r.featuresSaved, "saved bin pruned")

	// present in both generations
	r.AddFeature(x, 0.3)
	r.SwapFeatures()
	r.AddFeature(x, 0.6)
	r.DelFeature(x)
	assert.Equal(t, 1, r.NumFeatures()+r.NumFeaturesSaved())
	_, inLive := r.FeatureAlpha(x)
	_, inSaved := r.SavedFeatureAlpha(x)
	assert.False(t, inLive)
	assert.False(t, inSaved)
}

func TestEmptyBinsArePruned(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	u := &sim.Unit{ID: 1, Model: modelA}
	f := &sim.Feature{ID: 2, Model: modelB}
	p := &sim.Projectile{ID: 3, Model: modelA}

	r.AddUnit(u)
	r.AddFeature(f, 1)
	r.AddProjectile(p)
	assert.True(t, r.HasBin(sim.KindUnit, modelA.TextureType))
	assert.True(t, r.HasBin(sim.KindFeature, modelB.TextureType))
	assert.True(t, r.HasBin(sim.KindProjectile, modelA.TextureType))

	r.DelUnit(u)
	r.DelFeature(f)
	r.DelProjectile(p)
	assert.False(t, r.HasBin(sim.KindUnit, modelA.TextureType))
	assert.False(t, r.HasBin(sim.KindFeature, modelB.TextureType))
	assert.False(t, r.HasBin(sim.KindProjectile, modelA.TextureType))
	assert.Zero(t, r.NumBins(sim.KindUnit)+r.NumBins(sim.KindFeature)+r.NumBins(sim.KindProjectile))
}

func TestDrawVisitsEveryLiveObjectOnce(t *testing.T) {
	fam := newCountingFamily()
	r := NewRenderer(sim.ModelTypeS3O, fam)

	for i := 1; i <= 5; i++ {
		r.AddUnit(&sim.Unit{ID: sim.ObjectID(i), Model: []*sim.Model{modelA, modelB}[i%2]})
	}
	r.AddFeature(&sim.Feature{ID: 10, Model: modelA}, 0.25)
	r.AddFeature(&sim.Feature{ID: 11, Model: modelB}, 1)
	r.AddProjectile(&sim.Projectile{ID: 20, Model: modelB})

	// saved features are not drawn
	r.SwapFeatures()
	r.AddFeature(&sim.Feature{ID: 12, Model: modelA}, 0.5)

	r.Draw()

	assert.Equal(t, 1, fam.pushes)
	assert.Equal(t, 1, fam.pops)
	assert.Len(t, fam.drawn, 7)
	for id, n := range fam.drawn {
		assert.Equal(t, 1, n, "object %d", id)
	}
	assert.NotContains(t, fam.drawn, sim.ObjectID(10))
	assert.Equal(t, float32(0.5), fam.alphas[12])

	// kinds are drawn units, then features, then projectiles
	require.Len(t, fam.order, 7)
	for i := 1; i < len(fam.order); i++ {
		assert.LessOrEqual(t, int(fam.order[i-1]), int(fam.order[i]))
	}
}

func TestDrawEmptyRendererStillPushesAndPops(t *testing.T) {
	fam := newCountingFamily()
	r := NewRenderer(sim.ModelTypeOBJ, fam)
	r.Draw()
	r.Draw()
	assert.Equal(t, 2, fam.pushes)
	assert.Equal(t, 2, fam.pops)
	assert.Empty(t, fam.drawn)
}

func TestFrameScenario(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	u1 := &sim.Unit{ID: 1, Model: modelA}
	u2 := &sim.Unit{ID: 2, Model: modelA}
	f1 := &sim.Feature{ID: 3, Model: modelA}

	r.AddUnit(u1)
	r.AddFeature(f1, 0.3)

	r.AddUnit(u2)
	assert.Equal(t, 2, r.NumUnits())

	r.DelFeature(f1)
	assert.Equal(t, 0, r.NumFeatures())
	assert.False(t, r.HasBin(sim.KindFeature, modelA.TextureType))

	require.NotPanics(t, r.SwapFeatures)
	assert.Equal(t, 0, r.NumFeatures())
	assert.Equal(t, 0, r.NumFeaturesSaved())
	assert.Zero(t, r.NumBins(sim.KindFeature))
}

func TestBinsHoldReferencesNotCopies(t *testing.T) {
	rec := &recorder{}
	r := NewRenderer(sim.ModelTypeOBJ, NewFamily(sim.ModelTypeOBJ, rec, rec))
	u := &sim.Unit{ID: 1, Model: &sim.Model{Type: sim.ModelTypeOBJ}}
	r.AddUnit(u)

	u.Pos = mgl32.Vec3{4, 5, 6}
	r.Draw()

	require.Len(t, rec.submits, 1)
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, rec.submits[0].transform.Col(3).Vec3())
}

func TestClearDropsEverything(t *testing.T) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	r.AddUnit(&sim.Unit{ID: 1, Model: modelA})
	r.AddFeature(&sim.Feature{ID: 2, Model: modelA}, 1)
	r.SwapFeatures()
	r.AddProjectile(&sim.Projectile{ID: 3, Model: modelA})

	r.Clear()
	assert.Zero(t, r.NumUnits())
	assert.Zero(t, r.NumFeatures())
	assert.Zero(t, r.NumFeaturesSaved())
	assert.Zero(t, r.NumProjectiles())
	assert.Empty(t, r.featuresSaved)
}

func BenchmarkUnitChurn(b *testing.B) {
	r := NewRenderer(sim.ModelTypeS3O, newCountingFamily())
	units := make([]*sim.Unit, 4096)
	for i := range units {
		units[i] = &sim.Unit{ID: sim.ObjectID(i + 1), Model: []*sim.Model{modelA, modelB}[i%2]}
		r.AddUnit(units[i])
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u := units[i%len(units)]
		r.DelUnit(u)
		r.AddUnit(u)
	}
}
