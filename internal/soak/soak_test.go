package soak

import (
	"context"
	"testing"

	"modelbins/internal/config"
	"modelbins/internal/graphics/modelrender"
	"modelbins/internal/sim"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(seed int64) (*HeadlessDevice, *modelrender.Registry, *sim.Manager, *Scene) {
	dev := NewHeadlessDevice(true)
	reg := modelrender.NewRegistry(dev, dev)
	mgr := sim.NewManager(reg)
	return dev, reg, mgr, NewScene(mgr, seed)
}

func TestSceneKeepsRegistryInStep(t *testing.T) {
	dev, reg, mgr, sc := newWorld(7)

	for i := 0; i < 200; i++ {
		sc.Spawn(16)
		sc.Kill(16, 0.6)
		sc.Remodel()
		mgr.Tick(1.0 / 30)
		require.NoError(t, CheckCounts(reg, mgr), "tick %d", i)
	}
	require.NotZero(t, reg.Totals().Units)

	reg.Draw()
	fallback := reg.GetRenderer(sim.ModelTypeOther)
	undrawn := fallback.NumUnits() + fallback.NumFeatures() + fallback.NumProjectiles()
	tot := reg.Totals()
	assert.Equal(t, tot.Units+tot.Features+tot.Projectiles-undrawn, dev.Submits,
		"the fallback family draws nothing")
	assert.Equal(t, 1, dev.Restarts)
	assert.Equal(t, 1, dev.AtlasBinds[sim.ModelType3DO])
}

func TestSceneIsDeterministic(t *testing.T) {
	run := func() modelrender.Totals {
		_, reg, mgr, sc := newWorld(3)
		for i := 0; i < 50; i++ {
			sc.Spawn(8)
			sc.Kill(8, 0.5)
			mgr.Tick(0.1)
		}
		return reg.Totals()
	}
	assert.Equal(t, run(), run())
}

func TestCheckCountsSpotsDrift(t *testing.T) {
	_, reg, mgr, _ := newWorld(1)
	u := mgr.SpawnUnit(Catalogue[0], mgl32.Vec3{}, 0)
	require.NoError(t, CheckCounts(reg, mgr))

	reg.DelUnit(u)
	assert.ErrorContains(t, CheckCounts(reg, mgr), "units")
}

func TestCheckCountsSpotsStaleSnapshot(t *testing.T) {
	_, reg, mgr, _ := newWorld(1)
	ghost := &sim.Feature{ID: 999, Model: Catalogue[0]}
	reg.AddFeature(ghost, 1)
	reg.SwapFeatures()

	assert.ErrorContains(t, CheckCounts(reg, mgr), "saved")
}

func TestSnapshotDropsDeadFeaturesUnderChurn(t *testing.T) {
	_, reg, mgr, sc := newWorld(11)
	saved := 0
	for i := 0; i < 300; i++ {
		sc.Spawn(12)
		sc.Kill(12, 0.5)
		mgr.Tick(1.0 / 30)
		if i%20 == 0 {
			reg.SwapFeatures()
			mgr.ResyncFeatures()
		}
		require.NoError(t, CheckCounts(reg, mgr), "tick %d", i)
		saved = max(saved, reg.Totals().FeaturesSaved)
	}
	assert.Positive(t, saved)
}

func TestRun(t *testing.T) {
	_, err := Run(context.Background(), config.SoakSettings{})
	assert.Error(t, err)

	res, err := Run(context.Background(), config.SoakSettings{Ticks: 30, SpawnRate: 8, KillRatio: 0.5, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Ticks)
	assert.Len(t, res.Bins, len(sim.ModelTypes)+1)
	assert.Positive(t, res.Submits)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, config.SoakSettings{Ticks: 1000, SpawnRate: 8, Seed: 1})
	require.NoError(t, err)
	assert.Zero(t, res.Ticks)
}
