package soak

import (
	"context"
	"fmt"

	"modelbins/internal/config"
	"modelbins/internal/graphics/modelrender"
	"modelbins/internal/logx"
	"modelbins/internal/profiling"
	"modelbins/internal/sim"

	"github.com/go-gl/mathgl/mgl32"
)

// HeadlessDevice stands in for the GL device and submitter when no context
// exists. It only counts what it is asked to do.
type HeadlessDevice struct {
	Submits    int
	Pushes     int
	Restarts   int
	AtlasBinds map[sim.ModelType]int

	restart bool
}

func NewHeadlessDevice(restart bool) *HeadlessDevice {
	return &HeadlessDevice{AtlasBinds: make(map[sim.ModelType]int), restart: restart}
}

func (d *HeadlessDevice) BindModelAtlases(t sim.ModelType)       { d.AtlasBinds[t]++ }
func (d *HeadlessDevice) PushPolygonState()                      { d.Pushes++ }
func (d *HeadlessDevice) PopPolygonState()                       {}
func (d *HeadlessDevice) SetCullFace(bool)                       {}
func (d *HeadlessDevice) SupportsPrimitiveRestart() bool         { return d.restart }
func (d *HeadlessDevice) EnablePrimitiveRestart(uint32)          { d.Restarts++ }
func (d *HeadlessDevice) Submit(*sim.Model, mgl32.Mat4, float32) { d.Submits++ }

// FamilyBins is the bin count of one family renderer per object kind.
type FamilyBins struct {
	Family      sim.ModelType
	Units       int
	Features    int
	Projectiles int
}

// Result summarises one soak run.
type Result struct {
	Seed     int64
	Ticks    int
	Totals   modelrender.Totals
	Submits  int
	Pushes   int
	Restarts int
	Bins     []FamilyBins
}

// Run churns objects for s.Ticks ticks, drawing and checking the bin counts
// after every tick. It stops early, without error, when ctx is cancelled.
func Run(ctx context.Context, s config.SoakSettings) (Result, error) {
	if s.Ticks <= 0 {
		return Result{}, fmt.Errorf("soak needs a positive tick count, got %d", s.Ticks)
	}

	dev := NewHeadlessDevice(config.PrimitiveRestart())
	reg := modelrender.NewRegistry(dev, dev)
	mgr := sim.NewManager(reg)
	sc := NewScene(mgr, s.Seed)
	log := logx.Logger().With("seed", s.Seed)

	const (
		dt = 1.0 / 60
		// ticks between feature snapshots
		swapEvery = 25
	)
	tick := 0
	for ; tick < s.Ticks && ctx.Err() == nil; tick++ {
		profiling.ResetFrame()

		sc.Spawn(s.SpawnRate)
		sc.Kill(s.SpawnRate, s.KillRatio)
		sc.Remodel()
		mgr.Tick(dt)
		if tick%swapEvery == swapEvery-1 {
			reg.SwapFeatures()
			mgr.ResyncFeatures()
		}
		reg.Draw()
		reg.DrawSavedFeatures()

		if err := CheckCounts(reg, mgr); err != nil {
			return Result{}, fmt.Errorf("seed %d tick %d: %w", s.Seed, tick, err)
		}
		if tick%100 == 0 {
			t := reg.Totals()
			log.Debug("soak progress", "tick", tick,
				"units", t.Units, "features", t.Features, "projectiles", t.Projectiles)
		}
	}

	res := Result{
		Seed:     s.Seed,
		Ticks:    tick,
		Totals:   reg.Totals(),
		Submits:  dev.Submits,
		Pushes:   dev.Pushes,
		Restarts: dev.Restarts,
	}
	for _, r := range reg.Renderers() {
		res.Bins = append(res.Bins, FamilyBins{
			Family:      r.ModelType(),
			Units:       r.NumBins(sim.KindUnit),
			Features:    r.NumBins(sim.KindFeature),
			Projectiles: r.NumBins(sim.KindProjectile),
		})
	}
	return res, nil
}

// CheckCounts verifies that every live object sits in exactly one bin and
// that the saved feature generation holds no feature that has since died.
func CheckCounts(reg *modelrender.Registry, mgr *sim.Manager) error {
	t := reg.Totals()
	if t.Units != len(mgr.Units()) {
		return fmt.Errorf("registry holds %d units, simulation %d", t.Units, len(mgr.Units()))
	}
	if t.Features != len(mgr.Features()) {
		return fmt.Errorf("registry holds %d features, simulation %d", t.Features, len(mgr.Features()))
	}
	if t.Projectiles != len(mgr.Projectiles()) {
		return fmt.Errorf("registry holds %d projectiles, simulation %d", t.Projectiles, len(mgr.Projectiles()))
	}
	if t.FeaturesSaved > len(mgr.Features()) {
		return fmt.Errorf("registry holds %d saved features, only %d alive", t.FeaturesSaved, len(mgr.Features()))
	}
	return nil
}
