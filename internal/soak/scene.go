// Package soak drives random object churn through the render bins.
package soak

import (
	"math"
	"math/rand/v2"

	"modelbins/internal/sim"

	"github.com/go-gl/mathgl/mgl32"
)

// Catalogue covers every model family, with two atlases per known family
// so each family renderer ends up with more than one bin.
var Catalogue = []*sim.Model{
	{Name: "armcom", Type: sim.ModelTypeS3O, TextureType: 1},
	{Name: "armpw", Type: sim.ModelTypeS3O, TextureType: 2},
	{Name: "corak", Type: sim.ModelType3DO, TextureType: 3},
	{Name: "corthud", Type: sim.ModelType3DO, TextureType: 4},
	{Name: "pine", Type: sim.ModelTypeOBJ, TextureType: 5},
	{Name: "boulder", Type: sim.ModelTypeOBJ, TextureType: 6},
	{Name: "wreck", Type: sim.ModelTypeASS, TextureType: 7},
	{Name: "crate", Type: sim.ModelTypeASS, TextureType: 8},
	{Name: "legacy", Type: sim.ModelTypeOther, TextureType: 9},
}

const fieldRadius = 30

// Scene drives random world activity against a manager.
type Scene struct {
	mgr *sim.Manager
	rng *rand.Rand
}

func NewScene(mgr *sim.Manager, seed int64) *Scene {
	return &Scene{mgr: mgr, rng: rand.New(rand.NewPCG(uint64(seed), 0x6d6f64656c62696e))}
}

func (s *Scene) model() *sim.Model {
	return Catalogue[s.rng.IntN(len(Catalogue))]
}

func (s *Scene) position() mgl32.Vec3 {
	return mgl32.Vec3{
		(s.rng.Float32()*2 - 1) * fieldRadius,
		0,
		(s.rng.Float32()*2 - 1) * fieldRadius,
	}
}

// Spawn creates n objects of random kinds.
func (s *Scene) Spawn(n int) {
	for i := 0; i < n; i++ {
		switch s.rng.IntN(3) {
		case 0:
			s.mgr.SpawnUnit(s.model(), s.position(), s.rng.Float32()*2*math.Pi)
		case 1:
			var fade float32
			if s.rng.IntN(4) == 0 {
				fade = 0.1 + s.rng.Float32()*0.4
			}
			s.mgr.SpawnFeature(s.model(), s.position(), fade)
		default:
			heading := s.rng.Float64() * 2 * math.Pi
			vel := mgl32.Vec3{float32(math.Cos(heading)), 0, float32(math.Sin(heading))}.Mul(8)
			s.mgr.SpawnProjectile(s.model(), s.position(), vel, 1+s.rng.Float64()*3)
		}
	}
}

// Kill marks about ratio*n random objects dead.
func (s *Scene) Kill(n int, ratio float64) {
	k := int(math.Round(float64(n) * ratio))
	for i := 0; i < k; i++ {
		switch s.rng.IntN(2) {
		case 0:
			if us := s.mgr.Units(); len(us) > 0 {
				s.mgr.Kill(us[s.rng.IntN(len(us))].ID)
			}
		default:
			if fs := s.mgr.Features(); len(fs) > 0 {
				s.mgr.Kill(fs[s.rng.IntN(len(fs))].ID)
			}
		}
	}
}

// Remodel swaps the model of a random unit, moving it between bins and
// possibly between families.
func (s *Scene) Remodel() {
	us := s.mgr.Units()
	if len(us) == 0 {
		return
	}
	s.mgr.ChangeUnitModel(us[s.rng.IntN(len(us))], s.model())
}
