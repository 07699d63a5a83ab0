package sim

import (
	"modelbins/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// Listener receives draw-classification changes from the simulation.
// The render bin registry implements it.
type Listener interface {
	AddUnit(u *Unit)
	DelUnit(u *Unit)
	AddFeature(f *Feature, alpha float32)
	DelFeature(f *Feature)
	AddProjectile(p *Projectile)
	DelProjectile(p *Projectile)
}

// Manager owns the lifecycle of world objects and reports every spawn,
// death, model swap and fade to its Listener.
//
// Manager is not safe for concurrent use; it runs on the frame loop.
type Manager struct {
	listener Listener
	nextID   ObjectID

	units       []*Unit
	features    []*Feature
	projectiles []*Projectile
}

// NewManager creates a manager that notifies l.
func NewManager(l Listener) *Manager {
	return &Manager{
		listener:    l,
		nextID:      1,
		units:       make([]*Unit, 0),
		features:    make([]*Feature, 0),
		projectiles: make([]*Projectile, 0),
	}
}

func (m *Manager) newID() ObjectID {
	id := m.nextID
	m.nextID++
	return id
}

// SpawnUnit creates a unit and registers it for drawing.
func (m *Manager) SpawnUnit(model *Model, pos mgl32.Vec3, heading float32) *Unit {
	u := &Unit{ID: m.newID(), Model: model, Pos: pos, Heading: heading}
	m.units = append(m.units, u)
	m.listener.AddUnit(u)
	return u
}

// SpawnFeature creates a fully opaque feature. fadeRate may be zero.
func (m *Manager) SpawnFeature(model *Model, pos mgl32.Vec3, fadeRate float32) *Feature {
	f := &Feature{ID: m.newID(), Model: model, Pos: pos, Alpha: 1, FadeRate: fadeRate}
	m.features = append(m.features, f)
	m.listener.AddFeature(f, f.Alpha)
	return f
}

// SpawnProjectile launches a projectile that lives for ttl seconds.
func (m *Manager) SpawnProjectile(model *Model, pos, vel mgl32.Vec3, ttl float64) *Projectile {
	p := &Projectile{ID: m.newID(), Model: model, Pos: pos, Velocity: vel, TTL: ttl}
	m.projectiles = append(m.projectiles, p)
	m.listener.AddProjectile(p)
	return p
}

// ChangeUnitModel swaps a unit's model, moving it between bins.
func (m *Manager) ChangeUnitModel(u *Unit, model *Model) {
	if u.Dead || u.Model == model {
		return
	}
	m.listener.DelUnit(u)
	u.Model = model
	m.listener.AddUnit(u)
}

// SetFeatureAlpha changes a feature's fade and reports it.
func (m *Manager) SetFeatureAlpha(f *Feature, alpha float32) {
	if f.Dead {
		return
	}
	f.Alpha = mgl32.Clamp(alpha, 0, 1)
	m.listener.AddFeature(f, f.Alpha)
}

// ResyncFeatures reports every live feature again at its current alpha.
func (m *Manager) ResyncFeatures() {
	for _, f := range m.features {
		if !f.Dead {
			m.listener.AddFeature(f, f.Alpha)
		}
	}
}

// Kill marks an object dead; it is unregistered on the next Tick.
// Unknown ids are ignored.
func (m *Manager) Kill(id ObjectID) {
	for _, u := range m.units {
		if u.ID == id {
			u.Dead = true
			return
		}
	}
	for _, f := range m.features {
		if f.ID == id {
			f.Dead = true
			return
		}
	}
	for _, p := range m.projectiles {
		if p.ID == id {
			p.Dead = true
			return
		}
	}
}

// Tick advances the simulation by dt seconds and drops dead objects.
func (m *Manager) Tick(dt float64) {
	defer profiling.Track("sim.Tick")()

	alive := 0
	for _, u := range m.units {
		if u.Dead {
			m.listener.DelUnit(u)
			continue
		}
		m.units[alive] = u
		alive++
	}
	m.units = m.units[:alive]

	alive = 0
	for _, f := range m.features {
		if !f.Dead && f.FadeRate > 0 {
			f.Alpha -= f.FadeRate * float32(dt)
			if f.Alpha <= 0 {
				f.Dead = true
			} else {
				m.listener.AddFeature(f, f.Alpha)
			}
		}
		if f.Dead {
			m.listener.DelFeature(f)
			continue
		}
		m.features[alive] = f
		alive++
	}
	m.features = m.features[:alive]

	alive = 0
	for _, p := range m.projectiles {
		if !p.Dead {
			p.Pos = p.Pos.Add(p.Velocity.Mul(float32(dt)))
			p.TTL -= dt
			if p.TTL <= 0 {
				p.Dead = true
			}
		}
		if p.Dead {
			m.listener.DelProjectile(p)
			continue
		}
		m.projectiles[alive] = p
		alive++
	}
	m.projectiles = m.projectiles[:alive]

	profiling.Count("sim.units", len(m.units))
	profiling.Count("sim.features", len(m.features))
	profiling.Count("sim.projectiles", len(m.projectiles))
}

// Units returns the live units. The slice is owned by the manager.
func (m *Manager) Units() []*Unit { return m.units }

// Features returns the live features. The slice is owned by the manager.
func (m *Manager) Features() []*Feature { return m.features }

// Projectiles returns the live projectiles. The slice is owned by the manager.
func (m *Manager) Projectiles() []*Projectile { return m.projectiles }
