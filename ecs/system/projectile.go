package system

import (
	"github.com/milk9111/combatcore/combat"
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/pool"
)

const (
	// DefaultExplosionRadius applies when the firing weapon sets none.
	DefaultExplosionRadius = 2.5

	impactBackoff  = 0.05
	defaultShotRad = 0.1
)

// Shot describes one projectile to launch.
type Shot struct {
	Owner     ecs.Entity
	Faction   component.Faction
	Origin    common.Vec3
	Direction common.Vec3
	Weapon    component.Weapon
	Power     int
	Critical  bool
}

// Projectiles owns the projectile lifecycle: spawning from the pool,
// termination back into it and contact resolution.
type Projectiles struct {
	// ExplosionRadius applies to explosive shots whose weapon sets none.
	ExplosionRadius float64

	pool     pool.Pool
	health   *HealthPipeline
	observer Observer
}

func NewProjectiles(p pool.Pool, health *HealthPipeline, observer Observer) *Projectiles {
	return &Projectiles{
		ExplosionRadius: DefaultExplosionRadius,
		pool:            p,
		health:          health,
		observer:        orNop(observer),
	}
}

// ResetProjectile strips a released projectile down to its pooled shell.
func ResetProjectile(w *ecs.World, e ecs.Entity) {
	ecs.Remove(w, e, component.ProjectileComponent.Kind())
	ecs.Remove(w, e, component.TransformComponent.Kind())
	ecs.Remove(w, e, component.ColliderComponent.Kind())
}

// Spawn acquires a pooled entity and launches it. It returns false if the
// pool refused the kind.
func (p *Projectiles) Spawn(w *ecs.World, shot Shot) (ecs.Entity, bool) {
	dir := shot.Direction.Flat().Normalize()
	if p.pool == nil || dir.IsZero() {
		return 0, false
	}
	e, ok := p.pool.Acquire(shot.Weapon.PoolKind)
	if !ok {
		return 0, false
	}

	wp := shot.Weapon
	size := wp.Size
	if size <= 0 {
		size = defaultShotRad
	}
	abilities := wp.Abilities
	if abilities == 0 {
		abilities = component.AbilityNormal
	}
	bounces := 0
	if abilities.Has(component.AbilityRicochet) {
		bounces = max(wp.Bounces, 0)
	}
	radius := wp.ExplosionRadius
	if radius <= 0 {
		radius = p.ExplosionRadius
	}

	proj := &component.Projectile{
		Owner:           uint64(shot.Owner),
		OwnerFaction:    shot.Faction,
		Direction:       dir,
		Speed:           wp.ProjectileSpeed,
		Remaining:       wp.Duration,
		Size:            size,
		Power:           shot.Power,
		Critical:        shot.Critical,
		Abilities:       abilities,
		Bounces:         bounces,
		ExplosionRadius: radius,
		HostileMask:     HostileMask(shot.Faction),
		State:           component.ProjectileFlying,
		PoolKind:        wp.PoolKind,
	}
	if err := ecs.Add(w, e, component.ProjectileComponent.Kind(), proj); err != nil {
		p.pool.Release(e, wp.PoolKind)
		return 0, false
	}
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: shot.Origin, Yaw: dir.Yaw()})
	_ = ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		Radius:   size,
		Category: component.LayerProjectile,
		Mask:     component.LayerGeometry | proj.HostileMask,
		Sensor:   true,
	})

	p.observer.ProjectileSpawned(shot.Faction)
	w.Bus().Publish(ecs.Event{
		Kind:   ecs.EventProjectileSpawned,
		Entity: e,
		Data:   ecs.ProjectileSpawned{Owner: shot.Owner, Direction: dir, Power: shot.Power, Critical: shot.Critical},
	})
	return e, true
}

// Terminate ends a flying projectile and returns it to the pool. Later calls
// for the same flight do nothing.
func (p *Projectiles) Terminate(w *ecs.World, e ecs.Entity, reason component.TerminateReason) bool {
	proj, ok := ecs.Get(w, e, component.ProjectileComponent.Kind())
	if !ok || proj.State == component.ProjectileTerminated {
		return false
	}
	proj.State = component.ProjectileTerminated
	proj.Reason = reason
	p.observer.ProjectileTerminated(reason)
	w.Bus().Publish(ecs.Event{Kind: ecs.EventProjectileTerminated, Entity: e, Data: ecs.ProjectileTerminated{Reason: reason}})

	if p.pool != nil {
		p.pool.Release(e, proj.PoolKind)
	}
	if ecs.Has(w, e, component.ProjectileComponent.Kind()) {
		// not pooled: nothing recycled it
		ecs.DestroyEntity(w, e)
	}
	return true
}

// ResolveContact applies the response for one detected contact.
func (p *Projectiles) ResolveContact(w *ecs.World, c Contact) {
	proj, ok := ecs.Get(w, c.Projectile, component.ProjectileComponent.Kind())
	if !ok || proj.State != component.ProjectileFlying {
		return
	}

	switch c.Layer {
	case ContactWall:
		if proj.Abilities.Has(component.AbilityRicochet) && proj.Bounces > 0 {
			if dir := proj.Direction.Reflect(c.Normal.Flat().Normalize()).Flat().Normalize(); !dir.IsZero() {
				proj.Direction = dir
			}
			proj.Bounces--
			return
		}
		p.impact(w, c, proj, 0)
		p.Terminate(w, c.Projectile, component.TerminateWall)

	case ContactTarget:
		target := c.Other
		if !ecs.IsAlive(w, target) || isDead(w, target) {
			return
		}
		tc, _ := ecs.Get(w, target, component.CombatantComponent.Kind())
		if tc.Faction == proj.OwnerFaction {
			return
		}
		owner := ecs.Entity(proj.Owner)
		power, faction := proj.Power, proj.OwnerFaction
		abilities, radius := proj.Abilities, proj.ExplosionRadius

		p.impact(w, c, proj, target)
		p.Terminate(w, c.Projectile, component.TerminateTarget)
		if p.health != nil {
			p.health.ApplyDamage(w, target, power, owner)
		}
		if abilities.Has(component.AbilityExplosive) {
			p.explode(w, c.Point, power, radius, faction, owner, target)
		}
	}
}

func (p *Projectiles) impact(w *ecs.World, c Contact, proj *component.Projectile, target ecs.Entity) {
	w.Bus().Publish(ecs.Event{
		Kind:   ecs.EventImpact,
		Entity: c.Projectile,
		Data: ecs.Impact{
			Projectile: c.Projectile,
			Target:     target,
			Point:      c.Point.Sub(proj.Direction.Scale(impactBackoff)),
		},
	})
}

// explode deals falloff damage to hostile combatants around center, except
// the primary target which already took the direct hit.
func (p *Projectiles) explode(w *ecs.World, center common.Vec3, power int, radius float64, faction component.Faction, owner, primary ecs.Entity) {
	if p.health == nil {
		return
	}
	ecs.ForEach2(w, component.CombatantComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, c *component.Combatant, tr *component.Transform) {
		if e == primary || c.Faction == faction || c.Faction == 0 || c.State == component.StateDead {
			return
		}
		dmg := combat.SplashPower(power, center.Flat().Dist(tr.Position.Flat()), radius)
		if dmg <= 0 {
			return
		}
		p.health.ApplyDamage(w, e, dmg, owner)
	})
}

// ProjectileMotionSystem advances flying projectiles and expires them when
// their lifetime runs out.
type ProjectileMotionSystem struct {
	projectiles *Projectiles
}

func NewProjectileMotionSystem(projectiles *Projectiles) *ProjectileMotionSystem {
	return &ProjectileMotionSystem{projectiles: projectiles}
}

func (s *ProjectileMotionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()
	ecs.ForEach2(w, component.ProjectileComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, proj *component.Projectile, tr *component.Transform) {
		if proj.State != component.ProjectileFlying {
			return
		}
		tr.Position = tr.Position.Add(proj.Direction.Scale(proj.Speed * dt))
		tr.Yaw = proj.Direction.Yaw()
		proj.Remaining -= dt
		if proj.Remaining <= 1e-9 {
			s.projectiles.Terminate(w, e, component.TerminateExpired)
		}
	})
}

// ProjectileCollisionSystem resolves the contacts the collision world
// detected during this tick's step.
type ProjectileCollisionSystem struct {
	projectiles *Projectiles
	source      ContactSource
}

func NewProjectileCollisionSystem(projectiles *Projectiles, source ContactSource) *ProjectileCollisionSystem {
	return &ProjectileCollisionSystem{projectiles: projectiles, source: source}
}

func (s *ProjectileCollisionSystem) Update(w *ecs.World) {
	if w == nil || s.source == nil {
		return
	}
	for _, c := range s.source.DrainContacts() {
		s.projectiles.ResolveContact(w, c)
	}
}
