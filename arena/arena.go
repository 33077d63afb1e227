// Package arena wires the combat systems into one simulation and exposes the
// operations game code drives it with.
package arena

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/milk9111/combatcore/combat"
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/ecs/entity"
	"github.com/milk9111/combatcore/ecs/system"
	"github.com/milk9111/combatcore/metrics"
	"github.com/milk9111/combatcore/pool"
	"github.com/milk9111/combatcore/prefabs"
	"github.com/milk9111/combatcore/stats"
)

// Default projectile pools, used when the arena spec lists none.
var defaultPools = []prefabs.PoolSpec{
	{Kind: 0, Config: pool.Config{Initial: 30, Max: 100}},
	{Kind: 1, Config: pool.Config{Initial: 5, Max: 20}},
}

// Config injects the arena's collaborators. Nil fields are loaded from the
// prefabs or defaulted.
type Config struct {
	Spec    *prefabs.ArenaSpec
	Weapons *prefabs.WeaponsSpec
	Stats   stats.Provider
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Rand    *rand.Rand
	// Empty skips the spec's player, enemies and walls.
	Empty bool
}

// Arena owns one world and its systems. It is not safe for concurrent use;
// WatchPrefabs is the only background producer and hands work to Tick over
// a channel.
type Arena struct {
	ID uuid.UUID

	world       *ecs.World
	scheduler   *ecs.Scheduler
	pool        *pool.Manager
	health      *system.HealthPipeline
	projectiles *system.Projectiles
	physics     *system.PhysicsSystem
	refresh     *system.StatsRefreshSystem
	scripts     *system.ScriptBrain

	spec     *prefabs.ArenaSpec
	weapons  *prefabs.WeaponsSpec
	provider stats.Provider
	metrics  *metrics.Collector
	logger   *slog.Logger
	reloads  chan string
}

// Load builds an arena entirely from the prefab files.
func Load(logger *slog.Logger) (*Arena, error) {
	return New(Config{Logger: logger})
}

func New(cfg Config) (*Arena, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	spec := cfg.Spec
	if spec == nil {
		s, err := prefabs.LoadArenaSpec()
		if err != nil {
			return nil, fmt.Errorf("arena: %w", err)
		}
		spec = s
	}
	weapons := cfg.Weapons
	if weapons == nil {
		ws, err := prefabs.LoadWeaponsSpec()
		if err != nil {
			return nil, fmt.Errorf("arena: %w", err)
		}
		weapons = ws
	}
	provider := cfg.Stats
	if provider == nil {
		p, err := stats.NewYAMLProvider()
		if err != nil {
			return nil, fmt.Errorf("arena: %w", err)
		}
		provider = p
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(spec.Seed))
	}

	id := uuid.New()
	logger = logger.With(slog.String("arena", id.String()))

	a := &Arena{
		ID:       id,
		world:    ecs.NewWorld(),
		spec:     spec,
		weapons:  weapons,
		provider: provider,
		metrics:  cfg.Metrics,
		logger:   logger,
		reloads:  make(chan string, 16),
	}

	var observer system.Observer
	a.pool = pool.NewManager(a.world, logger)
	if cfg.Metrics != nil {
		observer = cfg.Metrics
		a.pool.SetObserver(cfg.Metrics)
	}
	pools := spec.Pools
	if len(pools) == 0 {
		pools = defaultPools
	}
	for _, ps := range pools {
		if err := a.pool.Register(ps.Kind, ps.Config, system.ResetProjectile); err != nil {
			return nil, fmt.Errorf("arena: pool %d: %w", ps.Kind, err)
		}
	}

	a.health = system.NewHealthPipeline(spec.DespawnDelay, observer)
	a.projectiles = system.NewProjectiles(a.pool, a.health, observer)
	if spec.Explosion.Radius > 0 {
		a.projectiles.ExplosionRadius = spec.Explosion.Radius
	}
	a.physics = system.NewPhysicsSystem(logger)
	a.refresh = system.NewStatsRefreshSystem(provider, logger)
	a.scripts = system.NewScriptBrain(logger)

	brains := system.Brains{
		component.ControllerPlayer:   system.PlayerBrain{},
		component.ControllerEnemy:    system.ChaseBrain{},
		component.ControllerScripted: a.scripts,
	}
	a.scheduler = ecs.NewScheduler(
		a.refresh,
		a.physics.SyncSystem(),
		system.NewIntentSystem(a.physics, brains, logger),
		system.NewStateMachineSystem(a.health),
		system.NewMovementSystem(),
		system.NewRotationSystem(),
		system.NewAttackSystem(a.projectiles, rng, logger),
		system.NewProjectileMotionSystem(a.projectiles),
		a.physics,
		system.NewProjectileCollisionSystem(a.projectiles, a.physics),
		system.NewDespawnSystem(a.pool),
	)

	// Melee hits land when the attack signal is delivered.
	a.world.Bus().Subscribe(ecs.EventAttackSignal, a.resolveMelee)

	if !cfg.Empty {
		if err := a.populate(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Arena) populate() error {
	for _, ws := range a.spec.Walls {
		if _, err := a.SpawnWall(ws); err != nil {
			return fmt.Errorf("arena: %w", err)
		}
	}
	if a.spec.Player != nil {
		if _, err := a.Spawn(*a.spec.Player, component.FactionPlayer); err != nil {
			return fmt.Errorf("arena: player: %w", err)
		}
	}
	for _, es := range a.spec.Enemies {
		if _, err := a.Spawn(es, component.FactionEnemy); err != nil {
			return fmt.Errorf("arena: enemy %s: %w", es.Name, err)
		}
	}
	return nil
}

func (a *Arena) resolveMelee(ev ecs.Event) {
	sig, ok := ev.Data.(ecs.AttackSignal)
	if !ok {
		return
	}
	// Signals queue until the end-of-tick flush; an attacker killed in the
	// meantime lands nothing.
	if c, ok := ecs.Get(a.world, ev.Entity, component.CombatantComponent.Kind()); !ok || c.Defeated || c.State == component.StateDead {
		return
	}
	a.health.ApplyDamage(a.world, sig.Target, sig.Power, ev.Entity)
}

// Tick applies pending hot reloads and advances the simulation by dt
// seconds.
func (a *Arena) Tick(dt float64) {
	a.drainReloads()

	start := time.Now()
	a.scheduler.Tick(a.world, dt)
	if a.metrics != nil {
		a.metrics.ObserveTick(time.Since(start), len(ecs.Entities(a.world)))
	}
}

// TickRate is the fixed tick frequency of the arena spec, 60 if unset.
func (a *Arena) TickRate() int {
	if a.spec.TickRate <= 0 {
		return 60
	}
	return a.spec.TickRate
}

func (a *Arena) drainReloads() {
	for {
		select {
		case name := <-a.reloads:
			a.reload(name)
		default:
			return
		}
	}
}

func (a *Arena) reload(name string) {
	switch {
	case name == prefabs.StatsFile:
		r, ok := a.provider.(stats.Reloader)
		if !ok {
			return
		}
		if err := r.Reload(); err != nil {
			a.logger.Warn("stats: reload failed", slog.Any("err", err))
			return
		}
		system.RequestAll(a.world)
		a.logger.Info("stats: reloaded")
	case name == prefabs.WeaponsFile:
		ws, err := prefabs.LoadWeaponsSpec()
		if err != nil {
			a.logger.Warn("weapons: reload failed", slog.Any("err", err))
			return
		}
		a.weapons = ws
		a.logger.Info("weapons: reloaded, applies to new spawns")
	case strings.EqualFold(filepath.Ext(name), ".tengo"):
		a.scripts.Invalidate(name)
		a.logger.Info("ai: script reloaded", slog.String("script", name))
	}
}

// Reload queues a prefab file for reloading at the next tick.
func (a *Arena) Reload(name string) {
	select {
	case a.reloads <- name:
	default:
		a.logger.Warn("arena: reload queue full", slog.String("file", name))
	}
}

// WatchPrefabs forwards prefab file changes to the tick loop until ctx is
// done.
func (a *Arena) WatchPrefabs(ctx context.Context, dirs ...string) error {
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return fmt.Errorf("arena: watch prefabs: %w", err)
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case name, ok := <-w.Events:
				if !ok {
					return
				}
				a.Reload(name)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.logger.Warn("prefabs: watch error", slog.Any("err", err))
			}
		}
	}()
	return nil
}

// Spawn creates a combatant from spec. Stats are resolved immediately.
func (a *Arena) Spawn(spec prefabs.CombatantSpec, faction component.Faction) (*Handle, error) {
	var weapon *component.Weapon
	if spec.Weapon != "" {
		wp, ok := a.weapons.Weapon(spec.Weapon)
		if !ok {
			return nil, fmt.Errorf("unknown weapon %q", spec.Weapon)
		}
		weapon = &wp
	}

	e, err := entity.NewCombatant(a.world, entity.CombatantConfig{
		Name:       spec.Name,
		Faction:    faction,
		Profile:    spec.Profile,
		Position:   spec.Position,
		Radius:     spec.Radius,
		Weapon:     weapon,
		Controller: component.ControllerKind(spec.Controller),
		Script:     spec.Script,
		Targeting: &component.Targeting{
			HalfExtent:  a.spec.Aggro.HalfExtent,
			FollowRange: a.spec.Aggro.FollowRange,
		},
	})
	if err != nil {
		return nil, err
	}
	ecs.Remove(a.world, e, component.StatsRefreshRequestComponent.Kind())
	a.refresh.Refresh(a.world, e)
	return a.Handle(e), nil
}

func (a *Arena) SpawnWall(spec prefabs.WallSpec) (ecs.Entity, error) {
	return entity.NewWall(a.world, spec.Position, spec.HalfW, spec.HalfD)
}

// ApplyDamage runs raw damage through the target's mitigation.
func (a *Arena) ApplyDamage(target ecs.Entity, raw int, source ecs.Entity) int {
	return a.health.ApplyDamage(a.world, target, raw, source)
}

func (a *Arena) Heal(target ecs.Entity, amount int) bool {
	return a.health.Heal(a.world, target, amount)
}

// GrantAbility applies a named weapon ability reward. Unknown names and
// weapon-less entities are logged and ignored.
func (a *Arena) GrantAbility(e ecs.Entity, name string, value int) bool {
	g, ok := combat.ParseGrant(name)
	if !ok {
		a.logger.Warn("weapon: unknown ability", slog.String("entity", e.String()), slog.String("ability", name))
		return false
	}
	w, ok := ecs.Get(a.world, e, component.WeaponComponent.Kind())
	if !ok {
		a.logger.Warn("weapon: grant without weapon", slog.String("entity", e.String()), slog.String("ability", name))
		return false
	}
	return combat.ApplyGrant(w, g, value)
}

// Boost stacks a stat bonus on e; it takes effect at the next tick.
func (a *Arena) Boost(e ecs.Entity, b component.StatBoost) bool {
	if !ecs.IsAlive(a.world, e) {
		return false
	}
	cur, ok := ecs.Get(a.world, e, component.StatBoostComponent.Kind())
	if !ok {
		cur = &component.StatBoost{}
		if err := ecs.Add(a.world, e, component.StatBoostComponent.Kind(), cur); err != nil {
			return false
		}
	}
	*cur = cur.Plus(b)
	a.RefreshStats(e)
	return true
}

// ApplyPerk grants a named perk from stats.yaml.
func (a *Arena) ApplyPerk(e ecs.Entity, name string) bool {
	perks, ok := a.provider.(interface {
		Perk(string) (component.StatBoost, bool)
	})
	if !ok {
		return false
	}
	b, ok := perks.Perk(name)
	if !ok {
		a.logger.Warn("stats: unknown perk", slog.String("entity", e.String()), slog.String("perk", name))
		return false
	}
	return a.Boost(e, b)
}

// RefreshStats queues a stats refresh for e at the next tick boundary.
func (a *Arena) RefreshStats(e ecs.Entity) {
	_ = ecs.Add(a.world, e, component.StatsRefreshRequestComponent.Kind(), &component.StatsRefreshRequest{})
}

// Subscribe registers fn for kind. Events are delivered at the end of each
// tick in subscription order.
func (a *Arena) Subscribe(kind ecs.EventKind, fn ecs.Handler) func() {
	return a.world.Bus().Subscribe(kind, fn)
}

// SetMoveInput steers the player.
func (a *Arena) SetMoveInput(dir common.Vec3) {
	if p, ok := a.Player(); ok {
		p.SetMoveInput(dir)
	}
}

func (a *Arena) Player() (*Handle, bool) {
	e, ok := ecs.First(a.world, component.PlayerTagComponent.Kind())
	if !ok {
		return nil, false
	}
	return a.Handle(e), true
}

// Enemies returns handles to every enemy, defeated ones included until they
// despawn.
func (a *Arena) Enemies() []*Handle {
	var out []*Handle
	for _, e := range ecs.Query(a.world, component.EnemyTagComponent.Kind()) {
		out = append(out, a.Handle(e))
	}
	return out
}

func (a *Arena) Handle(e ecs.Entity) *Handle {
	return &Handle{arena: a, e: e}
}

func (a *Arena) World() *ecs.World {
	return a.world
}

func (a *Arena) Spec() *prefabs.ArenaSpec {
	return a.spec
}

func (a *Arena) Pool() *pool.Manager {
	return a.pool
}

func (a *Arena) Physics() *system.PhysicsSystem {
	return a.physics
}

func (a *Arena) Elapsed() float64 {
	return a.world.Elapsed()
}
