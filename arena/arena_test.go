package arena

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/ecs/system"
	"github.com/milk9111/combatcore/prefabs"
	"github.com/milk9111/combatcore/stats"
)

const dt = 1.0 / 60

const testStats = `
profiles:
  hero:
    maxHealth: 100
    attack: 10
    defense: 0
    damageReductionPct: 0
    criticalRatePct: 0
    moveSpeed: 4
  tank:
    maxHealth: 100
    attack: 10
    defense: 5
    damageReductionPct: 0.1
    criticalRatePct: 0
    moveSpeed: 0
  dummy:
    maxHealth: 10
    attack: 10
    defense: 0
    damageReductionPct: 0
    criticalRatePct: 0
    moveSpeed: 0
perks:
  health:
    maxHealth: 20
`

func testWeapons() *prefabs.WeaponsSpec {
	return &prefabs.WeaponsSpec{Weapons: map[string]component.Weapon{
		"bow": {
			Kind: component.WeaponRanged, Delay: 0.5, Power: 1, Range: 12,
			ProjectileSpeed: 14, Duration: 1.5, Size: 0.2, PerShot: 1, AngleStep: 10,
			Abilities: component.AbilityNormal, PoolKind: 0,
		},
		"sling": {
			Kind: component.WeaponRanged, Delay: 0.5, Power: 1, Range: 20,
			ProjectileSpeed: 8, Duration: 3, Size: 0.2, PerShot: 1,
			Abilities: component.AbilityNormal, PoolKind: 1,
		},
		"club": {Kind: component.WeaponMelee, Delay: 1.0, Power: 1, Range: 2},
	}}
}

type fixture struct {
	arena *Arena
	stats *string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	data := testStats
	provider, err := stats.NewYAMLProviderFunc(func() ([]byte, error) { return []byte(data), nil })
	require.NoError(t, err)

	a, err := New(Config{
		Spec: &prefabs.ArenaSpec{
			TickRate:     60,
			DespawnDelay: 2,
			Aggro:        prefabs.AggroSpec{HalfExtent: common.V(10, 1, 10), FollowRange: 15},
		},
		Weapons: testWeapons(),
		Stats:   provider,
		Rand:    rand.New(rand.NewSource(1)),
		Empty:   true,
	})
	require.NoError(t, err)
	return &fixture{arena: a, stats: &data}
}

func (f *fixture) spawn(t *testing.T, faction component.Faction, profile, weapon string, pos common.Vec3) *Handle {
	t.Helper()
	h, err := f.arena.Spawn(prefabs.CombatantSpec{Name: profile, Profile: profile, Weapon: weapon, Position: pos}, faction)
	require.NoError(t, err)
	return h
}

func (f *fixture) ticks(n int) {
	for i := 0; i < n; i++ {
		f.arena.Tick(dt)
	}
}

type counter map[ecs.EventKind]int

func (f *fixture) count(kinds ...ecs.EventKind) counter {
	c := counter{}
	for _, k := range kinds {
		f.arena.Subscribe(k, func(ev ecs.Event) { c[ev.Kind]++ })
	}
	return c
}

func TestDamageMitigation(t *testing.T) {
	f := newFixture(t)
	enemy := f.spawn(t, component.FactionEnemy, "tank", "", common.V(5, 0, 0))

	assert.Equal(t, 41, f.arena.ApplyDamage(enemy.Entity(), 50, 0))
	hp, ok := enemy.Health()
	require.True(t, ok)
	assert.Equal(t, 59, hp.Current)
	assert.True(t, enemy.Alive())
}

func TestDeathNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	enemy := f.spawn(t, component.FactionEnemy, "tank", "", common.V(5, 0, 0))
	events := f.count(ecs.EventEnemyDefeated, ecs.EventWaveCleared, ecs.EventDefeated)

	for i := 0; i < 4; i++ {
		f.arena.ApplyDamage(enemy.Entity(), 50, 0)
	}
	f.arena.Tick(dt)
	f.arena.ApplyDamage(enemy.Entity(), 50, 0)
	f.arena.Tick(dt)

	assert.Equal(t, 1, events[ecs.EventEnemyDefeated])
	assert.Equal(t, 1, events[ecs.EventDefeated])
	assert.Equal(t, 1, events[ecs.EventWaveCleared])
	assert.Equal(t, component.StateDead, enemy.State())
	hp, _ := enemy.Health()
	assert.Zero(t, hp.Current)
	assert.False(t, f.arena.Heal(enemy.Entity(), 10))
}

func TestMeleeCooldownLoop(t *testing.T) {
	f := newFixture(t)
	player := f.spawn(t, component.FactionPlayer, "hero", "", common.Vec3{})
	f.spawn(t, component.FactionEnemy, "tank", "club", common.V(1.5, 0, 0))

	health := func() int {
		hp, _ := player.Health()
		return hp.Current
	}

	// Bodies are mirrored before targeting, so the first tick already swings.
	f.ticks(1)
	assert.Equal(t, 90, health())

	f.ticks(59)
	assert.Equal(t, 90, health(), "cooldown still running")

	f.ticks(1)
	assert.Equal(t, 80, health())
}

func TestMeleeFromAttackerKilledSameTick(t *testing.T) {
	f := newFixture(t)
	player := f.spawn(t, component.FactionPlayer, "hero", "", common.Vec3{})
	enemy := f.spawn(t, component.FactionEnemy, "dummy", "club", common.V(1.5, 0, 0))
	events := f.count(ecs.EventAttackSignal, ecs.EventEnemyDefeated)

	// The swing is queued this tick and the arrow kills the swinger before
	// the queue is delivered.
	_, ok := f.arena.projectiles.Spawn(f.arena.World(), system.Shot{
		Owner:     player.Entity(),
		Faction:   component.FactionPlayer,
		Origin:    enemy.Position(),
		Direction: common.V(1, 0, 0),
		Weapon:    testWeapons().Weapons["bow"],
		Power:     100,
	})
	require.True(t, ok)
	f.ticks(1)

	assert.Equal(t, 1, events[ecs.EventAttackSignal])
	assert.Equal(t, 1, events[ecs.EventEnemyDefeated])
	assert.Equal(t, component.StateDead, enemy.State())
	hp, _ := player.Health()
	assert.Equal(t, 100, hp.Current)
}

func TestMultiShotGrant(t *testing.T) {
	f := newFixture(t)
	player := f.spawn(t, component.FactionPlayer, "hero", "bow", common.Vec3{})
	f.spawn(t, component.FactionEnemy, "tank", "", common.V(0, 0, 8))
	require.True(t, f.arena.GrantAbility(player.Entity(), "multishot", 3))
	assert.False(t, f.arena.GrantAbility(player.Entity(), "laser", 1))

	events := f.count(ecs.EventProjectileSpawned)
	f.ticks(1)
	assert.Equal(t, 3, events[ecs.EventProjectileSpawned])

	wp, ok := player.Weapon()
	require.True(t, ok)
	assert.Equal(t, 3, wp.PerShot)
}

func TestRangedKillAndDespawn(t *testing.T) {
	f := newFixture(t)
	player := f.spawn(t, component.FactionPlayer, "hero", "bow", common.Vec3{})
	enemy := f.spawn(t, component.FactionEnemy, "dummy", "", common.V(0, 0, 5))

	var rewards []ecs.RewardGranted
	f.arena.Subscribe(ecs.EventRewardGranted, func(ev ecs.Event) {
		rewards = append(rewards, ev.Data.(ecs.RewardGranted))
	})
	events := f.count(ecs.EventEnemyDefeated, ecs.EventWaveCleared, ecs.EventImpact)

	f.ticks(60)
	assert.False(t, enemy.Alive())
	assert.Equal(t, 1, events[ecs.EventEnemyDefeated])
	assert.Equal(t, 1, events[ecs.EventWaveCleared])
	assert.Equal(t, 1, events[ecs.EventImpact])
	require.Len(t, rewards, 1)
	assert.Equal(t, player.Entity(), rewards[0].Killer)
	assert.True(t, ecs.IsAlive(f.arena.World(), enemy.Entity()), "defeated enemies linger")

	f.ticks(150)
	assert.False(t, ecs.IsAlive(f.arena.World(), enemy.Entity()))
	assert.Equal(t, component.StateIdle, player.State())
}

func TestWallBlocksAggro(t *testing.T) {
	f := newFixture(t)
	f.spawn(t, component.FactionPlayer, "hero", "", common.Vec3{})
	enemy := f.spawn(t, component.FactionEnemy, "tank", "sling", common.V(0, 0, 6))
	_, err := f.arena.SpawnWall(prefabs.WallSpec{Position: common.V(0, 0, 3), HalfW: 3, HalfD: 0.5})
	require.NoError(t, err)

	events := f.count(ecs.EventProjectileSpawned)
	f.ticks(60)

	assert.Zero(t, events[ecs.EventProjectileSpawned])
	_, ok := enemy.Target()
	assert.False(t, ok)
}

func TestPlayerMovesWithInput(t *testing.T) {
	f := newFixture(t)
	player := f.spawn(t, component.FactionPlayer, "hero", "", common.Vec3{})
	f.arena.SetMoveInput(common.V(1, 0, 0))

	f.ticks(60)
	assert.InDelta(t, 4, player.Position().X, 0.1)
	assert.Equal(t, component.StateMove, player.State())

	f.arena.SetMoveInput(common.Vec3{})
	f.ticks(1)
	assert.Equal(t, component.StateIdle, player.State())
}

func TestStatsHotReloadAndPerks(t *testing.T) {
	f := newFixture(t)
	player := f.spawn(t, component.FactionPlayer, "hero", "", common.Vec3{})

	require.True(t, f.arena.ApplyPerk(player.Entity(), "health"))
	assert.False(t, f.arena.ApplyPerk(player.Entity(), "wings"))
	f.arena.Tick(dt)
	hp, _ := player.Health()
	assert.Equal(t, component.Health{Current: 120, Max: 120}, hp)

	*f.stats = `
profiles:
  hero:
    maxHealth: 150
    attack: 12
    moveSpeed: 4
`
	f.arena.Reload(prefabs.StatsFile)
	f.arena.Tick(dt)

	hp, _ = player.Health()
	assert.Equal(t, component.Health{Current: 170, Max: 170}, hp)
	st, _ := player.Stats()
	assert.Equal(t, 12, st.Attack)
}

func TestHealClamps(t *testing.T) {
	f := newFixture(t)
	player := f.spawn(t, component.FactionPlayer, "hero", "", common.Vec3{})
	f.arena.ApplyDamage(player.Entity(), 30, 0)

	assert.True(t, f.arena.Heal(player.Entity(), 100))
	hp, _ := player.Health()
	assert.Equal(t, 100, hp.Current)
}

func TestSpawnUnknownWeapon(t *testing.T) {
	f := newFixture(t)
	_, err := f.arena.Spawn(prefabs.CombatantSpec{Profile: "hero", Weapon: "trebuchet"}, component.FactionPlayer)
	assert.Error(t, err)
}

func TestLoadEmbeddedArena(t *testing.T) {
	t.Setenv(prefabs.DirEnv, t.TempDir())
	a, err := Load(nil)
	require.NoError(t, err)

	_, ok := a.Player()
	require.True(t, ok)
	assert.Len(t, a.Enemies(), 3)
	assert.Equal(t, 60, a.TickRate())

	for i := 0; i < 120; i++ {
		a.Tick(1.0 / float64(a.TickRate()))
	}
	assert.InDelta(t, 2.0, a.Elapsed(), 1e-9)
}
