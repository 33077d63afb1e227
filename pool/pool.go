// Package pool recycles ECS entities per kind so bursty spawns (projectiles
// mostly) do not churn entity ids and component stores.
package pool

import (
	"fmt"
	"log/slog"

	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

// Pool is the acquire/release contract the combat systems depend on.
type Pool interface {
	Acquire(kind int) (ecs.Entity, bool)
	Release(e ecs.Entity, kind int)
}

// Config sizes one kind. Initial entities are created on Register; at most
// Max are kept. Acquires beyond Max create overflow entities that are
// destroyed on release.
type Config struct {
	Initial int `yaml:"initial"`
	Max     int `yaml:"max"`
}

// Reset strips an entity back to its pooled shell on release.
type Reset func(w *ecs.World, e ecs.Entity)

// Observer receives pool activity, typically the metrics collector.
type Observer interface {
	PoolAcquired(kind int, overflow bool)
}

type kindPool struct {
	cfg   Config
	reset Reset
	free  []ecs.Entity
	owned int
}

type Manager struct {
	world    *ecs.World
	kinds    map[int]*kindPool
	logger   *slog.Logger
	observer Observer
}

var _ Pool = (*Manager)(nil)

func NewManager(w *ecs.World, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		world:  w,
		kinds:  make(map[int]*kindPool),
		logger: logger,
	}
}

func (m *Manager) SetObserver(o Observer) {
	m.observer = o
}

// Register declares a kind and prewarms cfg.Initial entities.
func (m *Manager) Register(kind int, cfg Config, reset Reset) error {
	if _, ok := m.kinds[kind]; ok {
		return fmt.Errorf("pool: kind %d already registered", kind)
	}
	if cfg.Max < 0 || cfg.Initial < 0 {
		return fmt.Errorf("pool: kind %d: negative size", kind)
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	kp := &kindPool{cfg: cfg, reset: reset}
	for i := 0; i < cfg.Initial; i++ {
		e, err := m.create(kind, false)
		if err != nil {
			return fmt.Errorf("pool: prewarm kind %d: %w", kind, err)
		}
		kp.owned++
		kp.free = append(kp.free, e)
	}
	m.kinds[kind] = kp
	return nil
}

func (m *Manager) create(kind int, overflow bool) (ecs.Entity, error) {
	e := ecs.CreateEntity(m.world)
	if err := ecs.Add(m.world, e, component.PooledComponent.Kind(), &component.Pooled{Kind: kind, Overflow: overflow}); err != nil {
		ecs.DestroyEntity(m.world, e)
		return 0, err
	}
	return e, nil
}

// Acquire hands out an inactive entity of kind. It returns false only for an
// unregistered kind.
func (m *Manager) Acquire(kind int) (ecs.Entity, bool) {
	kp, ok := m.kinds[kind]
	if !ok {
		m.logger.Warn("pool: unknown kind", slog.Int("kind", kind))
		return 0, false
	}

	var (
		e        ecs.Entity
		overflow bool
		err      error
	)
	switch {
	case len(kp.free) > 0:
		e = kp.free[len(kp.free)-1]
		kp.free = kp.free[:len(kp.free)-1]
	case kp.owned < kp.cfg.Max:
		e, err = m.create(kind, false)
		if err == nil {
			kp.owned++
		}
	default:
		overflow = true
		e, err = m.create(kind, true)
	}
	if err != nil {
		m.logger.Warn("pool: create failed", slog.Int("kind", kind), slog.Any("err", err))
		return 0, false
	}

	pooled, _ := ecs.Get(m.world, e, component.PooledComponent.Kind())
	pooled.Active = true
	if m.observer != nil {
		m.observer.PoolAcquired(kind, overflow)
	}
	return e, true
}

// Release returns e to its kind. Releasing twice, releasing a dead entity or
// an entity the pool does not own is ignored.
func (m *Manager) Release(e ecs.Entity, kind int) {
	kp, ok := m.kinds[kind]
	if !ok {
		m.logger.Warn("pool: unknown kind", slog.Int("kind", kind), slog.String("entity", e.String()))
		return
	}
	pooled, ok := ecs.Get(m.world, e, component.PooledComponent.Kind())
	if !ok || !pooled.Active {
		return
	}
	if pooled.Kind != kind {
		m.logger.Warn("pool: kind mismatch on release", slog.Int("kind", kind), slog.Int("owner_kind", pooled.Kind))
		return
	}
	if pooled.Overflow {
		ecs.DestroyEntity(m.world, e)
		return
	}
	if kp.reset != nil {
		kp.reset(m.world, e)
	}
	pooled.Active = false
	kp.free = append(kp.free, e)
}

// Free reports the number of idle pooled entities of kind.
func (m *Manager) Free(kind int) int {
	kp, ok := m.kinds[kind]
	if !ok {
		return 0
	}
	return len(kp.free)
}

// Owned reports how many non-overflow entities of kind exist.
func (m *Manager) Owned(kind int) int {
	kp, ok := m.kinds[kind]
	if !ok {
		return 0
	}
	return kp.owned
}
