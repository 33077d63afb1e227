package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

type countingObserver struct {
	acquired  int
	overflows int
}

func (c *countingObserver) PoolAcquired(_ int, overflow bool) {
	c.acquired++
	if overflow {
		c.overflows++
	}
}

func stripTransform(w *ecs.World, e ecs.Entity) {
	ecs.Remove(w, e, component.TransformComponent.Kind())
}

func TestManagerPrewarmAndReuse(t *testing.T) {
	w := ecs.NewWorld()
	m := NewManager(w, nil)
	require.NoError(t, m.Register(0, Config{Initial: 2, Max: 3}, stripTransform))
	assert.Equal(t, 2, m.Free(0))

	e, ok := m.Acquire(0)
	require.True(t, ok)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{}))

	m.Release(e, 0)
	assert.False(t, ecs.Has(w, e, component.TransformComponent.Kind()), "reset must run on release")
	assert.Equal(t, 2, m.Free(0))

	again, ok := m.Acquire(0)
	require.True(t, ok)
	assert.Equal(t, e, again, "released entity must be reused")
}

func TestManagerOverflowIsDestroyed(t *testing.T) {
	w := ecs.NewWorld()
	m := NewManager(w, nil)
	obs := &countingObserver{}
	m.SetObserver(obs)
	require.NoError(t, m.Register(1, Config{Initial: 1, Max: 2}, nil))

	var got []ecs.Entity
	for i := 0; i < 3; i++ {
		e, ok := m.Acquire(1)
		require.True(t, ok)
		got = append(got, e)
	}
	assert.Equal(t, 2, m.Owned(1))
	assert.Equal(t, 1, obs.overflows)
	assert.Equal(t, 3, obs.acquired)

	for _, e := range got {
		m.Release(e, 1)
	}
	assert.False(t, ecs.IsAlive(w, got[2]), "overflow entity must be destroyed on release")
	assert.Equal(t, 2, m.Free(1))
}

func TestManagerGuards(t *testing.T) {
	w := ecs.NewWorld()
	m := NewManager(w, nil)
	require.NoError(t, m.Register(0, Config{Initial: 1, Max: 1}, nil))
	require.Error(t, m.Register(0, Config{}, nil))

	_, ok := m.Acquire(42)
	assert.False(t, ok)

	e, ok := m.Acquire(0)
	require.True(t, ok)
	m.Release(e, 0)
	m.Release(e, 0)
	assert.Equal(t, 1, m.Free(0), "double release must not duplicate the entity")

	m.Release(e, 42)
	assert.Equal(t, 1, m.Free(0))
}
