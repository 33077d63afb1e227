package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
)

func TestNewCombatant(t *testing.T) {
	cases := []struct {
		name      string
		cfg       CombatantConfig
		wantCtrl  component.ControllerKind
		wantLayer uint32
		player    bool
	}{
		{
			name:      "player_defaults",
			cfg:       CombatantConfig{Faction: component.FactionPlayer, Profile: "player"},
			wantCtrl:  component.ControllerPlayer,
			wantLayer: component.LayerPlayer,
			player:    true,
		},
		{
			name:      "scripted_enemy",
			cfg:       CombatantConfig{Faction: component.FactionEnemy, Controller: component.ControllerScripted, Script: "flank", Radius: 0.8},
			wantCtrl:  component.ControllerScripted,
			wantLayer: component.LayerEnemy,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e, err := NewCombatant(w, tc.cfg)
			require.NoError(t, err)

			ctrl, ok := ecs.Get(w, e, component.ControllerComponent.Kind())
			require.True(t, ok)
			assert.Equal(t, tc.wantCtrl, ctrl.Kind)
			assert.Equal(t, tc.cfg.Script, ctrl.Script)

			col, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
			require.True(t, ok)
			assert.Equal(t, tc.wantLayer, col.Category)
			assert.False(t, col.Sensor)

			assert.Equal(t, tc.player, ecs.Has(w, e, component.PlayerTagComponent.Kind()))
			assert.Equal(t, !tc.player, ecs.Has(w, e, component.EnemyTagComponent.Kind()))
			assert.True(t, ecs.Has(w, e, component.StatsRefreshRequestComponent.Kind()))
			clock, _ := ecs.Get(w, e, component.AttackClockComponent.Kind())
			assert.True(t, clock.Ready(100))
		})
	}
}

func TestNewCombatantRejectsFaction(t *testing.T) {
	w := ecs.NewWorld()
	_, err := NewCombatant(w, CombatantConfig{})
	assert.Error(t, err)
	assert.Empty(t, ecs.Entities(w))
}

func TestNewWall(t *testing.T) {
	w := ecs.NewWorld()
	e, err := NewWall(w, common.V(1, 0, 2), 3, 0.5)
	require.NoError(t, err)
	col, _ := ecs.Get(w, e, component.ColliderComponent.Kind())
	assert.True(t, col.Static)
	assert.Equal(t, component.LayerGeometry, col.Category)

	_, err = NewWall(w, common.Vec3{}, 0, 1)
	assert.Error(t, err)
}
